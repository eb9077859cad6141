package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Mo-Ibra/next-fullstack-jobs/internal/api/dto"
	"github.com/Mo-Ibra/next-fullstack-jobs/internal/blog"
)

// ListPosts handles GET /api/blog
func (h *BlogHandler) ListPosts(c *gin.Context) {
	posts, err := h.blog.List()
	if err != nil {
		h.logger.Error("Failed to list posts", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, dto.ErrorResponse{Error: "Failed to list posts"})
		return
	}

	c.JSON(http.StatusOK, posts)
}

// GetPost handles GET /api/blog/:slug
func (h *BlogHandler) GetPost(c *gin.Context) {
	post, err := h.blog.Get(c.Param("slug"))
	if errors.Is(err, blog.ErrPostNotFound) {
		c.JSON(http.StatusNotFound, dto.ErrorResponse{Error: "Post not found"})
		return
	}
	if err != nil {
		h.logger.Error("Failed to load post", slog.String("slug", c.Param("slug")), slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, dto.ErrorResponse{Error: "Failed to load post"})
		return
	}

	c.JSON(http.StatusOK, post)
}
