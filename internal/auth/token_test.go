package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTokenFromRequest(t *testing.T) {
	tests := []struct {
		name   string
		cookie string
		header string
		want   string
	}{
		{name: "cookie", cookie: "abc", want: "abc"},
		{name: "bearer header", header: "Bearer xyz", want: "xyz"},
		{name: "bearer is case insensitive", header: "bearer  xyz ", want: "xyz"},
		{name: "cookie wins over header", cookie: "abc", header: "Bearer xyz", want: "abc"},
		{name: "basic auth is ignored", header: "Basic dXNlcjpwdw==", want: ""},
		{name: "nothing", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.cookie != "" {
				r.AddCookie(&http.Cookie{Name: "sess", Value: tt.cookie})
			}
			if tt.header != "" {
				r.Header.Set("Authorization", tt.header)
			}
			assert.Equal(t, tt.want, TokenFromRequest(r, "sess"))
		})
	}
}
