package storage

import (
	"sort"

	"github.com/Mo-Ibra/next-fullstack-jobs/internal/api/domain"
	"github.com/Mo-Ibra/next-fullstack-jobs/internal/api/model"
)

// SortForAdmin orders by status rank, then newest first
func SortForAdmin(jobs []model.Job) {
	sort.SliceStable(jobs, func(i, j int) bool {
		ri, rj := domain.StatusRank(jobs[i].Status), domain.StatusRank(jobs[j].Status)
		if ri != rj {
			return ri < rj
		}
		return jobs[i].CreatedAt.After(jobs[j].CreatedAt)
	})
}

// SortByRecency orders newest first
func SortByRecency(jobs []model.Job) {
	sort.SliceStable(jobs, func(i, j int) bool {
		return jobs[i].CreatedAt.After(jobs[j].CreatedAt)
	})
}
