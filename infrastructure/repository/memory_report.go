package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/vfg2006/rfm-segmentation-api/internal/domain"
)

// memoryReportRepository é usado quando não há banco configurado
type memoryReportRepository struct {
	mu      sync.RWMutex
	reports map[string]*domain.RFMReport
}

func NewMemoryReportRepository() ReportRepository {
	return &memoryReportRepository{reports: make(map[string]*domain.RFMReport)}
}

// RunInTransaction não tem rollback em memória; cada operação já é atômica
func (r *memoryReportRepository) RunInTransaction(_ context.Context, fn func(repo ReportRepository) error) error {
	return fn(r)
}

func (r *memoryReportRepository) Save(_ context.Context, report *domain.RFMReport) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored := *report
	r.reports[report.ID] = &stored
	return nil
}

func (r *memoryReportRepository) GetByID(_ context.Context, id string) (*domain.RFMReport, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	report, ok := r.reports[id]
	if !ok {
		return nil, nil
	}
	found := *report
	return &found, nil
}

func (r *memoryReportRepository) ListOlderThan(_ context.Context, cutoff time.Time) ([]*domain.RFMReport, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	reports := make([]*domain.RFMReport, 0)
	for _, report := range r.reports {
		if report.CreatedAt.Before(cutoff) {
			found := *report
			reports = append(reports, &found)
		}
	}
	sort.Slice(reports, func(i, j int) bool {
		return reports[i].CreatedAt.Before(reports[j].CreatedAt)
	})
	return reports, nil
}

func (r *memoryReportRepository) DeleteOlderThan(_ context.Context, cutoff time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var deleted int64
	for id, report := range r.reports {
		if report.CreatedAt.Before(cutoff) {
			delete(r.reports, id)
			deleted++
		}
	}
	return deleted, nil
}
