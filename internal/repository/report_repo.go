package repository

import (
	"context"
	"time"

	"github.com/tkamphefner/Inventory/internal/model"

	"gorm.io/gorm"
)

type ReportRepository interface {
	Create(ctx context.Context, r *model.Report) error
	FindByID(ctx context.Context, id string) (*model.Report, error)
	List(ctx context.Context, includeInactive bool) ([]model.Report, error)
	Update(ctx context.Context, r *model.Report) error
	Deactivate(ctx context.Context, id string) error
	// ListScheduled returns active reports that carry a schedule string.
	// Whether a report is due is decided by the scheduler, not the query.
	ListScheduled(ctx context.Context) ([]model.Report, error)
	StampLastRun(ctx context.Context, id string, at time.Time) error
}

type reportRepo struct{ db *gorm.DB }

func NewReportRepository(db *gorm.DB) ReportRepository { return &reportRepo{db: db} }

func (r *reportRepo) Create(ctx context.Context, rep *model.Report) error {
	return r.db.WithContext(ctx).Create(rep).Error
}

func (r *reportRepo) FindByID(ctx context.Context, id string) (*model.Report, error) {
	var rep model.Report
	if err := r.db.WithContext(ctx).First(&rep, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &rep, nil
}

func (r *reportRepo) List(ctx context.Context, includeInactive bool) ([]model.Report, error) {
	q := r.db.WithContext(ctx).Model(&model.Report{})
	if !includeInactive {
		q = q.Where("is_active = true")
	}
	var reports []model.Report
	err := q.Order("created_at DESC").Find(&reports).Error
	return reports, err
}

func (r *reportRepo) Update(ctx context.Context, rep *model.Report) error {
	return r.db.WithContext(ctx).Save(rep).Error
}

func (r *reportRepo) Deactivate(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Model(&model.Report{}).Where("id = ?", id).Update("is_active", false).Error
}

func (r *reportRepo) ListScheduled(ctx context.Context) ([]model.Report, error) {
	var reports []model.Report
	err := r.db.WithContext(ctx).
		Where("is_active = true AND schedule IS NOT NULL AND schedule <> ''").
		Find(&reports).Error
	return reports, err
}

func (r *reportRepo) StampLastRun(ctx context.Context, id string, at time.Time) error {
	return r.db.WithContext(ctx).Model(&model.Report{}).Where("id = ?", id).Update("last_run_at", at).Error
}
