package repository

import (
	"context"

	"github.com/tkamphefner/Inventory/internal/dto"
	"github.com/tkamphefner/Inventory/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type SessionRepository interface {
	Create(ctx context.Context, s *model.Session) error
	FindByID(ctx context.Context, id string) (*model.Session, error)
	// FindByIDForUpdateTx locks the session row so the status check and the
	// terminal transition commit as one unit.
	FindByIDForUpdateTx(tx *gorm.DB, id string) (*model.Session, error)
	UpdateTx(tx *gorm.DB, s *model.Session) error
	List(ctx context.Context, filter dto.SessionFilter) ([]model.Session, int64, error)
}

type sessionRepo struct{ db *gorm.DB }

func NewSessionRepository(db *gorm.DB) SessionRepository { return &sessionRepo{db: db} }

func (r *sessionRepo) Create(ctx context.Context, s *model.Session) error {
	return r.db.WithContext(ctx).Create(s).Error
}

func (r *sessionRepo) FindByID(ctx context.Context, id string) (*model.Session, error) {
	var s model.Session
	err := r.db.WithContext(ctx).Preload("Location").First(&s, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *sessionRepo) FindByIDForUpdateTx(tx *gorm.DB, id string) (*model.Session, error) {
	var s model.Session
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&s, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *sessionRepo) UpdateTx(tx *gorm.DB, s *model.Session) error {
	return tx.Save(s).Error
}

func (r *sessionRepo) List(ctx context.Context, filter dto.SessionFilter) ([]model.Session, int64, error) {
	q := r.db.WithContext(ctx).Model(&model.Session{})

	if filter.Status != "" {
		q = q.Where("status = ?", filter.Status)
	}
	if filter.Type != "" {
		q = q.Where("type = ?", filter.Type)
	}
	if filter.LocationID != "" {
		q = q.Where("location_id = ?", filter.LocationID)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (filter.Page - 1) * filter.Limit
	var sessions []model.Session
	err := q.Preload("Location").Order("started_at DESC").Limit(filter.Limit).Offset(offset).Find(&sessions).Error
	return sessions, total, err
}
