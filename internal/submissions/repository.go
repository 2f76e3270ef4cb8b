package submissions

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type Repository interface {
	Create(ctx context.Context, s *Submission) error
	List(ctx context.Context, query ListQuery) ([]Submission, int64, error)
	ListForExport(ctx context.Context, code string) ([]Submission, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, s *Submission) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "id"}}, DoNothing: true}).
		Create(s).Error
}

func (r *repository) List(ctx context.Context, query ListQuery) ([]Submission, int64, error) {
	var rows []Submission
	var totalCount int64

	db := r.filtered(ctx, query.RegistrationCode)
	if query.Outcome != "" {
		db = db.Where("outcome = ?", query.Outcome)
	}

	if err := db.Count(&totalCount).Error; err != nil {
		return nil, 0, err
	}

	offset := (query.Page - 1) * query.Limit
	err := db.Order("occurred_at DESC").
		Offset(offset).
		Limit(query.Limit).
		Find(&rows).Error
	if err != nil {
		return nil, 0, err
	}

	return rows, totalCount, nil
}

func (r *repository) ListForExport(ctx context.Context, code string) ([]Submission, error) {
	var rows []Submission
	err := r.filtered(ctx, code).Order("occurred_at ASC").Find(&rows).Error
	return rows, err
}

func (r *repository) filtered(ctx context.Context, code string) *gorm.DB {
	db := r.db.WithContext(ctx).Model(&Submission{})
	if code != "" {
		db = db.Where("registration_code = ?", code)
	}
	return db
}
