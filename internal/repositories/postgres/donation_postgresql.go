package postgres

import (
	"context"
	"fmt"

	"github.com/WPCM-2025/consultation-service/internal/models"
	"github.com/WPCM-2025/consultation-service/internal/repositories"
	"gorm.io/gorm"
)

type DonationPostgreSQL struct {
	db *gorm.DB
}

func NewDonationPostgreSQL(db *gorm.DB) repositories.DonationRepository {
	return &DonationPostgreSQL{db: db}
}

func (r *DonationPostgreSQL) Create(ctx context.Context, donation *models.Donation) error {
	if err := r.db.WithContext(ctx).Create(donation).Error; err != nil {
		return fmt.Errorf("failed to create donation: %w", err)
	}
	return nil
}

func (r *DonationPostgreSQL) List(ctx context.Context, filters repositories.DonationFilters) ([]*models.Donation, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.Donation{})

	if filters.DateFrom != nil {
		query = query.Where("created_at >= ?", *filters.DateFrom)
	}
	if filters.DateTo != nil {
		query = query.Where("created_at <= ?", *filters.DateTo)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count donations: %w", err)
	}

	if filters.Limit > 0 {
		query = query.Limit(filters.Limit)
	}
	if filters.Offset > 0 {
		query = query.Offset(filters.Offset)
	}

	var donations []*models.Donation
	if err := query.Order("created_at DESC").Find(&donations).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list donations: %w", err)
	}
	return donations, total, nil
}
