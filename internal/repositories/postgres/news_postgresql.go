package postgres

import (
	"context"
	"fmt"

	"github.com/WPCM-2025/consultation-service/internal/models"
	"github.com/WPCM-2025/consultation-service/internal/repositories"
	"gorm.io/gorm"
)

type NewsPostgreSQL struct {
	db *gorm.DB
}

func NewNewsPostgreSQL(db *gorm.DB) repositories.NewsRepository {
	return &NewsPostgreSQL{db: db}
}

func (r *NewsPostgreSQL) Create(ctx context.Context, article *models.NewsArticle) error {
	if err := r.db.WithContext(ctx).Create(article).Error; err != nil {
		return fmt.Errorf("failed to create news article: %w", err)
	}
	return nil
}

func (r *NewsPostgreSQL) GetByID(ctx context.Context, id string) (*models.NewsArticle, error) {
	var article models.NewsArticle
	if err := r.db.WithContext(ctx).First(&article, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &article, nil
}

func (r *NewsPostgreSQL) Update(ctx context.Context, article *models.NewsArticle) error {
	if err := r.db.WithContext(ctx).Save(article).Error; err != nil {
		return fmt.Errorf("failed to update news article: %w", err)
	}
	return nil
}

func (r *NewsPostgreSQL) Delete(ctx context.Context, id string) error {
	result := r.db.WithContext(ctx).Delete(&models.NewsArticle{}, "id = ?", id)
	if result.Error != nil {
		return fmt.Errorf("failed to delete news article: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *NewsPostgreSQL) List(ctx context.Context, filters repositories.NewsFilters) ([]*models.NewsArticle, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.NewsArticle{})

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count news articles: %w", err)
	}

	if filters.Limit > 0 {
		query = query.Limit(filters.Limit)
	}
	if filters.Offset > 0 {
		query = query.Offset(filters.Offset)
	}

	var articles []*models.NewsArticle
	if err := query.Order("published_at DESC").Find(&articles).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list news articles: %w", err)
	}
	return articles, total, nil
}
