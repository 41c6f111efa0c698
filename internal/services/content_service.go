package services

import (
	"context"
	"fmt"
	"time"

	"github.com/WPCM-2025/consultation-service/internal/cache"
	"github.com/WPCM-2025/consultation-service/internal/models"
	"github.com/WPCM-2025/consultation-service/internal/repositories"
	"github.com/WPCM-2025/consultation-service/internal/utils"
)

const (
	newsListCacheKey = "news:list"
	newsCacheTTL     = 5 * time.Minute
)

// ===== NEWS =====

type CreateNewsRequest struct {
	Title    string `json:"title" validate:"required,max=200"`
	Content  string `json:"content" validate:"required"`
	Author   string `json:"author" validate:"required,max=100"`
	ImageURL string `json:"image_url" validate:"omitempty,url"`
}

type UpdateNewsRequest struct {
	Title    *string `json:"title" validate:"omitempty,max=200"`
	Content  *string `json:"content"`
	Author   *string `json:"author" validate:"omitempty,max=100"`
	ImageURL *string `json:"image_url" validate:"omitempty,url"`
}

type NewsService interface {
	Create(ctx context.Context, req *CreateNewsRequest, actor Actor) (*models.NewsArticle, error)
	GetByID(ctx context.Context, id string) (*models.NewsArticle, error)
	Update(ctx context.Context, id string, req *UpdateNewsRequest, actor Actor) (*models.NewsArticle, error)
	Delete(ctx context.Context, id string, actor Actor) error
	List(ctx context.Context, limit, offset int) ([]*models.NewsArticle, int64, error)
}

type newsService struct {
	repo      repositories.Repository
	cache     cache.CacheService
	logger    utils.Logger
	validator *utils.Validator
}

func NewNewsService(repo repositories.Repository, cacheService cache.CacheService, logger utils.Logger, validator *utils.Validator) NewsService {
	return &newsService{repo: repo, cache: cacheService, logger: logger, validator: validator}
}

func (s *newsService) Create(ctx context.Context, req *CreateNewsRequest, actor Actor) (*models.NewsArticle, error) {
	if actor.Role != models.RoleAdmin {
		return nil, ErrForbidden
	}
	if errs := s.validator.ValidateStruct(req); len(errs) > 0 {
		return nil, errs
	}

	article := &models.NewsArticle{
		Title:    req.Title,
		Content:  req.Content,
		Author:   req.Author,
		ImageURL: req.ImageURL,
	}
	if err := s.repo.News().Create(ctx, article); err != nil {
		return nil, err
	}
	s.invalidate(ctx)
	s.logger.Info("News article published", "article_id", article.ID, "author", article.Author)
	return article, nil
}

func (s *newsService) GetByID(ctx context.Context, id string) (*models.NewsArticle, error) {
	article, err := s.repo.News().GetByID(ctx, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrArticleNotFound
		}
		return nil, fmt.Errorf("failed to load news article: %w", err)
	}
	return article, nil
}

func (s *newsService) Update(ctx context.Context, id string, req *UpdateNewsRequest, actor Actor) (*models.NewsArticle, error) {
	if actor.Role != models.RoleAdmin {
		return nil, ErrForbidden
	}
	if errs := s.validator.ValidateStruct(req); len(errs) > 0 {
		return nil, errs
	}

	article, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if req.Title != nil {
		article.Title = *req.Title
	}
	if req.Content != nil {
		article.Content = *req.Content
	}
	if req.Author != nil {
		article.Author = *req.Author
	}
	if req.ImageURL != nil {
		article.ImageURL = *req.ImageURL
	}
	if err := s.repo.News().Update(ctx, article); err != nil {
		return nil, err
	}
	s.invalidate(ctx)
	return article, nil
}

func (s *newsService) Delete(ctx context.Context, id string, actor Actor) error {
	if actor.Role != models.RoleAdmin {
		return ErrForbidden
	}
	if err := s.repo.News().Delete(ctx, id); err != nil {
		if repositories.IsNotFoundError(err) {
			return ErrArticleNotFound
		}
		return err
	}
	s.invalidate(ctx)
	return nil
}

// List serves the public news page; the unfiltered first page is cached.
func (s *newsService) List(ctx context.Context, limit, offset int) ([]*models.NewsArticle, int64, error) {
	type cached struct {
		Articles []*models.NewsArticle `json:"articles"`
		Total    int64                 `json:"total"`
	}

	cacheable := offset == 0
	if cacheable {
		var hit cached
		if err := s.cache.Get(ctx, newsListCacheKey, &hit); err == nil {
			return hit.Articles, hit.Total, nil
		}
	}

	articles, total, err := s.repo.News().List(ctx, repositories.NewsFilters{Limit: limit, Offset: offset})
	if err != nil {
		return nil, 0, err
	}

	if cacheable {
		if err := s.cache.Set(ctx, newsListCacheKey, cached{Articles: articles, Total: total}, newsCacheTTL); err != nil {
			s.logger.Warn("failed to cache news list", "error", err)
		}
	}
	return articles, total, nil
}

func (s *newsService) invalidate(ctx context.Context) {
	if err := s.cache.Delete(ctx, newsListCacheKey); err != nil {
		s.logger.Warn("failed to invalidate news cache", "error", err)
	}
}

// ===== DONATIONS =====

type CreateDonationRequest struct {
	Name          string  `json:"name" validate:"required,max=100"`
	Email         *string `json:"email" validate:"omitempty,email"`
	PhoneNumber   string  `json:"phone_number" validate:"required,max=20"`
	Amount        float64 `json:"amount" validate:"required,gt=0"`
	TransactionID string  `json:"transaction_id" validate:"required,max=100"`
	ScreenshotURL string  `json:"screenshot_url" validate:"omitempty,url"`
}

type ListDonationsRequest struct {
	DateFrom *time.Time
	DateTo   *time.Time
	Limit    int
	Offset   int
}

type DonationService interface {
	Create(ctx context.Context, req *CreateDonationRequest) (*models.Donation, error)
	List(ctx context.Context, req ListDonationsRequest, actor Actor) ([]*models.Donation, int64, error)
}

type donationService struct {
	repo      repositories.Repository
	logger    utils.Logger
	validator *utils.Validator
}

func NewDonationService(repo repositories.Repository, logger utils.Logger, validator *utils.Validator) DonationService {
	return &donationService{repo: repo, logger: logger, validator: validator}
}

// Create is public: donors are not required to have an account.
func (s *donationService) Create(ctx context.Context, req *CreateDonationRequest) (*models.Donation, error) {
	if errs := s.validator.ValidateStruct(req); len(errs) > 0 {
		return nil, errs
	}

	donation := &models.Donation{
		Name:          req.Name,
		Email:         req.Email,
		PhoneNumber:   req.PhoneNumber,
		Amount:        req.Amount,
		TransactionID: req.TransactionID,
		ScreenshotURL: req.ScreenshotURL,
	}
	if err := s.repo.Donation().Create(ctx, donation); err != nil {
		return nil, err
	}
	s.logger.Info("Donation recorded", "donation_id", donation.ID, "amount", donation.Amount)
	return donation, nil
}

func (s *donationService) List(ctx context.Context, req ListDonationsRequest, actor Actor) ([]*models.Donation, int64, error) {
	if actor.Role != models.RoleAdmin {
		return nil, 0, ErrForbidden
	}
	return s.repo.Donation().List(ctx, repositories.DonationFilters{
		DateFrom: req.DateFrom,
		DateTo:   req.DateTo,
		Limit:    req.Limit,
		Offset:   req.Offset,
	})
}
