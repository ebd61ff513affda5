package services

import (
	"context"
	"log"
	"math"
	"storefront/internal/models"
	"storefront/internal/repository"
	"strings"
)

type ReviewInput struct {
	ProductID uint   `json:"product_id" binding:"required"`
	Rating    int    `json:"rating" binding:"required,min=1,max=5"`
	Comment   string `json:"comment"`
}

type ReviewService interface {
	CreateReview(ctx context.Context, userID uint, input ReviewInput) (*models.Review, error)
	GetProductReviews(ctx context.Context, productID uint) ([]models.Review, error)
	DeleteReview(ctx context.Context, actor Actor, id uint) error
}

type reviewService struct {
	reviewRepo  repository.ReviewRepository
	productRepo repository.ProductRepository
	orderRepo   repository.OrderRepository
	cache       Cache
}

func NewReviewService(reviewRepo repository.ReviewRepository, productRepo repository.ProductRepository, orderRepo repository.OrderRepository, cache Cache) ReviewService {
	return &reviewService{reviewRepo: reviewRepo, productRepo: productRepo, orderRepo: orderRepo, cache: cache}
}

// CreateReview accepts one review per user and product, and only from users
// with a delivered order containing the product.
func (s *reviewService) CreateReview(ctx context.Context, userID uint, input ReviewInput) (*models.Review, error) {
	if input.Rating < 1 || input.Rating > 5 {
		return nil, ErrBadRequest("rating must be between 1 and 5")
	}
	if _, err := s.productRepo.GetByID(ctx, input.ProductID); err != nil {
		return nil, notFound(err, "product")
	}

	bought, err := s.orderRepo.HasDeliveredProduct(ctx, userID, input.ProductID)
	if err != nil {
		return nil, err
	}
	if !bought {
		return nil, ErrForbidden("only customers who received this product can review it")
	}

	exists, err := s.reviewRepo.ExistsForUser(ctx, userID, input.ProductID)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrConflict("you have already reviewed this product")
	}

	review := &models.Review{
		UserID:    userID,
		ProductID: input.ProductID,
		Rating:    input.Rating,
		Comment:   strings.TrimSpace(input.Comment),
	}
	if err := s.reviewRepo.Create(ctx, review); err != nil {
		return nil, err
	}
	s.refreshRating(ctx, input.ProductID)
	return review, nil
}

func (s *reviewService) GetProductReviews(ctx context.Context, productID uint) ([]models.Review, error) {
	return s.reviewRepo.GetByProduct(ctx, productID)
}

func (s *reviewService) DeleteReview(ctx context.Context, actor Actor, id uint) error {
	review, err := s.reviewRepo.GetByID(ctx, id)
	if err != nil {
		return notFound(err, "review")
	}
	if !actor.IsAdmin() && review.UserID != actor.UserID {
		return ErrForbidden("you can only delete your own reviews")
	}
	if err := s.reviewRepo.Delete(ctx, id); err != nil {
		return err
	}
	s.refreshRating(ctx, review.ProductID)
	return nil
}

// refreshRating recomputes the product's average rating. Failures are logged;
// the review itself is already stored.
func (s *reviewService) refreshRating(ctx context.Context, productID uint) {
	avg, count, err := s.reviewRepo.Stats(ctx, productID)
	if err != nil {
		log.Printf("Warning: failed to compute rating for product %d: %v", productID, err)
		return
	}
	avg = math.Round(avg*10) / 10
	if err := s.productRepo.UpdateRating(ctx, productID, avg, count); err != nil {
		log.Printf("Warning: failed to update rating for product %d: %v", productID, err)
		return
	}
	if s.cache != nil {
		if err := s.cache.DeleteCached(ctx, productCacheKey(productID)); err != nil {
			log.Printf("Warning: failed to invalidate product %d: %v", productID, err)
		}
	}
}
