package repository

import (
	"context"
	"storefront/internal/models"

	"gorm.io/gorm"
)

type PromptCategoryRepository interface {
	Create(ctx context.Context, category *models.PromptCategory) error
	GetByID(ctx context.Context, id uint) (*models.PromptCategory, error)
	GetByName(ctx context.Context, name string) (*models.PromptCategory, error)
	GetAll(ctx context.Context) ([]models.PromptCategory, error)
	Update(ctx context.Context, category *models.PromptCategory) error
	Delete(ctx context.Context, id uint) error
}

type promptCategoryRepository struct {
	db *gorm.DB
}

func NewPromptCategoryRepository(db *gorm.DB) PromptCategoryRepository {
	return &promptCategoryRepository{db: db}
}

func (r *promptCategoryRepository) Create(ctx context.Context, category *models.PromptCategory) error {
	return r.db.WithContext(ctx).Create(category).Error
}

func (r *promptCategoryRepository) GetByID(ctx context.Context, id uint) (*models.PromptCategory, error) {
	var category models.PromptCategory
	if err := r.db.WithContext(ctx).First(&category, id).Error; err != nil {
		return nil, err
	}
	return &category, nil
}

func (r *promptCategoryRepository) GetByName(ctx context.Context, name string) (*models.PromptCategory, error) {
	var category models.PromptCategory
	if err := r.db.WithContext(ctx).Where("name = ?", name).First(&category).Error; err != nil {
		return nil, err
	}
	return &category, nil
}

func (r *promptCategoryRepository) GetAll(ctx context.Context) ([]models.PromptCategory, error) {
	var categories []models.PromptCategory
	err := r.db.WithContext(ctx).Order("name").Find(&categories).Error
	return categories, err
}

func (r *promptCategoryRepository) Update(ctx context.Context, category *models.PromptCategory) error {
	return r.db.WithContext(ctx).Save(category).Error
}

func (r *promptCategoryRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&models.PromptCategory{}, id).Error
}
