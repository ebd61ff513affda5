package services

import (
	"context"
	"storefront/internal/models"
	"storefront/internal/repository"
	"strings"
)

type PromptCategoryInput struct {
	Name         string `json:"name" binding:"required"`
	Description  string `json:"description"`
	SystemPrompt string `json:"system_prompt" binding:"required"`
}

type PromptCategoryService interface {
	CreatePromptCategory(ctx context.Context, input PromptCategoryInput) (*models.PromptCategory, error)
	GetPromptCategoryByID(ctx context.Context, id uint) (*models.PromptCategory, error)
	GetAllPromptCategories(ctx context.Context) ([]models.PromptCategory, error)
	UpdatePromptCategory(ctx context.Context, id uint, input PromptCategoryInput) (*models.PromptCategory, error)
	DeletePromptCategory(ctx context.Context, id uint) error
}

type promptCategoryService struct {
	promptRepo repository.PromptCategoryRepository
}

func NewPromptCategoryService(promptRepo repository.PromptCategoryRepository) PromptCategoryService {
	return &promptCategoryService{promptRepo: promptRepo}
}

func validatePrompt(input PromptCategoryInput) error {
	if strings.TrimSpace(input.Name) == "" {
		return ErrBadRequest("name is required")
	}
	if strings.TrimSpace(input.SystemPrompt) == "" {
		return ErrBadRequest("system prompt is required")
	}
	return nil
}

func (s *promptCategoryService) CreatePromptCategory(ctx context.Context, input PromptCategoryInput) (*models.PromptCategory, error) {
	if err := validatePrompt(input); err != nil {
		return nil, err
	}
	name := strings.TrimSpace(input.Name)
	if _, err := s.promptRepo.GetByName(ctx, name); err == nil {
		return nil, ErrConflict("prompt category already exists")
	} else if !isNotFound(err) {
		return nil, err
	}

	category := &models.PromptCategory{
		Name:         name,
		Description:  input.Description,
		SystemPrompt: input.SystemPrompt,
	}
	if err := s.promptRepo.Create(ctx, category); err != nil {
		return nil, err
	}
	return category, nil
}

func (s *promptCategoryService) GetPromptCategoryByID(ctx context.Context, id uint) (*models.PromptCategory, error) {
	category, err := s.promptRepo.GetByID(ctx, id)
	if err != nil {
		return nil, notFound(err, "prompt category")
	}
	return category, nil
}

func (s *promptCategoryService) GetAllPromptCategories(ctx context.Context) ([]models.PromptCategory, error) {
	return s.promptRepo.GetAll(ctx)
}

func (s *promptCategoryService) UpdatePromptCategory(ctx context.Context, id uint, input PromptCategoryInput) (*models.PromptCategory, error) {
	category, err := s.promptRepo.GetByID(ctx, id)
	if err != nil {
		return nil, notFound(err, "prompt category")
	}
	if err := validatePrompt(input); err != nil {
		return nil, err
	}
	category.Name = strings.TrimSpace(input.Name)
	category.Description = input.Description
	category.SystemPrompt = input.SystemPrompt
	if err := s.promptRepo.Update(ctx, category); err != nil {
		return nil, err
	}
	return category, nil
}

func (s *promptCategoryService) DeletePromptCategory(ctx context.Context, id uint) error {
	if _, err := s.promptRepo.GetByID(ctx, id); err != nil {
		return notFound(err, "prompt category")
	}
	return s.promptRepo.Delete(ctx, id)
}
