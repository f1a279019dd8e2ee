package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"product-catalog/internal/apierror"
	"product-catalog/internal/domain"
	"product-catalog/internal/repository"

	"github.com/google/uuid"
)

// CategoryService implements category CRUD with the uniqueness and
// referential-integrity guards.
type CategoryService interface {
	Create(ctx context.Context, name string) (*domain.Category, error)
	Rename(ctx context.Context, id uuid.UUID, name string) (*domain.Category, error)
	Delete(ctx context.Context, id uuid.UUID) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Category, error)
	List(ctx context.Context) ([]*domain.Category, error)
}

type categoryService struct {
	categoryRepo repository.CategoryRepository
	productRepo  repository.ProductRepository
}

// NewCategoryService creates a new instance of CategoryService
func NewCategoryService(categoryRepo repository.CategoryRepository, productRepo repository.ProductRepository) CategoryService {
	return &categoryService{
		categoryRepo: categoryRepo,
		productRepo:  productRepo,
	}
}

func (s *categoryService) Create(ctx context.Context, name string) (*domain.Category, error) {
	name, err := s.validateName(ctx, name, uuid.Nil)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	category := &domain.Category{
		ID:        uuid.New(),
		Name:      name,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.categoryRepo.Create(ctx, category); err != nil {
		if err == repository.ErrCategoryAlreadyExists {
			return nil, apierror.New(apierror.CodeCategoryNameConflict, "category with this name already exists")
		}
		return nil, fmt.Errorf("failed to create category: %w", err)
	}

	return category, nil
}

func (s *categoryService) Rename(ctx context.Context, id uuid.UUID, name string) (*domain.Category, error) {
	name, err := s.validateName(ctx, name, id)
	if err != nil {
		return nil, err
	}

	category, err := s.categoryRepo.FindByID(ctx, id)
	if err != nil {
		if err == repository.ErrCategoryNotFound {
			return nil, apierror.New(apierror.CodeNotFound, "category not found")
		}
		return nil, fmt.Errorf("failed to load category: %w", err)
	}

	category.Name = name
	category.UpdatedAt = time.Now()

	if err := s.categoryRepo.Update(ctx, category); err != nil {
		switch err {
		case repository.ErrCategoryNotFound:
			return nil, apierror.New(apierror.CodeNotFound, "category not found")
		case repository.ErrCategoryAlreadyExists:
			return nil, apierror.New(apierror.CodeCategoryNameConflict, "category with this name already exists")
		}
		return nil, fmt.Errorf("failed to rename category: %w", err)
	}

	return category, nil
}

// Delete removes a category unless any product still references it.
func (s *categoryService) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := s.categoryRepo.FindByID(ctx, id); err != nil {
		if err == repository.ErrCategoryNotFound {
			return apierror.New(apierror.CodeNotFound, "category not found")
		}
		return fmt.Errorf("failed to load category: %w", err)
	}

	count, err := s.productRepo.CountByCategory(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to check category references: %w", err)
	}
	if count > 0 {
		return apierror.New(apierror.CodeValidationError, "category has assigned products")
	}

	if err := s.categoryRepo.Delete(ctx, id); err != nil {
		if err == repository.ErrCategoryNotFound {
			return apierror.New(apierror.CodeNotFound, "category not found")
		}
		return fmt.Errorf("failed to delete category: %w", err)
	}
	return nil
}

func (s *categoryService) GetByID(ctx context.Context, id uuid.UUID) (*domain.Category, error) {
	category, err := s.categoryRepo.FindByID(ctx, id)
	if err != nil {
		if err == repository.ErrCategoryNotFound {
			return nil, apierror.New(apierror.CodeNotFound, "category not found")
		}
		return nil, fmt.Errorf("failed to get category: %w", err)
	}
	return category, nil
}

func (s *categoryService) List(ctx context.Context) ([]*domain.Category, error) {
	categories, err := s.categoryRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	return categories, nil
}

// validateName trims and checks the name, including case-insensitive
// uniqueness against every category except excludeID.
func (s *categoryService) validateName(ctx context.Context, name string, excludeID uuid.UUID) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" || len(name) > 80 {
		return "", apierror.New(apierror.CodeValidationError, "name must be 1-80 characters")
	}

	existing, err := s.categoryRepo.FindByName(ctx, name)
	if err != nil && err != repository.ErrCategoryNotFound {
		return "", fmt.Errorf("failed to check category name: %w", err)
	}
	if existing != nil && existing.ID != excludeID {
		return "", apierror.New(apierror.CodeCategoryNameConflict, "category with this name already exists")
	}

	return name, nil
}
