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

// listHardCap bounds catalog listings; the catalog is not paginated.
const listHardCap = 200

// ProductInput carries the admin-submitted product fields.
type ProductInput struct {
	Name        string
	Description string
	Price       float64
	CategoryID  *uuid.UUID
	ImageURL    string
	Stock       int
}

// ProductService implements admin catalog mutations and public reads.
type ProductService interface {
	Create(ctx context.Context, input ProductInput) (*domain.Product, error)
	Update(ctx context.Context, id uuid.UUID, input ProductInput) (*domain.Product, error)
	Delete(ctx context.Context, id uuid.UUID) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Product, error)
	List(ctx context.Context, categoryID *uuid.UUID, search string) ([]*domain.Product, error)
}

type productService struct {
	productRepo  repository.ProductRepository
	categoryRepo repository.CategoryRepository
}

// NewProductService creates a new instance of ProductService
func NewProductService(productRepo repository.ProductRepository, categoryRepo repository.CategoryRepository) ProductService {
	return &productService{
		productRepo:  productRepo,
		categoryRepo: categoryRepo,
	}
}

func (s *productService) Create(ctx context.Context, input ProductInput) (*domain.Product, error) {
	if err := s.validate(ctx, &input); err != nil {
		return nil, err
	}

	now := time.Now()
	product := &domain.Product{
		ID:          uuid.New(),
		Name:        input.Name,
		Description: input.Description,
		Price:       input.Price,
		CategoryID:  input.CategoryID,
		ImageURL:    input.ImageURL,
		Stock:       input.Stock,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.productRepo.Create(ctx, product); err != nil {
		return nil, fmt.Errorf("failed to create product: %w", err)
	}

	return product, nil
}

func (s *productService) Update(ctx context.Context, id uuid.UUID, input ProductInput) (*domain.Product, error) {
	if err := s.validate(ctx, &input); err != nil {
		return nil, err
	}

	product, err := s.productRepo.FindByID(ctx, id)
	if err != nil {
		if err == repository.ErrProductNotFound {
			return nil, apierror.New(apierror.CodeNotFound, "product not found")
		}
		return nil, fmt.Errorf("failed to load product: %w", err)
	}

	product.Name = input.Name
	product.Description = input.Description
	product.Price = input.Price
	product.CategoryID = input.CategoryID
	product.ImageURL = input.ImageURL
	product.Stock = input.Stock
	product.UpdatedAt = time.Now()

	if err := s.productRepo.Update(ctx, product); err != nil {
		if err == repository.ErrProductNotFound {
			return nil, apierror.New(apierror.CodeNotFound, "product not found")
		}
		return nil, fmt.Errorf("failed to update product: %w", err)
	}

	return product, nil
}

func (s *productService) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.productRepo.Delete(ctx, id); err != nil {
		if err == repository.ErrProductNotFound {
			return apierror.New(apierror.CodeNotFound, "product not found")
		}
		return fmt.Errorf("failed to delete product: %w", err)
	}
	return nil
}

func (s *productService) GetByID(ctx context.Context, id uuid.UUID) (*domain.Product, error) {
	product, err := s.productRepo.FindByID(ctx, id)
	if err != nil {
		if err == repository.ErrProductNotFound {
			return nil, apierror.New(apierror.CodeNotFound, "product not found")
		}
		return nil, fmt.Errorf("failed to get product: %w", err)
	}
	return product, nil
}

func (s *productService) List(ctx context.Context, categoryID *uuid.UUID, search string) ([]*domain.Product, error) {
	if strings.TrimSpace(search) != "" {
		products, err := s.productRepo.Search(ctx, search, listHardCap)
		if err != nil {
			return nil, fmt.Errorf("failed to search products: %w", err)
		}
		return products, nil
	}

	products, err := s.productRepo.List(ctx, categoryID, listHardCap)
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	return products, nil
}

func (s *productService) validate(ctx context.Context, input *ProductInput) error {
	input.Name = strings.TrimSpace(input.Name)
	input.Description = strings.TrimSpace(input.Description)
	input.ImageURL = strings.TrimSpace(input.ImageURL)

	switch {
	case input.Name == "" || len(input.Name) > 120:
		return apierror.New(apierror.CodeValidationError, "name must be 1-120 characters")
	case input.Description == "" || len(input.Description) > 1000:
		return apierror.New(apierror.CodeValidationError, "description must be 1-1000 characters")
	case input.Price < 0:
		return apierror.New(apierror.CodeValidationError, "price must be >= 0")
	case input.Stock < 0:
		return apierror.New(apierror.CodeValidationError, "stock must be a non-negative integer")
	case input.ImageURL == "":
		return apierror.New(apierror.CodeValidationError, "imageUrl cannot be empty")
	}

	if input.CategoryID != nil {
		if _, err := s.categoryRepo.FindByID(ctx, *input.CategoryID); err != nil {
			if err == repository.ErrCategoryNotFound {
				return apierror.New(apierror.CodeValidationError, "categoryId does not reference an existing category")
			}
			return fmt.Errorf("failed to check category: %w", err)
		}
	}

	return nil
}
