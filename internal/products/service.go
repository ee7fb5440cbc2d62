package product

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/prostorehq/storefront-backend/pkg/db"
	"github.com/prostorehq/storefront-backend/pkg/db/models"
	pkgerrors "github.com/prostorehq/storefront-backend/pkg/errors"
	"github.com/prostorehq/storefront-backend/pkg/revalidate"
)

// Service exposes catalog reads and the admin product management operations.
type Service interface {
	GetBySlug(ctx context.Context, slug string) (*models.Product, error)
	List(ctx context.Context, filters ListFilters) ([]models.Product, int64, error)
	Create(ctx context.Context, input CreateProductInput) (*models.Product, error)
	Update(ctx context.Context, productID uuid.UUID, input UpdateProductInput) (*models.Product, error)
	Delete(ctx context.Context, productID uuid.UUID) error
}

// CreateProductInput holds the validated payload to create a product.
type CreateProductInput struct {
	Name        string
	Slug        string
	Category    string
	Brand       string
	Description string
	Images      []string
	Price       decimal.Decimal
	Stock       int
	IsFeatured  bool
	Banner      *string
}

// UpdateProductInput holds optional mutation values for a product.
type UpdateProductInput struct {
	Name        *string
	Slug        *string
	Category    *string
	Brand       *string
	Description *string
	Images      *[]string
	Price       *decimal.Decimal
	Stock       *int
	IsFeatured  *bool
	Banner      *string
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type service struct {
	repo *Repository
	tx   txRunner
	hook revalidate.Hook
}

// NewService constructs a product service instance.
func NewService(repo *Repository, tx txRunner, hook revalidate.Hook) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("product repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if hook == nil {
		hook = revalidate.Noop{}
	}
	return &service{repo: repo, tx: tx, hook: hook}, nil
}

// GetBySlug returns the product backing a storefront product page.
func (s *service) GetBySlug(ctx context.Context, slug string) (*models.Product, error) {
	if slug == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "slug is required")
	}
	product, err := s.repo.FindBySlug(ctx, slug)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
	}
	return product, nil
}

// List returns catalog products for the given filters.
func (s *service) List(ctx context.Context, filters ListFilters) ([]models.Product, int64, error) {
	rows, total, err := s.repo.List(ctx, filters)
	if err != nil {
		return nil, 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list products")
	}
	return rows, total, nil
}

// Create inserts a new catalog product. The slug must be unused.
func (s *service) Create(ctx context.Context, input CreateProductInput) (*models.Product, error) {
	if err := validateSlug(input.Slug); err != nil {
		return nil, err
	}
	if input.Price.IsNegative() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "price cannot be negative")
	}
	if input.Stock < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "stock cannot be negative")
	}

	var created *models.Product
	if err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		txRepo := s.repo.WithTx(tx)

		if err := ensureSlugFree(ctx, txRepo, input.Slug, uuid.Nil); err != nil {
			return err
		}

		product := &models.Product{
			Name:        input.Name,
			Slug:        input.Slug,
			Category:    input.Category,
			Brand:       input.Brand,
			Description: input.Description,
			Images:      pq.StringArray(input.Images),
			Price:       input.Price,
			Stock:       input.Stock,
			IsFeatured:  input.IsFeatured,
			Banner:      input.Banner,
		}
		saved, err := txRepo.Create(ctx, product)
		if err != nil {
			if db.IsUniqueViolation(err, "idx_products_slug") {
				return pkgerrors.New(pkgerrors.CodeConflict, "slug already in use")
			}
			return err
		}
		created = saved
		return nil
	}); err != nil {
		return nil, wrapProductErr(err, "create product")
	}

	s.hook.Invalidate(ctx, "/product/"+created.Slug)
	return created, nil
}

// Update applies the provided fields to an existing product.
func (s *service) Update(ctx context.Context, productID uuid.UUID, input UpdateProductInput) (*models.Product, error) {
	if productID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product id is required")
	}
	if input.Slug != nil {
		if err := validateSlug(*input.Slug); err != nil {
			return nil, err
		}
	}
	if input.Price != nil && input.Price.IsNegative() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "price cannot be negative")
	}
	if input.Stock != nil && *input.Stock < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "stock cannot be negative")
	}

	var updated *models.Product
	if err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		txRepo := s.repo.WithTx(tx)

		product, err := txRepo.FindByID(ctx, productID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
			}
			return err
		}

		if input.Slug != nil && *input.Slug != product.Slug {
			if err := ensureSlugFree(ctx, txRepo, *input.Slug, product.ID); err != nil {
				return err
			}
			product.Slug = *input.Slug
		}
		applyUpdate(product, input)

		saved, err := txRepo.Update(ctx, product)
		if err != nil {
			return err
		}
		updated = saved
		return nil
	}); err != nil {
		return nil, wrapProductErr(err, "update product")
	}

	s.hook.Invalidate(ctx, "/product/"+updated.Slug)
	return updated, nil
}

// Delete removes the product from the catalog.
func (s *service) Delete(ctx context.Context, productID uuid.UUID) error {
	if productID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "product id is required")
	}

	product, err := s.repo.FindByID(ctx, productID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
	}

	if err := s.repo.Delete(ctx, productID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete product")
	}

	s.hook.Invalidate(ctx, "/product/"+product.Slug)
	return nil
}

func applyUpdate(product *models.Product, input UpdateProductInput) {
	if input.Name != nil {
		product.Name = *input.Name
	}
	if input.Category != nil {
		product.Category = *input.Category
	}
	if input.Brand != nil {
		product.Brand = *input.Brand
	}
	if input.Description != nil {
		product.Description = *input.Description
	}
	if input.Images != nil {
		product.Images = pq.StringArray(*input.Images)
	}
	if input.Price != nil {
		product.Price = *input.Price
	}
	if input.Stock != nil {
		product.Stock = *input.Stock
	}
	if input.IsFeatured != nil {
		product.IsFeatured = *input.IsFeatured
	}
	if input.Banner != nil {
		product.Banner = input.Banner
	}
}

func ensureSlugFree(ctx context.Context, repo *Repository, slug string, selfID uuid.UUID) error {
	existing, err := repo.FindBySlug(ctx, slug)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		return err
	}
	if existing.ID != selfID {
		return pkgerrors.New(pkgerrors.CodeConflict, "slug already in use")
	}
	return nil
}

func validateSlug(slug string) error {
	if slug == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "slug is required")
	}
	return nil
}

func wrapProductErr(err error, msg string) error {
	if typed := pkgerrors.As(err); typed != nil {
		return typed
	}
	return pkgerrors.Wrap(pkgerrors.CodeDependency, err, msg)
}
