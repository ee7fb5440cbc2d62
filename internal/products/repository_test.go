package product

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/prostorehq/storefront-backend/pkg/db/models"
)

func setupProductTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{})
	require.NoError(t, err)

	products := `
CREATE TABLE IF NOT EXISTS products (
  id TEXT PRIMARY KEY,
  name TEXT NOT NULL,
  slug TEXT NOT NULL UNIQUE,
  category TEXT NOT NULL,
  brand TEXT NOT NULL,
  description TEXT NOT NULL,
  images TEXT NOT NULL DEFAULT '{}',
  price NUMERIC NOT NULL,
  stock INTEGER NOT NULL DEFAULT 0,
  rating NUMERIC NOT NULL DEFAULT 0,
  num_reviews INTEGER NOT NULL DEFAULT 0,
  is_featured INTEGER NOT NULL DEFAULT 0,
  banner TEXT,
  created_at DATETIME,
  updated_at DATETIME
);`
	require.NoError(t, db.Exec(products).Error)
	return db
}

func mustCreateTestProduct(t *testing.T, db *gorm.DB, name string, featured bool) *models.Product {
	t.Helper()

	product := &models.Product{
		ID:          uuid.New(),
		Name:        name,
		Slug:        fmt.Sprintf("%s-%s", name, uuid.NewString()[:8]),
		Category:    "shirts",
		Brand:       "Prostore",
		Description: "A test product",
		Images:      pq.StringArray{"/images/sample.jpg"},
		Price:       decimal.RequireFromString("19.99"),
		Stock:       5,
		IsFeatured:  featured,
	}
	require.NoError(t, db.Create(product).Error)
	return product
}

func TestRepositoryFindBySlug(t *testing.T) {
	db := setupProductTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	created := mustCreateTestProduct(t, db, "slug-target", false)

	found, err := repo.FindBySlug(ctx, created.Slug)
	require.NoError(t, err)
	assert.Equal(t, created.ID, found.ID)
	assert.True(t, found.Price.Equal(created.Price))

	_, err = repo.FindBySlug(ctx, "does-not-exist")
	require.Error(t, err)
	assert.True(t, errors.Is(err, gorm.ErrRecordNotFound))
}

func TestRepositoryListFilters(t *testing.T) {
	db := setupProductTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	marker := uuid.NewString()[:8]
	mustCreateTestProduct(t, db, "alpha-"+marker, true)
	mustCreateTestProduct(t, db, "beta-"+marker, false)

	rows, total, err := repo.List(ctx, ListFilters{Query: marker})
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	assert.Len(t, rows, 2)

	featured := true
	rows, total, err = repo.List(ctx, ListFilters{Query: marker, Featured: &featured})
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	require.Len(t, rows, 1)
	assert.Contains(t, rows[0].Name, "alpha")

	rows, total, err = repo.List(ctx, ListFilters{Query: marker, Limit: 1})
	require.NoError(t, err)
	assert.EqualValues(t, 2, total, "total ignores paging")
	assert.Len(t, rows, 1)
}

func TestRepositoryCreateUpdateDelete(t *testing.T) {
	db := setupProductTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	created := mustCreateTestProduct(t, db, "lifecycle", false)

	created.Stock = 42
	_, err := repo.Update(ctx, created)
	require.NoError(t, err)

	found, err := repo.FindByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, 42, found.Stock)

	require.NoError(t, repo.Delete(ctx, created.ID))
	_, err = repo.FindByID(ctx, created.ID)
	assert.True(t, errors.Is(err, gorm.ErrRecordNotFound))
}
