package cart

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/prostorehq/storefront-backend/pkg/db/models"
)

// Repository exposes persistence operations for shopper carts.
type Repository struct {
	db   *gorm.DB
	inTx bool
}

// NewRepository constructs a cart repository bound to the provided DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx binds the repository to a transaction. Lookups through a tx-bound
// repository take a row lock so concurrent mutations of the same cart
// serialize instead of overwriting each other's items.
func (r *Repository) WithTx(tx *gorm.DB) CartRepository {
	if tx == nil {
		return r
	}
	return &Repository{db: tx, inTx: true}
}

// Create inserts a new cart.
func (r *Repository) Create(ctx context.Context, cart *models.Cart) (*models.Cart, error) {
	if cart.Items == nil {
		cart.Items = models.CartItems{}
	}
	if err := r.db.WithContext(ctx).Create(cart).Error; err != nil {
		return nil, err
	}
	return cart, nil
}

// Update saves the provided cart.
func (r *Repository) Update(ctx context.Context, cart *models.Cart) (*models.Cart, error) {
	if err := r.db.WithContext(ctx).Save(cart).Error; err != nil {
		return nil, err
	}
	return cart, nil
}

// FindByOwner loads the cart for the caller. Signed-in shoppers are matched by
// user id so their cart follows them across devices; guests by session cart id.
func (r *Repository) FindByOwner(ctx context.Context, identity Identity) (*models.Cart, error) {
	query := r.db.WithContext(ctx)
	if r.inTx {
		query = query.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	if identity.Authenticated() {
		query = query.Where("user_id = ?", *identity.UserID)
	} else {
		query = query.Where("session_cart_id = ?", identity.SessionCartID)
	}

	var cart models.Cart
	if err := query.Order("created_at DESC").First(&cart).Error; err != nil {
		return nil, err
	}
	return &cart, nil
}
