package cart

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/prostorehq/storefront-backend/pkg/db/models"
	pkgerrors "github.com/prostorehq/storefront-backend/pkg/errors"
	"github.com/prostorehq/storefront-backend/pkg/logger"
	"github.com/prostorehq/storefront-backend/pkg/revalidate"
)

const (
	msgCartSessionNotFound = "Cart session not found"
	msgProductNotFound     = "Product not found"
	msgProductOutOfStock   = "Product out of stock"
	msgNotEnoughStock      = "Not enough stock"
	msgCartNotFound        = "Cart not found"
	msgItemNotFound        = "Item not found"
	msgItemAdded           = "Item added to cart successfully"
	msgCartUpdateFailed    = "Unable to update cart. Please try again."
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type productLoader interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Product, error)
}

// Result is the outcome returned for every cart mutation. Expected failures
// (missing session, stock shortfalls) surface as Success=false with a
// shopper-facing message rather than an error.
type Result struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// Service exposes the shopper cart operations.
type Service interface {
	AddItem(ctx context.Context, identity Identity, input ItemInput) Result
	RemoveItem(ctx context.Context, identity Identity, productID uuid.UUID) Result
	GetMyCart(ctx context.Context, identity Identity) (*models.Cart, error)
}

type service struct {
	repo     CartRepository
	tx       txRunner
	products productLoader
	hook     revalidate.Hook
	logg     *logger.Logger
}

// NewService builds a cart service backed by the provided stack.
func NewService(repo CartRepository, tx txRunner, products productLoader, hook revalidate.Hook, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("cart repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if products == nil {
		return nil, fmt.Errorf("product loader required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	if hook == nil {
		hook = revalidate.Noop{}
	}
	return &service{
		repo:     repo,
		tx:       tx,
		products: products,
		hook:     hook,
		logg:     logg,
	}, nil
}

// AddItem merges the submitted item into the caller's cart, creating the cart
// lazily on first add. Re-adding an existing product increments its quantity
// by one. The read-modify-write runs inside a transaction so concurrent adds
// cannot drop each other's updates.
func (s *service) AddItem(ctx context.Context, identity Identity, input ItemInput) Result {
	if !identity.HasSession() {
		return failure(msgCartSessionNotFound)
	}
	if err := validateItem(input); err != nil {
		return failureFromError(err)
	}

	product, err := s.products.FindByID(ctx, input.ProductID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return failure(msgProductNotFound)
		}
		s.logg.Error(ctx, "loading product for cart add", err)
		return failure(msgCartUpdateFailed)
	}

	var message string
	txErr := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		cart, err := repo.FindByOwner(ctx, identity)
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		item := models.CartItem{
			ProductID: input.ProductID,
			Name:      input.Name,
			Slug:      input.Slug,
			Image:     input.Image,
			Price:     input.Price,
			Qty:       input.Qty,
		}

		if cart == nil {
			// First add creates the cart as submitted; stock gates only
			// apply to changes against an existing cart.
			cart = &models.Cart{
				UserID:        identity.UserID,
				SessionCartID: identity.SessionCartID,
				Items:         models.CartItems{item},
			}
			applyPrices(cart)
			if _, err := repo.Create(ctx, cart); err != nil {
				return err
			}
			message = msgItemAdded
			return nil
		}

		if idx := findItemIndex(cart.Items, input.ProductID); idx >= 0 {
			if product.Stock < cart.Items[idx].Qty+1 {
				return pkgerrors.New(pkgerrors.CodeConflict, msgProductOutOfStock)
			}
			cart.Items[idx].Qty++
			message = fmt.Sprintf("%s updated in cart successfully", product.Name)
		} else {
			if product.Stock < 1 {
				return pkgerrors.New(pkgerrors.CodeConflict, msgNotEnoughStock)
			}
			cart.Items = append(cart.Items, item)
			message = fmt.Sprintf("%s added to cart successfully", product.Name)
		}

		applyPrices(cart)
		_, err = repo.Update(ctx, cart)
		return err
	})
	if txErr != nil {
		if typed := pkgerrors.As(txErr); typed != nil {
			return failure(typed.Message())
		}
		s.logg.Error(ctx, "adding item to cart", txErr)
		return failure(msgCartUpdateFailed)
	}

	s.hook.Invalidate(ctx, productPath(product.Slug))
	return success(message)
}

// RemoveItem decrements the quantity of the product in the caller's cart,
// dropping the line entirely when it reaches zero.
func (s *service) RemoveItem(ctx context.Context, identity Identity, productID uuid.UUID) Result {
	if !identity.HasSession() {
		return failure(msgCartSessionNotFound)
	}
	if productID == uuid.Nil {
		return failure(msgProductNotFound)
	}

	product, err := s.products.FindByID(ctx, productID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return failure(msgProductNotFound)
		}
		s.logg.Error(ctx, "loading product for cart remove", err)
		return failure(msgCartUpdateFailed)
	}

	var message string
	txErr := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		cart, err := repo.FindByOwner(ctx, identity)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, msgCartNotFound)
			}
			return err
		}

		idx := findItemIndex(cart.Items, productID)
		if idx < 0 {
			return pkgerrors.New(pkgerrors.CodeNotFound, msgItemNotFound)
		}

		if cart.Items[idx].Qty == 1 {
			cart.Items = append(cart.Items[:idx], cart.Items[idx+1:]...)
			message = fmt.Sprintf("%s removed from cart successfully", product.Name)
		} else {
			cart.Items[idx].Qty--
			message = fmt.Sprintf("%s updated in cart successfully", product.Name)
		}

		applyPrices(cart)
		_, err = repo.Update(ctx, cart)
		return err
	})
	if txErr != nil {
		if typed := pkgerrors.As(txErr); typed != nil {
			return failure(typed.Message())
		}
		s.logg.Error(ctx, "removing item from cart", txErr)
		return failure(msgCartUpdateFailed)
	}

	s.hook.Invalidate(ctx, productPath(product.Slug))
	return success(message)
}

// GetMyCart returns the caller's cart, or nil when none exists yet. Reads are
// never an error path for the storefront; a missing cart renders as empty.
func (s *service) GetMyCart(ctx context.Context, identity Identity) (*models.Cart, error) {
	if !identity.HasSession() {
		return nil, nil
	}

	cart, err := s.repo.FindByOwner(ctx, identity)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart")
	}
	return cart, nil
}

func findItemIndex(items models.CartItems, productID uuid.UUID) int {
	for i, item := range items {
		if item.ProductID == productID {
			return i
		}
	}
	return -1
}

func productPath(slug string) string {
	return "/product/" + slug
}

func success(message string) Result {
	return Result{Success: true, Message: message}
}

func failure(message string) Result {
	return Result{Success: false, Message: message}
}

func failureFromError(err error) Result {
	if typed := pkgerrors.As(err); typed != nil {
		return failure(typed.Message())
	}
	return failure(msgCartUpdateFailed)
}
