package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/prostorehq/storefront-backend/api/middleware"
	"github.com/prostorehq/storefront-backend/api/responses"
	"github.com/prostorehq/storefront-backend/api/validators"
	cartsvc "github.com/prostorehq/storefront-backend/internal/cart"
	"github.com/prostorehq/storefront-backend/pkg/db/models"
	pkgerrors "github.com/prostorehq/storefront-backend/pkg/errors"
	"github.com/prostorehq/storefront-backend/pkg/logger"
)

// CartGet returns the caller's active cart. A shopper with no cart yet gets a
// null payload rather than an error so the storefront can render empty state.
func CartGet(svc cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "cart service unavailable"))
			return
		}

		cart, err := svc.GetMyCart(r.Context(), cartIdentity(r))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if cart == nil {
			responses.WriteSuccess(w, nil)
			return
		}

		responses.WriteSuccess(w, newCartResponse(cart))
	}
}

// CartAddItem merges one unit of the submitted product into the cart.
// Mutations always answer 200 with a success flag and shopper-facing message.
func CartAddItem(svc cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "cart service unavailable"))
			return
		}

		var payload addCartItemRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result := svc.AddItem(r.Context(), cartIdentity(r), payload.toInput())
		responses.WriteSuccess(w, result)
	}
}

// CartRemoveItem decrements one unit of the product from the cart.
func CartRemoveItem(svc cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "cart service unavailable"))
			return
		}

		productID, err := uuid.Parse(chi.URLParam(r, "productId"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid product id"))
			return
		}

		result := svc.RemoveItem(r.Context(), cartIdentity(r), productID)
		responses.WriteSuccess(w, result)
	}
}

// addCartItemRequest carries the raw payload. Field-level checks live in the
// cart service so malformed items come back as a failed Result, not a 400.
type addCartItemRequest struct {
	ProductID uuid.UUID       `json:"productId"`
	Name      string          `json:"name"`
	Slug      string          `json:"slug"`
	Image     string          `json:"image"`
	Price     decimal.Decimal `json:"price"`
	Qty       int             `json:"qty"`
}

func (p addCartItemRequest) toInput() cartsvc.ItemInput {
	return cartsvc.ItemInput{
		ProductID: p.ProductID,
		Name:      p.Name,
		Slug:      p.Slug,
		Image:     p.Image,
		Price:     p.Price,
		Qty:       p.Qty,
	}
}

func cartIdentity(r *http.Request) cartsvc.Identity {
	identity := cartsvc.Identity{
		SessionCartID: middleware.SessionCartIDFromContext(r.Context()),
	}
	if raw := middleware.UserIDFromContext(r.Context()); raw != "" {
		if userID, err := uuid.Parse(raw); err == nil {
			identity.UserID = &userID
		}
	}
	return identity
}

type cartResponse struct {
	ID            uuid.UUID          `json:"id"`
	UserID        *uuid.UUID         `json:"userId,omitempty"`
	SessionCartID string             `json:"sessionCartId"`
	Items         []cartItemResponse `json:"items"`
	ItemsPrice    string             `json:"itemsPrice"`
	ShippingPrice string             `json:"shippingPrice"`
	TaxPrice      string             `json:"taxPrice"`
	TotalPrice    string             `json:"totalPrice"`
}

type cartItemResponse struct {
	ProductID uuid.UUID `json:"productId"`
	Name      string    `json:"name"`
	Slug      string    `json:"slug"`
	Image     string    `json:"image"`
	Price     string    `json:"price"`
	Qty       int       `json:"qty"`
}

func newCartResponse(cart *models.Cart) cartResponse {
	items := make([]cartItemResponse, 0, len(cart.Items))
	for _, item := range cart.Items {
		items = append(items, cartItemResponse{
			ProductID: item.ProductID,
			Name:      item.Name,
			Slug:      item.Slug,
			Image:     item.Image,
			Price:     item.Price.StringFixed(2),
			Qty:       item.Qty,
		})
	}

	return cartResponse{
		ID:            cart.ID,
		UserID:        cart.UserID,
		SessionCartID: cart.SessionCartID,
		Items:         items,
		ItemsPrice:    cart.ItemsPrice.StringFixed(2),
		ShippingPrice: cart.ShippingPrice.StringFixed(2),
		TaxPrice:      cart.TaxPrice.StringFixed(2),
		TotalPrice:    cart.TotalPrice.StringFixed(2),
	}
}
