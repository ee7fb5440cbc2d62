package cart

import (
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	pkgerrors "github.com/prostorehq/storefront-backend/pkg/errors"
)

var itemValidator = validator.New(validator.WithRequiredStructEnabled())

// ItemInput is the product snapshot a client submits when adding to the cart.
type ItemInput struct {
	ProductID uuid.UUID       `json:"productId" validate:"required"`
	Name      string          `json:"name" validate:"required"`
	Slug      string          `json:"slug" validate:"required"`
	Image     string          `json:"image"`
	Price     decimal.Decimal `json:"price"`
	Qty       int             `json:"qty" validate:"required,min=1"`
}

func validateItem(input ItemInput) error {
	if err := itemValidator.Struct(input); err != nil {
		if fieldErrs, ok := err.(validator.ValidationErrors); ok && len(fieldErrs) > 0 {
			field := fieldErrs[0]
			return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid cart item: field %s failed on %s", field.Field(), field.Tag()))
		}
		return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cart item")
	}
	if input.Price.IsNegative() {
		return pkgerrors.New(pkgerrors.CodeValidation, "invalid cart item: price cannot be negative")
	}
	return nil
}
