package cart

import (
	"github.com/shopspring/decimal"

	"github.com/prostorehq/storefront-backend/pkg/db/models"
)

var (
	freeShippingThreshold = decimal.NewFromInt(100)
	flatShippingRate      = decimal.NewFromInt(10)
	taxRate               = decimal.NewFromFloat(0.15)
)

// PriceBreakdown holds the derived price columns persisted with every cart write.
type PriceBreakdown struct {
	ItemsPrice    decimal.Decimal
	ShippingPrice decimal.Decimal
	TaxPrice      decimal.Decimal
	TotalPrice    decimal.Decimal
}

// CalcPrice derives the cart totals from its line items. Shipping is free once
// the item subtotal exceeds the threshold, tax is a flat rate on the subtotal,
// and every figure is rounded to cents before the next step.
func CalcPrice(items []models.CartItem) PriceBreakdown {
	itemsPrice := decimal.Zero
	for _, item := range items {
		itemsPrice = itemsPrice.Add(item.Price.Mul(decimal.NewFromInt(int64(item.Qty))))
	}
	itemsPrice = round2(itemsPrice)

	shippingPrice := flatShippingRate
	if itemsPrice.GreaterThan(freeShippingThreshold) {
		shippingPrice = decimal.Zero
	}
	shippingPrice = round2(shippingPrice)

	taxPrice := round2(taxRate.Mul(itemsPrice))
	totalPrice := round2(itemsPrice.Add(shippingPrice).Add(taxPrice))

	return PriceBreakdown{
		ItemsPrice:    itemsPrice,
		ShippingPrice: shippingPrice,
		TaxPrice:      taxPrice,
		TotalPrice:    totalPrice,
	}
}

func round2(value decimal.Decimal) decimal.Decimal {
	return value.Round(2)
}

func applyPrices(cart *models.Cart) {
	breakdown := CalcPrice(cart.Items)
	cart.ItemsPrice = breakdown.ItemsPrice
	cart.ShippingPrice = breakdown.ShippingPrice
	cart.TaxPrice = breakdown.TaxPrice
	cart.TotalPrice = breakdown.TotalPrice
}
