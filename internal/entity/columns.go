package entity

import (
	"unicode/utf8"

	"github.com/shopspring/decimal"
)

// MaxStatusLength is the width of the orders and shipments status columns.
const MaxStatusLength = 255

// PriceScale is the number of fraction digits the price columns keep.
const PriceScale = 2

// MaxPrice is the largest value a NUMERIC(12, 2) price column holds.
var MaxPrice = decimal.New(1, 10).Sub(decimal.New(1, -PriceScale))

// StoredPrice rounds price the way the price columns do, half away from zero.
func StoredPrice(price decimal.Decimal) decimal.Decimal {
	return price.Round(PriceScale)
}

// StatusFits reports whether status fits the status columns.
func StatusFits(status string) bool {
	return utf8.RuneCountInString(status) <= MaxStatusLength
}
