package repository

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestEffectivePriceOffSale(t *testing.T) {
	product := Product{Price: decimal.NewFromInt(100), IsOnSale: false}
	assert.True(t, decimal.NewFromInt(100).Equal(product.EffectivePrice()))
}

func TestEffectivePriceOnSale(t *testing.T) {
	product := Product{
		Price:              decimal.NewFromInt(200),
		IsOnSale:           true,
		DiscountPercentage: decimal.NewNullDecimal(decimal.NewFromInt(25)),
	}
	assert.True(t, decimal.NewFromInt(150).Equal(product.EffectivePrice()))
}

func TestEffectivePriceOnSaleWithoutDiscount(t *testing.T) {
	product := Product{Price: decimal.NewFromInt(80), IsOnSale: true}
	assert.True(t, decimal.NewFromInt(80).Equal(product.EffectivePrice()))
}

func TestEffectivePriceFractionalDiscount(t *testing.T) {
	product := Product{
		Price:              decimal.RequireFromString("59.99"),
		IsOnSale:           true,
		DiscountPercentage: decimal.NewNullDecimal(decimal.NewFromInt(10)),
	}
	assert.True(t, decimal.RequireFromString("53.991").Equal(product.EffectivePrice()))
}
