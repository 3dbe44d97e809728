package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestProductLowStock(t *testing.T) {
	assert.True(t, Product{Quantity: 0}.LowStock())
	assert.True(t, Product{Quantity: LowStockThreshold}.LowStock())
	assert.False(t, Product{Quantity: LowStockThreshold + 1}.LowStock())
}

func TestProductCategoryName(t *testing.T) {
	assert.Equal(t, "", Product{}.CategoryName())
	assert.Equal(t, "Dairy", Product{Category: &Category{Name: "Dairy"}}.CategoryName())
}
