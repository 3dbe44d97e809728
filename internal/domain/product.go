package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// LowStockThreshold products at or below this quantity are reported as low stock
const LowStockThreshold = 5

// Product an inventory item, always attached to exactly one Category
type Product struct {
	ID          int64           `gorm:"primaryKey;autoIncrement" json:"id"`
	Name        string          `gorm:"size:200;index;not null" json:"name"`
	Price       decimal.Decimal `gorm:"type:numeric(10,2);not null" json:"price"`
	Quantity    int             `gorm:"not null;default:0" json:"quantity"`
	CategoryID  int64           `gorm:"index;not null" json:"category_id"`
	Category    *Category       `gorm:"constraint:OnUpdate:CASCADE,OnDelete:RESTRICT" json:"category,omitempty"`
	Description string          `gorm:"size:2000" json:"description"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// TableName Specify table name
func (Product) TableName() string {
	return "product"
}

// LowStock reports whether the product quantity is at or below LowStockThreshold
func (p Product) LowStock() bool {
	return p.Quantity <= LowStockThreshold
}

// CategoryName returns the name of the loaded category, or "" when it was not preloaded
func (p Product) CategoryName() string {
	if p.Category == nil {
		return ""
	}
	return p.Category.Name
}
