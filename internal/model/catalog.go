package model

import "time"

// Category represents a product grouping. Rows are soft deleted by
// setting DeletedAt; the audit reader still resolves their names.
type Category struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	Description *string    `json:"description"`
	CreatedAt   time.Time  `json:"created_at"`
	DeletedAt   *time.Time `json:"deleted_at,omitempty"`
}

// Product is a stock keeping unit belonging to one category.
type Product struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	Description *string    `json:"description"`
	SKU         string     `json:"sku"`
	CategoryID  string     `json:"category_id"`
	CreatedAt   time.Time  `json:"created_at"`
	DeletedAt   *time.Time `json:"deleted_at,omitempty"`
}

// MovementType is the direction of a stock movement.
type MovementType string

const (
	MovementIn  MovementType = "IN"
	MovementOut MovementType = "OUT"
)

// InventoryMovement mirrors the `inventory_movements` table.
type InventoryMovement struct {
	ID           string       `json:"id"`
	ProductID    string       `json:"product_id"`
	MovementType MovementType `json:"movement_type"`
	Quantity     int          `json:"quantity"`
	Reason       *string      `json:"reason"`
	CreatedAt    time.Time    `json:"created_at"`
}

// DecodedMovement is a movement with the name of its product.
type DecodedMovement struct {
	InventoryMovement
	ProductName *string `json:"productName,omitempty"`
}

// PaginatedMovements is the response body of movement listings.
type PaginatedMovements struct {
	Data       []DecodedMovement `json:"data"`
	Pagination Pagination        `json:"pagination"`
}

// ProductStock is the computed stock level of a product.
type ProductStock struct {
	ProductID   string `json:"product_id"`
	ProductName string `json:"product_name"`
	SKU         string `json:"sku"`
	Stock       int    `json:"stock"`
}
