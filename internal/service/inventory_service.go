package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/iliyamo/inventory-api/internal/model"
	"github.com/iliyamo/inventory-api/internal/repository"
)

// MovementPageSize is the fixed number of movements per page.
const MovementPageSize = 6

// MovementStore records stock movements and derives stock from them.
type MovementStore interface {
	Create(ctx context.Context, productID string, typ model.MovementType, quantity int, reason *string) (model.InventoryMovement, error)
	CreateExit(ctx context.Context, productID string, quantity int, reason *string) (model.InventoryMovement, error)
	AllStock(ctx context.Context) ([]model.ProductStock, error)
	List(ctx context.Context, f repository.MovementFilter, limit, offset int) ([]model.DecodedMovement, int, error)
}

// ProductLookup fetches live products.
type ProductLookup interface {
	GetByID(ctx context.Context, id string) (model.Product, error)
}

// InventoryService applies the stock rules on top of the movement ledger.
type InventoryService struct {
	movements MovementStore
	products  ProductLookup
}

func NewInventoryService(movements MovementStore, products ProductLookup) *InventoryService {
	return &InventoryService{movements: movements, products: products}
}

// RegisterEntry records stock coming in.
func (s *InventoryService) RegisterEntry(ctx context.Context, productID string, quantity int, reason *string) (model.InventoryMovement, error) {
	if quantity <= 0 {
		return model.InventoryMovement{}, ErrInvalidQuantity
	}
	if _, err := s.products.GetByID(ctx, productID); err != nil {
		return model.InventoryMovement{}, err
	}
	return s.movements.Create(ctx, productID, model.MovementIn, quantity, reason)
}

// RegisterExit records stock going out. It fails with ErrInsufficientStock
// when the product holds less than quantity. The check and the insert run
// in one locked transaction in the store.
func (s *InventoryService) RegisterExit(ctx context.Context, productID string, quantity int, reason *string) (model.InventoryMovement, error) {
	if quantity <= 0 {
		return model.InventoryMovement{}, ErrInvalidQuantity
	}
	m, err := s.movements.CreateExit(ctx, productID, quantity, reason)
	switch {
	case err == nil:
		return m, nil
	case errors.Is(err, repository.ErrInsufficientStock):
		return model.InventoryMovement{}, ErrInsufficientStock
	case errors.Is(err, repository.ErrNotFound):
		return model.InventoryMovement{}, err
	default:
		return model.InventoryMovement{}, fmt.Errorf("register exit: %w", err)
	}
}

// Stock lists the current stock of every live product.
func (s *InventoryService) Stock(ctx context.Context) ([]model.ProductStock, error) {
	return s.movements.AllStock(ctx)
}

// Movements returns one page of movements matching f.
func (s *InventoryService) Movements(ctx context.Context, f repository.MovementFilter, page int) (model.PaginatedMovements, error) {
	offset, err := pageOffset(page, MovementPageSize)
	if err != nil {
		return model.PaginatedMovements{}, err
	}
	f.ProductID = strings.TrimSpace(f.ProductID)
	rows, total, err := s.movements.List(ctx, f, MovementPageSize, offset)
	if err != nil {
		return model.PaginatedMovements{}, fmt.Errorf("list movements: %w", err)
	}
	return model.PaginatedMovements{
		Data:       rows,
		Pagination: model.NewPagination(page, MovementPageSize, total),
	}, nil
}
