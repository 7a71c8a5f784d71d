package handler

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/inventory-api/internal/model"
	"github.com/iliyamo/inventory-api/internal/repository"
)

// Inventory is implemented by service.InventoryService.
type Inventory interface {
	RegisterEntry(ctx context.Context, productID string, quantity int, reason *string) (model.InventoryMovement, error)
	RegisterExit(ctx context.Context, productID string, quantity int, reason *string) (model.InventoryMovement, error)
	Stock(ctx context.Context) ([]model.ProductStock, error)
	Movements(ctx context.Context, f repository.MovementFilter, page int) (model.PaginatedMovements, error)
}

// InventoryHandler serves /api/inventory and /api/movements.
type InventoryHandler struct {
	Inventory Inventory
}

func NewInventoryHandler(i Inventory) *InventoryHandler { return &InventoryHandler{Inventory: i} }

type movementReq struct {
	ProductID string  `json:"productId" validate:"required"`
	Quantity  int     `json:"quantity" validate:"gt=0"`
	Reason    *string `json:"reason" validate:"omitempty,max=255"`
}

type registerFunc func(ctx context.Context, productID string, quantity int, reason *string) (model.InventoryMovement, error)

// In records a stock entry. The audit resource id is the new movement.
func (h *InventoryHandler) In(c echo.Context) (string, error) {
	return h.register(c, h.Inventory.RegisterEntry)
}

// Out records a stock exit; it fails when stock is insufficient.
func (h *InventoryHandler) Out(c echo.Context) (string, error) {
	return h.register(c, h.Inventory.RegisterExit)
}

func (h *InventoryHandler) register(c echo.Context, fn registerFunc) (string, error) {
	var req movementReq
	if errs := bind(c, &req); errs != nil {
		return "", invalidData(c, errs)
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), requestTimeout)
	defer cancel()

	m, err := fn(ctx, req.ProductID, req.Quantity, req.Reason)
	if err != nil {
		return "", fail(c, productErr(err))
	}
	return m.ID, c.JSON(http.StatusCreated, m)
}

func (h *InventoryHandler) Stock(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), requestTimeout)
	defer cancel()

	list, err := h.Inventory.Stock(ctx)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, list)
}

func (h *InventoryHandler) Movements(c echo.Context) error {
	return h.movements(c, repository.MovementFilter{})
}

func (h *InventoryHandler) Entries(c echo.Context) error {
	return h.movements(c, repository.MovementFilter{Type: model.MovementIn})
}

func (h *InventoryHandler) Exits(c echo.Context) error {
	return h.movements(c, repository.MovementFilter{Type: model.MovementOut})
}

func (h *InventoryHandler) ByProduct(c echo.Context) error {
	return h.movements(c, repository.MovementFilter{ProductID: c.Param("productId")})
}

func (h *InventoryHandler) movements(c echo.Context, f repository.MovementFilter) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), requestTimeout)
	defer cancel()

	res, err := h.Inventory.Movements(ctx, f, pageParam(c))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, res)
}
