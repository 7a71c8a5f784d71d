package handler

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/inventory-api/internal/model"
	"github.com/iliyamo/inventory-api/internal/repository"
)

// ProductStore is implemented by repository.ProductRepo.
type ProductStore interface {
	List(ctx context.Context) ([]model.Product, error)
	GetByID(ctx context.Context, id string) (model.Product, error)
	Create(ctx context.Context, in repository.ProductInput) (model.Product, error)
	Update(ctx context.Context, id string, in repository.ProductInput) (model.Product, error)
	SoftDelete(ctx context.Context, id string) error
	Restore(ctx context.Context, id string) error
}

// CategoryLookup checks that a product's category is live.
type CategoryLookup interface {
	GetByID(ctx context.Context, id string) (model.Category, error)
}

// ProductHandler serves /api/products.
type ProductHandler struct {
	Products   ProductStore
	Categories CategoryLookup
}

func NewProductHandler(p ProductStore, c CategoryLookup) *ProductHandler {
	return &ProductHandler{Products: p, Categories: c}
}

type productReq struct {
	Name        string  `json:"name" validate:"required,min=2,max=160"`
	Description *string `json:"description"`
	SKU         string  `json:"sku" validate:"required,max=64"`
	CategoryID  string  `json:"categoryId" validate:"required,uuid"`
}

func (r productReq) input() repository.ProductInput {
	return repository.ProductInput{
		Name:        strings.TrimSpace(r.Name),
		Description: r.Description,
		SKU:         strings.TrimSpace(r.SKU),
		CategoryID:  r.CategoryID,
	}
}

func (h *ProductHandler) List(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), requestTimeout)
	defer cancel()

	list, err := h.Products.List(ctx)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, list)
}

func (h *ProductHandler) Get(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), requestTimeout)
	defer cancel()

	p, err := h.Products.GetByID(ctx, c.Param("id"))
	if err != nil {
		return fail(c, productErr(err))
	}
	return c.JSON(http.StatusOK, p)
}

func (h *ProductHandler) Create(c echo.Context) (string, error) {
	var req productReq
	if errs := bind(c, &req); errs != nil {
		return "", invalidData(c, errs)
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), requestTimeout)
	defer cancel()

	if errs := h.checkCategory(ctx, req.CategoryID); errs != nil {
		return "", invalidData(c, errs)
	}
	p, err := h.Products.Create(ctx, req.input())
	if err != nil {
		return "", fail(c, err)
	}
	return p.ID, c.JSON(http.StatusCreated, p)
}

func (h *ProductHandler) Update(c echo.Context) (string, error) {
	var req productReq
	if errs := bind(c, &req); errs != nil {
		return "", invalidData(c, errs)
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), requestTimeout)
	defer cancel()

	if errs := h.checkCategory(ctx, req.CategoryID); errs != nil {
		return "", invalidData(c, errs)
	}
	p, err := h.Products.Update(ctx, c.Param("id"), req.input())
	if err != nil {
		return "", fail(c, productErr(err))
	}
	return p.ID, c.JSON(http.StatusOK, p)
}

func (h *ProductHandler) Delete(c echo.Context) (string, error) {
	id := c.Param("id")
	ctx, cancel := context.WithTimeout(c.Request().Context(), requestTimeout)
	defer cancel()

	if _, err := h.Products.GetByID(ctx, id); err != nil {
		return "", fail(c, productErr(err))
	}
	if err := h.Products.SoftDelete(ctx, id); err != nil {
		return "", fail(c, err)
	}
	return id, c.NoContent(http.StatusNoContent)
}

func (h *ProductHandler) Restore(c echo.Context) (string, error) {
	id := c.Param("id")
	ctx, cancel := context.WithTimeout(c.Request().Context(), requestTimeout)
	defer cancel()

	if err := h.Products.Restore(ctx, id); err != nil {
		return "", fail(c, err)
	}
	return id, c.JSON(http.StatusOK, echo.Map{"message": "product restored"})
}

// checkCategory returns a validation problem when the category is absent
// or soft deleted. Lookup errors other than not-found are reported too.
func (h *ProductHandler) checkCategory(ctx context.Context, id string) []string {
	if _, err := h.Categories.GetByID(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return []string{"categoryId does not exist"}
		}
		return []string{"categoryId could not be checked"}
	}
	return nil
}

func productErr(err error) error {
	if errors.Is(err, repository.ErrNotFound) {
		return errProductNotFound
	}
	return err
}
