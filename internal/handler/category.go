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

// CategoryStore is implemented by repository.CategoryRepo.
type CategoryStore interface {
	List(ctx context.Context) ([]model.Category, error)
	GetByID(ctx context.Context, id string) (model.Category, error)
	Create(ctx context.Context, name string, description *string) (model.Category, error)
	Update(ctx context.Context, id, name string, description *string) (model.Category, error)
	SoftDelete(ctx context.Context, id string) error
	Restore(ctx context.Context, id string) error
}

// CategoryHandler serves /api/categories. Mutating methods have the
// middleware.AuditedHandler signature and return the id they touched.
type CategoryHandler struct {
	Categories CategoryStore
}

func NewCategoryHandler(s CategoryStore) *CategoryHandler { return &CategoryHandler{Categories: s} }

type categoryReq struct {
	Name        string  `json:"name" validate:"required,min=2,max=120"`
	Description *string `json:"description"`
}

func (h *CategoryHandler) List(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), requestTimeout)
	defer cancel()

	list, err := h.Categories.List(ctx)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, list)
}

func (h *CategoryHandler) Get(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), requestTimeout)
	defer cancel()

	cat, err := h.Categories.GetByID(ctx, c.Param("id"))
	if err != nil {
		return fail(c, categoryErr(err))
	}
	return c.JSON(http.StatusOK, cat)
}

func (h *CategoryHandler) Create(c echo.Context) (string, error) {
	var req categoryReq
	if errs := bind(c, &req); errs != nil {
		return "", invalidData(c, errs)
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), requestTimeout)
	defer cancel()

	cat, err := h.Categories.Create(ctx, strings.TrimSpace(req.Name), req.Description)
	if err != nil {
		return "", fail(c, err)
	}
	return cat.ID, c.JSON(http.StatusCreated, cat)
}

func (h *CategoryHandler) Update(c echo.Context) (string, error) {
	var req categoryReq
	if errs := bind(c, &req); errs != nil {
		return "", invalidData(c, errs)
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), requestTimeout)
	defer cancel()

	cat, err := h.Categories.Update(ctx, c.Param("id"), strings.TrimSpace(req.Name), req.Description)
	if err != nil {
		return "", fail(c, categoryErr(err))
	}
	return cat.ID, c.JSON(http.StatusOK, cat)
}

func (h *CategoryHandler) Delete(c echo.Context) (string, error) {
	id := c.Param("id")
	ctx, cancel := context.WithTimeout(c.Request().Context(), requestTimeout)
	defer cancel()

	if _, err := h.Categories.GetByID(ctx, id); err != nil {
		return "", fail(c, categoryErr(err))
	}
	if err := h.Categories.SoftDelete(ctx, id); err != nil {
		return "", fail(c, err)
	}
	return id, c.NoContent(http.StatusNoContent)
}

func (h *CategoryHandler) Restore(c echo.Context) (string, error) {
	id := c.Param("id")
	ctx, cancel := context.WithTimeout(c.Request().Context(), requestTimeout)
	defer cancel()

	if err := h.Categories.Restore(ctx, id); err != nil {
		return "", fail(c, err)
	}
	return id, c.JSON(http.StatusOK, echo.Map{"message": "category restored"})
}

func categoryErr(err error) error {
	if errors.Is(err, repository.ErrNotFound) {
		return errCategoryNotFound
	}
	return err
}
