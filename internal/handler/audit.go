package handler

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/inventory-api/internal/model"
)

// AuditLister is implemented by service.AuditReader.
type AuditLister interface {
	List(ctx context.Context, page int) (model.PaginatedAudits, error)
	ListByUser(ctx context.Context, userID string, page int) (model.PaginatedAudits, error)
	ListByResource(ctx context.Context, resourceID string, page int) (model.PaginatedAudits, error)
}

// AuditHandler serves the read-only /api/audits listings.
type AuditHandler struct {
	Audits AuditLister
}

func NewAuditHandler(a AuditLister) *AuditHandler { return &AuditHandler{Audits: a} }

// List returns every entry, newest first.
func (h *AuditHandler) List(c echo.Context) error {
	return h.respond(c, func(ctx context.Context, page int) (model.PaginatedAudits, error) {
		return h.Audits.List(ctx, page)
	})
}

// ByUser returns the entries recorded for :userId.
func (h *AuditHandler) ByUser(c echo.Context) error {
	userID := c.Param("userId")
	return h.respond(c, func(ctx context.Context, page int) (model.PaginatedAudits, error) {
		return h.Audits.ListByUser(ctx, userID, page)
	})
}

// ByResource returns the entries that touched :resourceId.
func (h *AuditHandler) ByResource(c echo.Context) error {
	resourceID := c.Param("resourceId")
	return h.respond(c, func(ctx context.Context, page int) (model.PaginatedAudits, error) {
		return h.Audits.ListByResource(ctx, resourceID, page)
	})
}

func (h *AuditHandler) respond(c echo.Context, list func(context.Context, int) (model.PaginatedAudits, error)) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), requestTimeout)
	defer cancel()

	res, err := list(ctx, pageParam(c))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, res)
}
