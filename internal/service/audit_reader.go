package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/iliyamo/inventory-api/internal/model"
	"github.com/iliyamo/inventory-api/internal/repository"
)

// AuditPageSize is the fixed number of entries per audit page.
const AuditPageSize = 15

// Labels used for resourceName when the referenced row cannot be named.
const (
	NameDeletedOrUnavailable = "[deleted or unavailable]"
	NameResolutionFailed     = "[error resolving name]"
)

// decorateParallelism bounds the number of concurrent name lookups per page.
const decorateParallelism = 8

// AuditLister reads raw audit pages.
type AuditLister interface {
	List(ctx context.Context, f repository.AuditFilter, limit, offset int) ([]model.AuditLog, int, error)
}

// NameResolver has one lookup per resource kind that is backed by a
// table. Each returns repository.ErrNotFound when the row is gone.
type NameResolver interface {
	UserName(ctx context.Context, id string) (string, error)
	CategoryName(ctx context.Context, id string) (string, error)
	ProductName(ctx context.Context, id string) (string, error)
	MovementProductName(ctx context.Context, movementID string) (string, error)
}

// AuditReader serves paginated, name-decorated audit listings.
type AuditReader struct {
	audits AuditLister
	names  NameResolver
	log    *slog.Logger
}

func NewAuditReader(audits AuditLister, names NameResolver, log *slog.Logger) *AuditReader {
	if log == nil {
		log = slog.Default()
	}
	return &AuditReader{audits: audits, names: names, log: log}
}

// List returns one page of every audit entry, newest first.
func (r *AuditReader) List(ctx context.Context, page int) (model.PaginatedAudits, error) {
	return r.list(ctx, repository.AuditFilter{}, page)
}

// ListByUser returns one page of the entries recorded for userID.
func (r *AuditReader) ListByUser(ctx context.Context, userID string, page int) (model.PaginatedAudits, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return model.PaginatedAudits{}, fmt.Errorf("%w: user id is required", ErrInvalidArgument)
	}
	return r.list(ctx, repository.AuditFilter{UserID: userID}, page)
}

// ListByResource returns one page of the entries that touched resourceID.
func (r *AuditReader) ListByResource(ctx context.Context, resourceID string, page int) (model.PaginatedAudits, error) {
	resourceID = strings.TrimSpace(resourceID)
	if resourceID == "" {
		return model.PaginatedAudits{}, fmt.Errorf("%w: resource id is required", ErrInvalidArgument)
	}
	return r.list(ctx, repository.AuditFilter{ResourceID: resourceID}, page)
}

func (r *AuditReader) list(ctx context.Context, f repository.AuditFilter, page int) (model.PaginatedAudits, error) {
	offset, err := pageOffset(page, AuditPageSize)
	if err != nil {
		return model.PaginatedAudits{}, err
	}
	rows, total, err := r.audits.List(ctx, f, AuditPageSize, offset)
	if err != nil {
		return model.PaginatedAudits{}, fmt.Errorf("list audits: %w", err)
	}
	return model.PaginatedAudits{
		Data:       r.decorate(ctx, rows),
		Pagination: model.NewPagination(page, AuditPageSize, total),
	}, nil
}

// pageOffset converts a 1-based page into a row offset. Pages below 1, and
// pages whose offset would not fit in an int, are ErrInvalidPage.
func pageOffset(page, limit int) (int, error) {
	if page < 1 || page-1 > math.MaxInt/limit {
		return 0, ErrInvalidPage
	}
	return (page - 1) * limit, nil
}

// decorate resolves names for every row. A failed lookup only affects
// the field it was resolving.
func (r *AuditReader) decorate(ctx context.Context, rows []model.AuditLog) []model.DecodedAuditLog {
	out := make([]model.DecodedAuditLog, len(rows))
	var g errgroup.Group
	g.SetLimit(decorateParallelism)

	for i := range rows {
		out[i].AuditLog = rows[i]
		g.Go(func() error {
			out[i].UserName = r.userName(ctx, rows[i].UserID)
			return nil
		})
		g.Go(func() error {
			out[i].ResourceName = r.resourceName(ctx, rows[i])
			return nil
		})
	}
	_ = g.Wait()
	return out
}

func (r *AuditReader) userName(ctx context.Context, userID string) *string {
	if userID == "" {
		return nil
	}
	name, err := r.names.UserName(ctx, userID)
	if err != nil {
		if !errors.Is(err, repository.ErrNotFound) {
			r.log.Warn("resolve audit user name", "user_id", userID, "error", err)
		}
		return nil
	}
	return &name
}

func (r *AuditReader) resourceName(ctx context.Context, entry model.AuditLog) *string {
	if entry.ResourceID == nil || *entry.ResourceID == "" {
		return nil
	}
	kind, ok := model.ParseResourceKind(entry.Resource)
	if !ok {
		return nil
	}
	id := *entry.ResourceID

	var lookup func(context.Context, string) (string, error)
	switch kind {
	case model.ResourceCategory:
		lookup = r.names.CategoryName
	case model.ResourceProduct:
		lookup = r.names.ProductName
	case model.ResourceUser:
		lookup = r.names.UserName
	case model.ResourceInventory:
		lookup = r.names.MovementProductName
	case model.ResourceInventoryMovement:
		label := "Movement " + id
		return &label
	default:
		return nil
	}

	name, err := lookup(ctx, id)
	switch {
	case err == nil:
	case errors.Is(err, repository.ErrNotFound):
		name = NameDeletedOrUnavailable
	default:
		r.log.Warn("resolve audit resource name", "resource", entry.Resource, "resource_id", id, "error", err)
		name = NameResolutionFailed
	}
	return &name
}
