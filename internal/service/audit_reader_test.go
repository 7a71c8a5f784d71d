package service

import (
	"context"
	"errors"
	"math"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/inventory-api/internal/model"
	"github.com/iliyamo/inventory-api/internal/repository"
)

type fakeAuditLister struct {
	rows  []model.AuditLog
	total int
	err   error

	gotFilter repository.AuditFilter
	gotLimit  int
	gotOffset int
}

func (f *fakeAuditLister) List(_ context.Context, filter repository.AuditFilter, limit, offset int) ([]model.AuditLog, int, error) {
	f.gotFilter, f.gotLimit, f.gotOffset = filter, limit, offset
	return f.rows, f.total, f.err
}

// fakeNames answers from maps. An id present in errs fails with that error;
// an id missing from the name map is reported as repository.ErrNotFound.
type fakeNames struct {
	mu         sync.Mutex
	users      map[string]string
	categories map[string]string
	products   map[string]string
	movements  map[string]string
	errs       map[string]error
	calls      int
}

func (f *fakeNames) lookup(m map[string]string, id string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if err, ok := f.errs[id]; ok {
		return "", err
	}
	if name, ok := m[id]; ok {
		return name, nil
	}
	return "", repository.ErrNotFound
}

func (f *fakeNames) UserName(_ context.Context, id string) (string, error) {
	return f.lookup(f.users, id)
}
func (f *fakeNames) CategoryName(_ context.Context, id string) (string, error) {
	return f.lookup(f.categories, id)
}
func (f *fakeNames) ProductName(_ context.Context, id string) (string, error) {
	return f.lookup(f.products, id)
}
func (f *fakeNames) MovementProductName(_ context.Context, id string) (string, error) {
	return f.lookup(f.movements, id)
}

func entry(id, userID string, kind model.ResourceKind, resourceID string) model.AuditLog {
	a := model.AuditLog{ID: id, UserID: userID, Role: "ADMIN", Action: model.ActionUpdate, Resource: string(kind), CreatedAt: time.Now()}
	if resourceID != "" {
		a.ResourceID = &resourceID
	}
	return a
}

func TestAuditReader_Pagination(t *testing.T) {
	lister := &fakeAuditLister{total: 31}
	r := NewAuditReader(lister, &fakeNames{}, nil)

	page, err := r.List(context.Background(), 3)
	require.NoError(t, err)
	assert.Equal(t, model.Pagination{Page: 3, Limit: 15, Total: 31, TotalPages: 3}, page.Pagination)
	assert.Equal(t, 15, lister.gotLimit)
	assert.Equal(t, 30, lister.gotOffset)
	assert.NotNil(t, page.Data)

	lister.total = 30
	page, err = r.List(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, 2, page.Pagination.TotalPages)

	lister.total = 0
	page, err = r.List(context.Background(), 1)
	require.NoError(t, err)
	assert.Zero(t, page.Pagination.TotalPages)
}

func TestAuditReader_Validation(t *testing.T) {
	r := NewAuditReader(&fakeAuditLister{}, &fakeNames{}, nil)

	_, err := r.List(context.Background(), 0)
	assert.ErrorIs(t, err, ErrInvalidPage)

	_, err = r.ListByUser(context.Background(), "", 1)
	assert.ErrorIs(t, err, ErrInvalidArgument)

	_, err = r.ListByResource(context.Background(), " ", 1)
	assert.ErrorIs(t, err, ErrInvalidArgument)

	_, err = r.ListByResource(context.Background(), "p1", -1)
	assert.ErrorIs(t, err, ErrInvalidPage)
}

func TestAuditReader_HugePage(t *testing.T) {
	lister := &fakeAuditLister{}
	r := NewAuditReader(lister, &fakeNames{}, nil)

	_, err := r.List(context.Background(), math.MaxInt/AuditPageSize+2)
	assert.ErrorIs(t, err, ErrInvalidPage)
	assert.Zero(t, lister.gotOffset, "overflowing page must not reach storage")

	_, err = r.List(context.Background(), math.MaxInt/AuditPageSize+1)
	require.NoError(t, err)
	assert.Positive(t, lister.gotOffset)
}

func TestAuditReader_Filters(t *testing.T) {
	lister := &fakeAuditLister{}
	r := NewAuditReader(lister, &fakeNames{}, nil)

	_, err := r.ListByUser(context.Background(), "u1", 2)
	require.NoError(t, err)
	assert.Equal(t, repository.AuditFilter{UserID: "u1"}, lister.gotFilter)
	assert.Equal(t, 15, lister.gotOffset)

	_, err = r.ListByResource(context.Background(), "p1", 1)
	require.NoError(t, err)
	assert.Equal(t, repository.AuditFilter{ResourceID: "p1"}, lister.gotFilter)
}

func TestAuditReader_StorageError(t *testing.T) {
	boom := errors.New("db down")
	r := NewAuditReader(&fakeAuditLister{err: boom}, &fakeNames{}, nil)
	_, err := r.List(context.Background(), 1)
	assert.ErrorIs(t, err, boom)
}

func TestAuditReader_Decoration(t *testing.T) {
	names := &fakeNames{
		users:      map[string]string{"u1": "Ana", "u2": "Luis"},
		categories: map[string]string{"c1": "Tools"},
		products:   map[string]string{"p1": "Hammer"},
		movements:  map[string]string{"m1": "Hammer"},
		errs:       map[string]error{"c-broken": errors.New("timeout")},
	}
	rows := []model.AuditLog{
		entry("a0", "u1", model.ResourceProduct, "p1"),
		entry("a1", "u1", model.ResourceProduct, "p-hard-deleted"),
		entry("a2", "u2", model.ResourceCategory, "c-broken"),
		entry("a3", "u2", model.ResourceCategory, "c1"),
		entry("a4", "u1", model.ResourceInventory, "m1"),
		entry("a5", "u1", model.ResourceInventoryMovement, "m9"),
		entry("a6", "u1", model.ResourceUser, "u2"),
		entry("a7", "ghost", model.ResourceKind("WAREHOUSE"), "w1"),
		entry("a8", "u1", model.ResourceProduct, ""),
	}
	r := NewAuditReader(&fakeAuditLister{rows: rows, total: len(rows)}, names, nil)

	page, err := r.List(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, page.Data, len(rows))

	resource := func(i int) *string { return page.Data[i].ResourceName }

	require.NotNil(t, resource(0))
	assert.Equal(t, "Hammer", *resource(0))

	require.NotNil(t, resource(1))
	assert.Equal(t, NameDeletedOrUnavailable, *resource(1))

	require.NotNil(t, resource(2))
	assert.Equal(t, NameResolutionFailed, *resource(2))
	require.NotNil(t, page.Data[2].UserName, "a failed resource lookup must not affect userName")
	assert.Equal(t, "Luis", *page.Data[2].UserName)

	require.NotNil(t, resource(3))
	assert.Equal(t, "Tools", *resource(3))

	require.NotNil(t, resource(4))
	assert.Equal(t, "Hammer", *resource(4))

	require.NotNil(t, resource(5))
	assert.Equal(t, "Movement m9", *resource(5))

	require.NotNil(t, resource(6))
	assert.Equal(t, "Luis", *resource(6))

	assert.Nil(t, resource(7))
	assert.Nil(t, page.Data[7].UserName)

	assert.Nil(t, resource(8))

	for i, d := range page.Data {
		assert.Equal(t, rows[i].ID, d.ID, "row order must be preserved")
	}
}

func TestAuditReader_UserLookupErrorLeavesNameAbsent(t *testing.T) {
	names := &fakeNames{
		products: map[string]string{"p1": "Hammer"},
		errs:     map[string]error{"u1": errors.New("conn reset")},
	}
	r := NewAuditReader(&fakeAuditLister{rows: []model.AuditLog{entry("a0", "u1", model.ResourceProduct, "p1")}, total: 1}, names, nil)

	page, err := r.List(context.Background(), 1)
	require.NoError(t, err)
	assert.Nil(t, page.Data[0].UserName)
	require.NotNil(t, page.Data[0].ResourceName)
	assert.Equal(t, "Hammer", *page.Data[0].ResourceName)
}
