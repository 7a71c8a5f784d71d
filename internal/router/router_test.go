package router

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/inventory-api/internal/handler"
	"github.com/iliyamo/inventory-api/internal/model"
	"github.com/iliyamo/inventory-api/internal/utils"
)

type nopRecorder struct{ n int }

func (r *nopRecorder) Submit(model.AuditLog) bool { r.n++; return true }

func newServer(t *testing.T) (*echo.Echo, *utils.TokenCodec) {
	t.Helper()
	codec := utils.NewTokenCodec("access-secret", "refresh-secret", time.Minute, time.Hour)
	d := Deps{
		Auth:       handler.NewAuthHandler(nil),
		Audits:     handler.NewAuditHandler(nil),
		Categories: handler.NewCategoryHandler(nil),
		Products:   handler.NewProductHandler(nil, nil),
		Inventory:  handler.NewInventoryHandler(nil),
		Verifier:   codec,
		Recorder:   &nopRecorder{},
	}
	e := echo.New()
	RegisterRoutes(e)
	RegisterAuth(e, d)
	RegisterAudits(e, d)
	RegisterCatalog(e, d)
	return e, codec
}

func TestRoutesAreMounted(t *testing.T) {
	e, _ := newServer(t)
	got := map[string]bool{}
	for _, r := range e.Routes() {
		got[r.Method+" "+r.Path] = true
	}
	for _, want := range []string{
		"GET /health",
		"GET /metrics",
		"POST /api/auth/login",
		"POST /api/auth/register",
		"POST /api/auth/refresh",
		"POST /api/auth/logout",
		"GET /api/audits",
		"GET /api/audits/user/:userId",
		"GET /api/audits/resource/:resourceId",
		"PATCH /api/categories/:id/restore",
		"DELETE /api/products/:id",
		"POST /api/inventory/out",
		"GET /api/movements/entries",
		"GET /api/movements/product/:productId",
	} {
		assert.True(t, got[want], want)
	}
}

func TestGuards(t *testing.T) {
	e, codec := newServer(t)
	user, err := codec.IssueAccessToken("u1", "u@example.com", string(model.RoleUser))
	require.NoError(t, err)

	tests := []struct {
		name   string
		method string
		path   string
		token  string
		status int
	}{
		{"audits need a token", http.MethodGet, "/api/audits", "", http.StatusUnauthorized},
		{"audits are admin only", http.MethodGet, "/api/audits", user.Token, http.StatusForbidden},
		{"catalog writes are admin only", http.MethodPost, "/api/products", user.Token, http.StatusForbidden},
		{"inventory writes are admin only", http.MethodPost, "/api/inventory/in", user.Token, http.StatusForbidden},
		{"health is public", http.MethodGet, "/health", "", http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.path, nil)
			if tt.token != "" {
				req.Header.Set(echo.HeaderAuthorization, "Bearer "+tt.token)
			}
			rec := httptest.NewRecorder()
			e.ServeHTTP(rec, req)
			assert.Equal(t, tt.status, rec.Code)
		})
	}
}
