package middleware

import (
	"net"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/inventory-api/internal/model"
)

// AuditSubmitter accepts audit entries without blocking.
type AuditSubmitter interface {
	Submit(entry model.AuditLog) bool
}

// AuditedHandler is a mutating handler that reports the id of the
// resource it acted on. An empty id falls back to the :id path parameter.
type AuditedHandler func(c echo.Context) (resourceID string, err error)

// Audited wraps h so that every response it produces is recorded in the
// audit trail. The record is submitted after the response is committed,
// whatever its status, and only for authenticated callers. Recording
// never changes the response.
func Audited(rec AuditSubmitter, action model.Action, kind model.ResourceKind, h AuditedHandler) echo.HandlerFunc {
	return func(c echo.Context) error {
		resourceID, err := h(c)
		if err != nil && !c.Response().Committed {
			c.Error(err)
			err = nil
		}

		id, ok := IdentityFrom(c)
		if !ok || !c.Response().Committed {
			return err
		}
		if resourceID == "" {
			resourceID = c.Param("id")
		}

		entry := model.AuditLog{
			UserID:   id.ID,
			Role:     string(id.Role),
			Action:   action,
			Resource: string(kind),
			IP:       ClientIP(c.Request()),
		}
		if resourceID != "" {
			entry.ResourceID = &resourceID
		}
		rec.Submit(entry)
		return err
	}
}

// ClientIP returns the first hop of X-Forwarded-For, or the host part of
// the peer address.
func ClientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		if ip := strings.TrimSpace(first); ip != "" {
			return ip
		}
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
