// Package repository defines error types that are reused across multiple
// repositories. These sentinel values allow higher layers such as
// services and handlers to distinguish between different failure
// scenarios without inspecting driver errors. For example,
// ErrNotFound replaces sql.ErrNoRows at the package boundary, and
// ErrTokenNotFound tells the caller that a refresh token row was
// already consumed by someone else.
package repository

import (
	"errors"

	"github.com/go-sql-driver/mysql"
)

// ErrNotFound is returned when a lookup matches no row. Handlers
// should translate this into an HTTP 404 response.
var ErrNotFound = errors.New("not found")

// ErrEmailExists is returned when inserting a user whose email is
// already registered.
var ErrEmailExists = errors.New("email already exists")

// ErrTokenNotFound is returned by refresh token operations when the
// row for the given hash no longer exists, e.g. because a concurrent
// rotation deleted it first.
var ErrTokenNotFound = errors.New("refresh token not found")

// ErrInsufficientStock is returned when an exit would take a product's
// stock below zero.
var ErrInsufficientStock = errors.New("insufficient stock")

// mysqlDuplicateEntry is the server error number for unique key violations.
const mysqlDuplicateEntry = 1062

func isDuplicateKey(err error) bool {
	var me *mysql.MySQLError
	return errors.As(err, &me) && me.Number == mysqlDuplicateEntry
}
