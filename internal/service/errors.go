// Package service holds the business logic that sits between the HTTP
// handlers and the repositories: credential checks and token rotation,
// the asynchronous audit recorder and the decorated audit reader.
package service

import "errors"

var (
	// ErrInvalidCredentials covers both an unknown email and a wrong
	// password so callers cannot probe which one failed.
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrEmailInUse         = errors.New("email already in use")
	ErrWeakPassword       = errors.New("password must be at least 6 characters")

	// ErrReusedOrInvalidToken is returned for a refresh token that has no
	// stored row: never issued, already rotated, or logged out.
	ErrReusedOrInvalidToken = errors.New("refresh token reused or invalid")
	ErrExpiredToken         = errors.New("refresh token expired or invalid signature")
	ErrUserNotFound         = errors.New("user not found")

	ErrInvalidPage     = errors.New("page must be a positive integer")
	ErrInvalidArgument = errors.New("invalid argument")

	ErrInvalidQuantity   = errors.New("quantity must be greater than zero")
	ErrInsufficientStock = errors.New("insufficient stock")
)
