package domain

import "errors"

var (
	ErrOrderNotFound    = errors.New("order not found")
	ErrSnapshotNotFound = errors.New("snapshot not found")
	ErrInvalidStatus    = errors.New("invalid order status")
	ErrInvalidToken     = errors.New("invalid token")
	ErrForbidden        = errors.New("forbidden")
)
