package models

import "errors"

// Custom errors
var (
	ErrNotFound      = errors.New("record not found")
	ErrInvalidMarket = errors.New("unsupported market")
)
