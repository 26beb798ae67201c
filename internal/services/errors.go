package services

import "errors"

var (
	ErrTransactionNotFound = errors.New("transaction not found")
	ErrStoreUnavailable    = errors.New("transaction store unavailable")
)
