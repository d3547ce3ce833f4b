package repository

import "errors"

var (
	ErrNotFound           = errors.New("resource not found")
	ErrDuplicateEmail     = errors.New("email already registered")
	ErrInvalidCredential  = errors.New("invalid credentials")
	ErrValidation         = errors.New("validation failed")
	ErrDuplicateQuotation = errors.New("quotation id already exists")
	// ErrSchemaTooNew means persisted state was written by a newer build.
	ErrSchemaTooNew = errors.New("persisted schema version is newer than supported")
)
