package storage

import "errors"

var (
	ErrDBConnection = errors.New("database connection error")
	ErrMigration    = errors.New("database migration error")
	ErrDecode       = errors.New("stored value decode error")
)
