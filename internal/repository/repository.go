// Copyright 2025 The eSalama Authors
// Licensed under the EUPL-1.2

// Package repository provides database access for students, tokens,
// attendance and notifications.
package repository

import (
	"github.com/vinovest/sqlx"
)

// Repository wraps sqlx for database operations.
type Repository struct {
	db *sqlx.DB
}

// New creates a new Repository instance.
func New(db *sqlx.DB) *Repository {
	return &Repository{db: db}
}

// DB returns the underlying sqlx DB for direct access.
func (r *Repository) DB() *sqlx.DB {
	return r.db
}
