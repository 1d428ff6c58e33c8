// Copyright 2025 The eSalama Authors
// Licensed under the EUPL-1.2

// Package testutil provides test helpers and fixtures.
package testutil

import (
	"context"
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/esalama/gatecheck/internal/database"
	"github.com/esalama/gatecheck/internal/models"
	"github.com/esalama/gatecheck/internal/repository"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
	"github.com/vinovest/sqlx"
)

// NewTestDB creates an in-memory SQLite database for tests.
// Returns both the database connection and the repository for convenience.
func NewTestDB(t *testing.T) (*sqlx.DB, *repository.Repository) {
	t.Helper()
	db, err := database.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = db.Close()
	})
	repo := repository.New(db)
	return db, repo
}

// NewTestStudent creates a test student in the database.
func NewTestStudent(t *testing.T, repo *repository.Repository, studentID, fullName string) *models.Student {
	t.Helper()
	student := &models.Student{
		StudentID: studentID,
		FullName:  fullName,
		ClassName: "Grade 4B",
		Active:    true,
	}
	require.NoError(t, repo.CreateStudent(context.Background(), student))
	return student
}

// NewTestRecipient creates a parent or teacher account.
func NewTestRecipient(t *testing.T, repo *repository.Repository, email, role string) *models.Recipient {
	t.Helper()
	recipient := &models.Recipient{
		Email:    email,
		FullName: "Recipient " + email,
		Role:     role,
	}
	require.NoError(t, repo.CreateRecipient(context.Background(), recipient))
	return recipient
}

// NewTestQRToken issues a token for a student, valid for the given TTL
// from now.
func NewTestQRToken(t *testing.T, repo *repository.Repository, student *models.Student, intent models.Intent, ttl time.Duration) *models.QRToken {
	t.Helper()
	token := &models.QRToken{
		Token:     "tok-" + student.StudentID + "-" + string(intent),
		StudentID: student.ID,
		Intent:    intent,
		ExpiresAt: time.Now().Add(ttl),
	}
	require.NoError(t, repo.CreateQRToken(context.Background(), token))
	return token
}

// NewEchoContext creates an Echo context for handler tests.
func NewEchoContext(e *echo.Echo, method, path string, body io.Reader) (echo.Context, *httptest.ResponseRecorder) {
	req := httptest.NewRequest(method, path, body)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	return c, rec
}
