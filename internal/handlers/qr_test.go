// Copyright 2025 The eSalama Authors
// Licensed under the EUPL-1.2

package handlers_test

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/esalama/gatecheck/internal/handlers"
	"github.com/esalama/gatecheck/internal/models"
	"github.com/esalama/gatecheck/internal/repository"
	"github.com/esalama/gatecheck/internal/sse"
	"github.com/esalama/gatecheck/internal/testutil"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestHandlers(t *testing.T) (*handlers.Handlers, *repository.Repository) {
	t.Helper()
	_, repo := testutil.NewTestDB(t)
	return handlers.New(repo, sse.NewHub(), nil), repo
}

func TestHealth(t *testing.T) {
	h := handlers.New(nil, nil, nil)

	e := echo.New()
	c, rec := testutil.NewEchoContext(e, http.MethodGet, "/health", nil)

	err := h.Health(c)

	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestGenerateQR(t *testing.T) {
	h, repo := newTestHandlers(t)
	testutil.NewTestStudent(t, repo, "STU-001", "Amina Hassan")

	e := echo.New()
	body := strings.NewReader(`{"student_id":"STU-001","intent":"arrival"}`)
	c, rec := testutil.NewEchoContext(e, http.MethodPost, "/qr/generate", body)

	err := h.GenerateQR(c)

	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Token     string    `json:"token"`
		IssuedAt  time.Time `json:"issued_at"`
		ExpiresAt time.Time `json:"expires_at"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))

	// 32 random bytes hex encoded
	assert.Len(t, resp.Token, 64)
	assert.Equal(t, models.TokenTTL, resp.ExpiresAt.Sub(resp.IssuedAt))

	// Token is stored and unused
	stored, err := repo.GetQRToken(context.Background(), resp.Token)
	require.NoError(t, err)
	assert.False(t, stored.Used)
	assert.Equal(t, models.IntentArrival, stored.Intent)
}

func TestGenerateQR_UnknownStudent(t *testing.T) {
	h, _ := newTestHandlers(t)

	e := echo.New()
	body := strings.NewReader(`{"student_id":"STU-404","intent":"arrival"}`)
	c, _ := testutil.NewEchoContext(e, http.MethodPost, "/qr/generate", body)

	err := h.GenerateQR(c)

	var httpErr *echo.HTTPError
	require.ErrorAs(t, err, &httpErr)
	assert.Equal(t, http.StatusNotFound, httpErr.Code)
}

func TestGenerateQR_InvalidIntent(t *testing.T) {
	h, repo := newTestHandlers(t)
	testutil.NewTestStudent(t, repo, "STU-001", "Amina Hassan")

	e := echo.New()
	body := strings.NewReader(`{"student_id":"STU-001","intent":"loitering"}`)
	c, _ := testutil.NewEchoContext(e, http.MethodPost, "/qr/generate", body)

	err := h.GenerateQR(c)

	var httpErr *echo.HTTPError
	require.ErrorAs(t, err, &httpErr)
	assert.Equal(t, http.StatusBadRequest, httpErr.Code)
}

func TestGenerateQR_InactiveStudent(t *testing.T) {
	h, repo := newTestHandlers(t)
	student := testutil.NewTestStudent(t, repo, "STU-001", "Amina Hassan")
	student.Active = false
	_, err := repo.DB().Exec(`UPDATE students SET active = 0 WHERE id = ?`, student.ID)
	require.NoError(t, err)

	e := echo.New()
	body := strings.NewReader(`{"student_id":"STU-001","intent":"arrival"}`)
	c, _ := testutil.NewEchoContext(e, http.MethodPost, "/qr/generate", body)

	err = h.GenerateQR(c)

	var httpErr *echo.HTTPError
	require.ErrorAs(t, err, &httpErr)
	assert.Equal(t, http.StatusUnauthorized, httpErr.Code)
}

func validateBody(token string) *strings.Reader {
	payload, _ := json.Marshal(map[string]string{
		"token":      token,
		"scanner_id": "gate-1",
		"location":   "main gate",
	})
	return strings.NewReader(string(payload))
}

func decodeValidateResponse(t *testing.T, body []byte) map[string]any {
	t.Helper()
	var resp map[string]any
	require.NoError(t, json.Unmarshal(body, &resp))
	return resp
}

func TestValidateQR(t *testing.T) {
	h, repo := newTestHandlers(t)
	student := testutil.NewTestStudent(t, repo, "STU-001", "Amina Hassan")
	token := testutil.NewTestQRToken(t, repo, student, models.IntentArrival, models.TokenTTL)

	e := echo.New()
	c, rec := testutil.NewEchoContext(e, http.MethodPost, "/qr/validate", validateBody(token.Token))

	err := h.ValidateQR(c)

	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, rec.Code)

	resp := decodeValidateResponse(t, rec.Body.Bytes())
	assert.Equal(t, true, resp["valid"])
	assert.Equal(t, "STU-001", resp["student_id"])
	assert.Equal(t, "Amina Hassan", resp["student_name"])
	assert.Equal(t, "arrival", resp["intent"])
}

func TestValidateQR_UnknownToken(t *testing.T) {
	h, _ := newTestHandlers(t)

	e := echo.New()
	c, rec := testutil.NewEchoContext(e, http.MethodPost, "/qr/validate", validateBody("no-such-token"))

	err := h.ValidateQR(c)

	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, rec.Code)

	resp := decodeValidateResponse(t, rec.Body.Bytes())
	assert.Equal(t, false, resp["valid"])
	assert.Equal(t, "unknown token", resp["reason"])
}

func TestValidateQR_Expired(t *testing.T) {
	h, repo := newTestHandlers(t)
	student := testutil.NewTestStudent(t, repo, "STU-001", "Amina Hassan")
	token := testutil.NewTestQRToken(t, repo, student, models.IntentArrival, -time.Minute)

	e := echo.New()
	c, rec := testutil.NewEchoContext(e, http.MethodPost, "/qr/validate", validateBody(token.Token))

	err := h.ValidateQR(c)

	require.NoError(t, err)

	resp := decodeValidateResponse(t, rec.Body.Bytes())
	assert.Equal(t, false, resp["valid"])
	assert.Equal(t, "token expired", resp["reason"])
}

func TestValidateQR_SecondScanRejected(t *testing.T) {
	h, repo := newTestHandlers(t)
	student := testutil.NewTestStudent(t, repo, "STU-001", "Amina Hassan")
	token := testutil.NewTestQRToken(t, repo, student, models.IntentArrival, models.TokenTTL)

	e := echo.New()

	c, rec := testutil.NewEchoContext(e, http.MethodPost, "/qr/validate", validateBody(token.Token))
	require.NoError(t, h.ValidateQR(c))
	resp := decodeValidateResponse(t, rec.Body.Bytes())
	assert.Equal(t, true, resp["valid"])

	c, rec = testutil.NewEchoContext(e, http.MethodPost, "/qr/validate", validateBody(token.Token))
	require.NoError(t, h.ValidateQR(c))
	resp = decodeValidateResponse(t, rec.Body.Bytes())
	assert.Equal(t, false, resp["valid"])
	assert.Equal(t, "token already used", resp["reason"])
}

func TestValidateQR_EmptyToken(t *testing.T) {
	h, _ := newTestHandlers(t)

	e := echo.New()
	c, rec := testutil.NewEchoContext(e, http.MethodPost, "/qr/validate", validateBody(""))

	err := h.ValidateQR(c)

	require.NoError(t, err)

	resp := decodeValidateResponse(t, rec.Body.Bytes())
	assert.Equal(t, false, resp["valid"])
}
