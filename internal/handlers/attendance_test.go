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
	"github.com/esalama/gatecheck/internal/sse"
	"github.com/esalama/gatecheck/internal/testutil"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func attendanceBody(studentID, intent string, timestamp time.Time) *strings.Reader {
	payload, _ := json.Marshal(map[string]any{
		"student_id": studentID,
		"intent":     intent,
		"timestamp":  timestamp,
		"location":   "main gate",
		"scanner_id": "gate-1",
	})
	return strings.NewReader(string(payload))
}

func TestCreateAttendance(t *testing.T) {
	h, repo := newTestHandlers(t)
	student := testutil.NewTestStudent(t, repo, "STU-001", "Amina Hassan")

	when := time.Date(2025, 9, 1, 7, 45, 0, 0, time.UTC)

	e := echo.New()
	c, rec := testutil.NewEchoContext(e, http.MethodPost, "/attendance",
		attendanceBody("STU-001", "arrival", when))

	err := h.CreateAttendance(c)

	require.NoError(t, err)
	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.JSONEq(t, `{"ok":true}`, rec.Body.String())

	records, err := repo.ListAttendanceByStudent(context.Background(), student.ID)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, models.IntentArrival, records[0].Intent)
	assert.WithinDuration(t, when, records[0].Timestamp, time.Second)
	assert.Equal(t, "gate-1", records[0].ScannerID)
}

func TestCreateAttendance_UnknownStudent(t *testing.T) {
	h, _ := newTestHandlers(t)

	e := echo.New()
	c, _ := testutil.NewEchoContext(e, http.MethodPost, "/attendance",
		attendanceBody("STU-404", "arrival", time.Now()))

	err := h.CreateAttendance(c)

	var httpErr *echo.HTTPError
	require.ErrorAs(t, err, &httpErr)
	assert.Equal(t, http.StatusNotFound, httpErr.Code)
}

func TestCreateAttendance_ZeroTimestampDefaultsToNow(t *testing.T) {
	h, repo := newTestHandlers(t)
	student := testutil.NewTestStudent(t, repo, "STU-001", "Amina Hassan")

	e := echo.New()
	body := strings.NewReader(`{"student_id":"STU-001","intent":"departure","location":"main gate","scanner_id":"gate-1"}`)
	c, rec := testutil.NewEchoContext(e, http.MethodPost, "/attendance", body)

	err := h.CreateAttendance(c)

	require.NoError(t, err)
	assert.Equal(t, http.StatusCreated, rec.Code)

	records, err := repo.ListAttendanceByStudent(context.Background(), student.ID)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.WithinDuration(t, time.Now(), records[0].Timestamp, 5*time.Second)
}

func TestCreateAttendance_PublishesEvent(t *testing.T) {
	_, repo := testutil.NewTestDB(t)
	hub := sse.NewHub()
	h := handlers.New(repo, hub, nil)
	testutil.NewTestStudent(t, repo, "STU-001", "Amina Hassan")

	ch := hub.Register("main gate")

	e := echo.New()
	c, _ := testutil.NewEchoContext(e, http.MethodPost, "/attendance",
		attendanceBody("STU-001", "arrival", time.Now()))
	require.NoError(t, h.CreateAttendance(c))

	select {
	case event := <-ch:
		assert.Contains(t, event, "event: attendance")
		assert.Contains(t, event, "Amina Hassan")
	default:
		t.Fatal("expected an attendance event on the hub")
	}
}

func TestListAttendance_ByStudent(t *testing.T) {
	h, repo := newTestHandlers(t)
	testutil.NewTestStudent(t, repo, "STU-001", "Amina Hassan")

	e := echo.New()
	c, _ := testutil.NewEchoContext(e, http.MethodPost, "/attendance",
		attendanceBody("STU-001", "arrival", time.Now()))
	require.NoError(t, h.CreateAttendance(c))

	c, rec := testutil.NewEchoContext(e, http.MethodGet, "/attendance?student_id=STU-001", nil)
	err := h.ListAttendance(c)

	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, rec.Code)

	var records []models.Attendance
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &records))
	assert.Len(t, records, 1)
}

func TestListAttendance_ByDay(t *testing.T) {
	h, repo := newTestHandlers(t)
	testutil.NewTestStudent(t, repo, "STU-001", "Amina Hassan")

	when := time.Date(2025, 9, 1, 7, 45, 0, 0, time.UTC)

	e := echo.New()
	c, _ := testutil.NewEchoContext(e, http.MethodPost, "/attendance",
		attendanceBody("STU-001", "arrival", when))
	require.NoError(t, h.CreateAttendance(c))

	c, rec := testutil.NewEchoContext(e, http.MethodGet, "/attendance?day=2025-09-01", nil)
	require.NoError(t, h.ListAttendance(c))

	var records []models.Attendance
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &records))
	assert.Len(t, records, 1)

	c, rec = testutil.NewEchoContext(e, http.MethodGet, "/attendance?day=2025-09-02", nil)
	require.NoError(t, h.ListAttendance(c))

	records = nil
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &records))
	assert.Empty(t, records)
}

func TestListAttendance_InvalidDay(t *testing.T) {
	h, _ := newTestHandlers(t)

	e := echo.New()
	c, _ := testutil.NewEchoContext(e, http.MethodGet, "/attendance?day=yesterday", nil)

	err := h.ListAttendance(c)

	var httpErr *echo.HTTPError
	require.ErrorAs(t, err, &httpErr)
	assert.Equal(t, http.StatusBadRequest, httpErr.Code)
}
