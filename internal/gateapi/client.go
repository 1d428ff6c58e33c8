// Copyright 2025 The eSalama Authors
// Licensed under the EUPL-1.2

// Package gateapi is the HTTP client for the gatecheck verification
// service. It is the only place the scanner and badge apps talk to the
// network.
package gateapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/esalama/gatecheck/internal/models"
)

// DefaultTimeout bounds every request the client makes.
const DefaultTimeout = 15 * time.Second

// ErrUnauthorized is returned when the service rejects the holder
// during token issuance.
var ErrUnauthorized = errors.New("holder not authorized for token issuance")

// Client talks to the verification service.
type Client struct {
	baseURL string
	http    *http.Client
}

// New creates a client for the service at baseURL. A zero timeout
// falls back to DefaultTimeout.
func New(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
	}
}

// IssuedToken is the service's answer to a token request.
type IssuedToken struct {
	Credential string    `json:"token"`
	IssuedAt   time.Time `json:"issued_at"`
	ExpiresAt  time.Time `json:"expires_at"`
}

type issueRequest struct {
	StudentID string        `json:"student_id"`
	Intent    models.Intent `json:"intent"`
}

// IssueToken requests a fresh credential for a student and intent.
func (c *Client) IssueToken(ctx context.Context, studentID string, intent models.Intent) (IssuedToken, error) {
	var issued IssuedToken

	status, err := c.post(ctx, "/qr/generate", issueRequest{StudentID: studentID, Intent: intent}, &issued)
	if err != nil {
		return IssuedToken{}, fmt.Errorf("issue token: %w", err)
	}
	switch {
	case status == http.StatusNotFound, status == http.StatusUnauthorized:
		return IssuedToken{}, ErrUnauthorized
	case status != http.StatusOK:
		return IssuedToken{}, fmt.Errorf("issue token: unexpected status %d", status)
	}
	return issued, nil
}

type validateRequest struct {
	Token     string `json:"token"`
	ScannerID string `json:"scanner_id"`
	Location  string `json:"location"`
}

type validateResponse struct {
	Valid       bool      `json:"valid"`
	StudentID   string    `json:"student_id,omitempty"`
	StudentName string    `json:"student_name,omitempty"`
	ClassName   string    `json:"class_name,omitempty"`
	Intent      string    `json:"intent,omitempty"`
	Timestamp   time.Time `json:"timestamp,omitempty"`
	Reason      string    `json:"reason,omitempty"`
}

// ValidateToken submits a scanned credential for validation and maps
// the response into an Outcome. It never returns an error: anything
// that keeps the service from giving a verdict is a TransportFailure.
func (c *Client) ValidateToken(ctx context.Context, credential, scannerID, location string) Outcome {
	var resp validateResponse

	status, err := c.post(ctx, "/qr/validate", validateRequest{
		Token:     credential,
		ScannerID: scannerID,
		Location:  location,
	}, &resp)
	if err != nil {
		return TransportFailure(err)
	}
	if status != http.StatusOK {
		return TransportFailure(fmt.Errorf("validate: unexpected status %d", status))
	}
	if !resp.Valid {
		reason := resp.Reason
		if reason == "" {
			reason = "token rejected"
		}
		return Invalid(reason)
	}

	intent, err := models.ParseIntent(resp.Intent)
	if err != nil {
		return TransportFailure(fmt.Errorf("validate: malformed response: %w", err))
	}
	return Outcome{
		Kind:        OutcomeValid,
		StudentID:   resp.StudentID,
		StudentName: resp.StudentName,
		ClassName:   resp.ClassName,
		Intent:      intent,
		Timestamp:   resp.Timestamp,
	}
}

// AttendanceRequest is one attendance write.
type AttendanceRequest struct {
	StudentID string        `json:"student_id"`
	Intent    models.Intent `json:"intent"`
	Timestamp time.Time     `json:"timestamp"`
	Location  string        `json:"location"`
	ScannerID string        `json:"scanner_id"`
}

// RecordAttendance writes an attendance record. Any non-2xx answer is
// an error; the caller decides how loudly to fail.
func (c *Client) RecordAttendance(ctx context.Context, record AttendanceRequest) error {
	var resp struct {
		OK bool `json:"ok"`
	}

	status, err := c.post(ctx, "/attendance", record, &resp)
	if err != nil {
		return fmt.Errorf("record attendance: %w", err)
	}
	if status != http.StatusCreated && status != http.StatusOK {
		return fmt.Errorf("record attendance: unexpected status %d", status)
	}
	if !resp.OK {
		return errors.New("record attendance: service reported failure")
	}
	return nil
}

// NotificationRequest asks the service to fan a message out to the
// student's parent and teacher.
type NotificationRequest struct {
	StudentID        string `json:"student_id"`
	Kind             string `json:"kind"`
	Message          string `json:"message"`
	RelatedStudentID string `json:"related_student_id,omitempty"`
}

// SendNotification submits a notification for fan-out.
func (c *Client) SendNotification(ctx context.Context, n NotificationRequest) error {
	var resp struct {
		OK bool `json:"ok"`
	}

	status, err := c.post(ctx, "/notifications", n, &resp)
	if err != nil {
		return fmt.Errorf("send notification: %w", err)
	}
	if status != http.StatusCreated && status != http.StatusOK {
		return fmt.Errorf("send notification: unexpected status %d", status)
	}
	if !resp.OK {
		return errors.New("send notification: service reported failure")
	}
	return nil
}

// post sends a JSON body and decodes a JSON answer. It returns the HTTP
// status so callers can map protocol-level rejections themselves; only
// network and decoding problems become errors.
func (c *Client) post(ctx context.Context, path string, body, out any) (int, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return 0, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return 0, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return 0, err
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	// Error statuses may carry a JSON body too; decode best-effort so
	// callers see protocol rejections, but a garbled 200 is a transport
	// problem.
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		if resp.StatusCode == http.StatusOK {
			return resp.StatusCode, fmt.Errorf("decode response: %w", err)
		}
	}
	return resp.StatusCode, nil
}
