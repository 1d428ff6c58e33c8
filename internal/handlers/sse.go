// Copyright 2025 The eSalama Authors
// Licensed under the EUPL-1.2

package handlers

import (
	"net/http"
	"time"

	"github.com/esalama/gatecheck/internal/sse"
	"github.com/labstack/echo/v4"
)

// heartbeatInterval keeps SSE connections alive through proxies.
const heartbeatInterval = 30 * time.Second

// Events streams gate events to a dashboard. The optional location
// query parameter narrows the stream to one gate; without it the
// client sees every gate.
func (h *Handlers) Events(c echo.Context) error {
	w := c.Response()

	flusher, ok := w.Writer.(http.Flusher)
	if !ok {
		return echo.NewHTTPError(http.StatusInternalServerError, "SSE not supported")
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no") // Disable nginx buffering
	w.WriteHeader(http.StatusOK)

	location := c.QueryParam("location")
	ch := h.hub.Register(location)
	defer h.hub.Unregister(location, ch)

	if _, err := w.Write([]byte(sse.FormatEvent("connected", "ok"))); err != nil {
		return nil
	}
	flusher.Flush()

	ticker := time.NewTicker(heartbeatInterval)
	defer ticker.Stop()

	ctx := c.Request().Context()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if _, err := w.Write([]byte(sse.Heartbeat)); err != nil {
				return nil // Client disconnected
			}
			flusher.Flush()
		case msg, ok := <-ch:
			if !ok {
				return nil
			}
			if _, err := w.Write([]byte(msg)); err != nil {
				return nil
			}
			flusher.Flush()
		}
	}
}
