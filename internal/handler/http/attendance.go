package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/mrjaketay/timeApp-sub000/internal/domain/attendance"
	"github.com/mrjaketay/timeApp-sub000/internal/domain/user"
	"github.com/mrjaketay/timeApp-sub000/internal/handler/http/middleware"
	"github.com/mrjaketay/timeApp-sub000/internal/handler/http/response"
	"github.com/mrjaketay/timeApp-sub000/internal/pkg/jwt"
	"github.com/mrjaketay/timeApp-sub000/internal/pkg/sse"
)

type AttendanceHandler interface {
	Tap(w http.ResponseWriter, r *http.Request)
	GetState(w http.ResponseWriter, r *http.Request)
	ListEvents(w http.ResponseWriter, r *http.Request)
	PutOnBreak(w http.ResponseWriter, r *http.Request)
	EndBreak(w http.ResponseWriter, r *http.Request)
	ClockOutEmployee(w http.ResponseWriter, r *http.Request)

	// SSE
	GetStreamToken(w http.ResponseWriter, r *http.Request)
	Stream(w http.ResponseWriter, r *http.Request)
}

type attendanceHandlerImpl struct {
	attendanceService attendance.AttendanceService
	jwtService        jwt.Service
	hub               *sse.Hub
	keepalive         time.Duration
}

func NewAttendanceHandler(attendanceService attendance.AttendanceService, jwtService jwt.Service, hub *sse.Hub) AttendanceHandler {
	return &attendanceHandlerImpl{
		attendanceService: attendanceService,
		jwtService:        jwtService,
		hub:               hub,
		keepalive:         30 * time.Second,
	}
}

// Tap implements AttendanceHandler.
func (h *attendanceHandlerImpl) Tap(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.ActorFromContext(r.Context())
	if !ok {
		response.Unauthorized(w, "Invalid token")
		return
	}

	var req attendance.TapRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body", nil)
		return
	}

	result, err := h.attendanceService.Tap(r.Context(), actor, req)
	if err != nil {
		slog.Error("Tap failed", "company_id", actor.CompanyID, "error", err)
		response.HandleError(w, err)
		return
	}

	if !result.Accepted {
		response.Rejected(w, http.StatusBadRequest, string(result.Code), result.Reason, result.Details, result)
		return
	}

	response.SuccessWithMessage(w, tapMessage(result), result)
}

func tapMessage(result attendance.TapResult) string {
	if result.EventType == nil {
		return ""
	}
	switch *result.EventType {
	case attendance.EventClockIn:
		return fmt.Sprintf("%s clocked in", result.EmployeeName)
	case attendance.EventClockOut:
		return fmt.Sprintf("%s clocked out", result.EmployeeName)
	}
	return ""
}

// GetState implements AttendanceHandler.
func (h *attendanceHandlerImpl) GetState(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.ActorFromContext(r.Context())
	if !ok {
		response.Unauthorized(w, "Invalid token")
		return
	}

	result, err := h.attendanceService.GetState(r.Context(), actor, chi.URLParam(r, "id"))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// ListEvents implements AttendanceHandler.
func (h *attendanceHandlerImpl) ListEvents(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.ActorFromContext(r.Context())
	if !ok {
		response.Unauthorized(w, "Invalid token")
		return
	}

	// Parse query parameters
	filter := attendance.EventFilter{}

	if employeeID := r.URL.Query().Get("employee_id"); employeeID != "" {
		filter.EmployeeID = &employeeID
	}

	if eventType := r.URL.Query().Get("event_type"); eventType != "" {
		filter.EventType = &eventType
	}

	if startDate := r.URL.Query().Get("start_date"); startDate != "" {
		filter.StartDate = &startDate
	}

	if endDate := r.URL.Query().Get("end_date"); endDate != "" {
		filter.EndDate = &endDate
	}

	filter.Page, filter.Limit = parsePagination(r)

	result, err := h.attendanceService.ListEvents(r.Context(), actor, filter)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMeta(w, result, &response.Meta{
		Page:       result.Page,
		Limit:      result.Limit,
		TotalItems: result.TotalCount,
		TotalPages: result.TotalPages,
	})
}

// PutOnBreak implements AttendanceHandler.
func (h *attendanceHandlerImpl) PutOnBreak(w http.ResponseWriter, r *http.Request) {
	h.override(w, r, h.attendanceService.PutOnBreak)
}

// EndBreak implements AttendanceHandler.
func (h *attendanceHandlerImpl) EndBreak(w http.ResponseWriter, r *http.Request) {
	h.override(w, r, h.attendanceService.EndBreak)
}

// ClockOutEmployee implements AttendanceHandler.
func (h *attendanceHandlerImpl) ClockOutEmployee(w http.ResponseWriter, r *http.Request) {
	h.override(w, r, h.attendanceService.ClockOutEmployee)
}

type overrideFunc func(ctx context.Context, actor user.Actor, req attendance.OverrideRequest) (attendance.OverrideResult, error)

func (h *attendanceHandlerImpl) override(w http.ResponseWriter, r *http.Request, run overrideFunc) {
	actor, ok := middleware.ActorFromContext(r.Context())
	if !ok {
		response.Unauthorized(w, "Invalid token")
		return
	}

	// The body is optional; it only carries notes
	var req attendance.OverrideRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		response.BadRequest(w, "Invalid request body", nil)
		return
	}
	req.EmployeeID = chi.URLParam(r, "id")

	result, err := run(r.Context(), actor, req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	if !result.Success {
		status := http.StatusBadRequest
		if result.Code == attendance.RejectionNotFound {
			status = http.StatusNotFound
		}
		response.Rejected(w, status, string(result.Code), result.Error, nil, result)
		return
	}

	response.SuccessWithMessage(w, result.Message, result)
}

type streamTokenResponse struct {
	Token     string `json:"token"`
	ExpiresIn int    `json:"expires_in"`
}

// GetStreamToken generates a short-lived token for SSE connections
func (h *attendanceHandlerImpl) GetStreamToken(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.ActorFromContext(r.Context())
	if !ok {
		response.Unauthorized(w, "Invalid token")
		return
	}

	token, expiresIn, err := h.jwtService.GenerateSSEToken(actor)
	if err != nil {
		response.InternalServerError(w, "Failed to generate stream token")
		return
	}

	response.Success(w, streamTokenResponse{
		Token:     token,
		ExpiresIn: expiresIn,
	})
}

// Stream pushes accepted attendance events of the caller's company
func (h *attendanceHandlerImpl) Stream(w http.ResponseWriter, r *http.Request) {
	// EventSource cannot send headers, the token comes in the query string
	tokenStr := r.URL.Query().Get("token")
	if tokenStr == "" {
		http.Error(w, "Missing token", http.StatusUnauthorized)
		return
	}

	actor, err := h.jwtService.ValidateSSEToken(tokenStr)
	if err != nil {
		http.Error(w, "Invalid token", http.StatusUnauthorized)
		return
	}
	if !actor.Can(user.PermissionAttendanceViewAll) {
		http.Error(w, "Forbidden", http.StatusForbidden)
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming not supported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")

	events, cleanup := h.hub.Subscribe(actor.CompanyID)
	defer cleanup()

	fmt.Fprintf(w, "event: connected\ndata: {\"status\":\"connected\",\"company_id\":%s}\n\n", strconv.Quote(actor.CompanyID))
	flusher.Flush()

	keepalive := time.NewTicker(h.keepalive)
	defer keepalive.Stop()

	for {
		select {
		case event, ok := <-events:
			if !ok {
				return
			}
			data, err := json.Marshal(event.Data)
			if err != nil {
				continue
			}
			fmt.Fprintf(w, "id: %s\nevent: %s\ndata: %s\n\n", event.ID, event.Event, data)
			flusher.Flush()

		case <-keepalive.C:
			fmt.Fprintf(w, "event: ping\ndata: {\"timestamp\":%d}\n\n", time.Now().Unix())
			flusher.Flush()

		case <-r.Context().Done():
			return
		}
	}
}

// parsePagination reads page and limit, leaving zero for the DTO defaults
func parsePagination(r *http.Request) (page, limit int) {
	if p := r.URL.Query().Get("page"); p != "" {
		if pageNum, err := strconv.Atoi(p); err == nil && pageNum > 0 {
			page = pageNum
		}
	}

	if l := r.URL.Query().Get("limit"); l != "" {
		if limitNum, err := strconv.Atoi(l); err == nil && limitNum > 0 {
			limit = limitNum
		}
	}

	return page, limit
}
