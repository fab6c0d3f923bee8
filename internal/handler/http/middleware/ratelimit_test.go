package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/mrjaketay/timeApp-sub000/internal/domain/user"
	"github.com/stretchr/testify/assert"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func TestRateLimiter_PerClient(t *testing.T) {
	rl := NewRateLimiter(0.001, 2)
	h := rl.Handler(okHandler())

	send := func(remote string, actor *user.Actor) int {
		req := httptest.NewRequest(http.MethodPost, "/tap", nil)
		req.RemoteAddr = remote
		if actor != nil {
			req = req.WithContext(WithActor(req.Context(), *actor))
		}
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec.Code
	}

	assert.Equal(t, http.StatusOK, send("10.0.0.1:5000", nil))
	assert.Equal(t, http.StatusOK, send("10.0.0.1:5001", nil))
	assert.Equal(t, http.StatusTooManyRequests, send("10.0.0.1:5002", nil))

	// Another IP has its own bucket
	assert.Equal(t, http.StatusOK, send("10.0.0.2:5000", nil))

	// Authenticated callers are keyed by user, not address
	kiosk := &user.Actor{UserID: "kiosk-1", CompanyID: "c", Role: user.RoleEmployee}
	assert.Equal(t, http.StatusOK, send("10.0.0.1:5003", kiosk))
	assert.Equal(t, 3, rl.Len())
}

func TestRateLimiter_Cleanup(t *testing.T) {
	now := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	rl := NewRateLimiter(1, 1)
	rl.now = func() time.Time { return now }

	rl.getLimiter("ip:10.0.0.1")
	now = now.Add(20 * time.Minute)
	rl.getLimiter("ip:10.0.0.2")

	removed := rl.Cleanup(10 * time.Minute)
	assert.Equal(t, 1, removed)
	assert.Equal(t, 1, rl.Len())
}

func TestRequirePermission(t *testing.T) {
	h := RequirePermission(user.PermissionAttendanceOverride)(okHandler())

	tests := []struct {
		name  string
		actor *user.Actor
		want  int
	}{
		{name: "no actor", want: http.StatusForbidden},
		{name: "employee", actor: &user.Actor{UserID: "u", CompanyID: "c", Role: user.RoleEmployee}, want: http.StatusForbidden},
		{name: "admin", actor: &user.Actor{UserID: "u", CompanyID: "c", Role: user.RoleAdmin}, want: http.StatusOK},
		{name: "employer", actor: &user.Actor{UserID: "u", CompanyID: "c", Role: user.RoleEmployer}, want: http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/", nil)
			if tt.actor != nil {
				req = req.WithContext(WithActor(req.Context(), *tt.actor))
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)
			assert.Equal(t, tt.want, rec.Code)
		})
	}
}
