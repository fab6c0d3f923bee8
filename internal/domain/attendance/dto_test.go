package attendance

import (
	"math"
	"testing"
	"time"

	"github.com/mrjaketay/timeApp-sub000/internal/pkg/validator"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func float(v float64) *float64 { return &v }
func str(v string) *string     { return &v }

func TestTapRequest_Validate(t *testing.T) {
	valid := TapRequest{Credential: "EMP-007", Latitude: float(-33.86), Longitude: float(151.2), AccuracyMeters: float(8)}
	require.NoError(t, valid.Validate())
	assert.Nil(t, valid.RequestedType())

	tests := []struct {
		name   string
		mutate func(r *TapRequest)
		field  string
	}{
		{"blank credential", func(r *TapRequest) { r.Credential = "  " }, "credential"},
		{"missing latitude", func(r *TapRequest) { r.Latitude = nil }, "latitude"},
		{"nan longitude", func(r *TapRequest) { r.Longitude = float(math.NaN()) }, "longitude"},
		{"latitude out of range", func(r *TapRequest) { r.Latitude = float(91) }, "latitude"},
		{"negative accuracy", func(r *TapRequest) { r.AccuracyMeters = float(-1) }, "accuracy_meters"},
		{"break type not tappable", func(r *TapRequest) { r.RequestedEventType = str("BREAK_END") }, "requested_event_type"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := valid
			tt.mutate(&req)
			err := req.Validate()
			var vErrs validator.ValidationErrors
			require.ErrorAs(t, err, &vErrs)
			assert.Contains(t, vErrs.ToMap(), tt.field)
		})
	}
}

func TestTapRequest_RequestedType(t *testing.T) {
	req := TapRequest{RequestedEventType: str("clock_out")}
	require.NotNil(t, req.RequestedType())
	assert.Equal(t, EventClockOut, *req.RequestedType())

	req.RequestedEventType = str("")
	assert.Nil(t, req.RequestedType())
}

func TestEventFilter_Defaults(t *testing.T) {
	f := EventFilter{}
	require.NoError(t, f.Validate())
	assert.Equal(t, 1, f.Page)
	assert.Equal(t, 50, f.Limit)

	f = EventFilter{Limit: 500, StartDate: str("02/03/2026")}
	var vErrs validator.ValidationErrors
	require.ErrorAs(t, f.Validate(), &vErrs)
	assert.Contains(t, vErrs.ToMap(), "limit")
	assert.Contains(t, vErrs.ToMap(), "start_date")
}

func TestEventFilter_EmployeeID(t *testing.T) {
	f := EventFilter{EmployeeID: str("EMP-007")}
	var vErrs validator.ValidationErrors
	require.ErrorAs(t, f.Validate(), &vErrs)
	assert.Contains(t, vErrs.ToMap(), "employee_id")

	f = EventFilter{EmployeeID: str("8a0f6c1e-5b2d-4e3a-9c7f-1d2e3f4a5b6c")}
	assert.NoError(t, f.Validate())

	f = EventFilter{EmployeeID: str("")}
	assert.NoError(t, f.Validate())
}

func TestEventFilter_ResolveRange(t *testing.T) {
	sydney, err := time.LoadLocation("Australia/Sydney")
	require.NoError(t, err)

	f := EventFilter{StartDate: str("2026-03-03"), EndDate: str("2026-03-03")}
	require.NoError(t, f.Validate())
	f.ResolveRange(sydney)

	require.NotNil(t, f.CapturedFrom)
	require.NotNil(t, f.CapturedBefore)
	// AEDT is UTC+11 in March
	assert.True(t, f.CapturedFrom.Equal(time.Date(2026, 3, 2, 13, 0, 0, 0, time.UTC)))
	assert.True(t, f.CapturedBefore.Equal(time.Date(2026, 3, 3, 13, 0, 0, 0, time.UTC)))

	event := time.Date(2026, 3, 2, 22, 0, 0, 0, time.UTC)
	assert.False(t, event.Before(*f.CapturedFrom))
	assert.True(t, event.Before(*f.CapturedBefore))

	west := EventFilter{StartDate: str("2026-03-03")}
	west.ResolveRange(time.FixedZone("PST", -8*60*60))
	assert.True(t, west.CapturedFrom.Equal(time.Date(2026, 3, 3, 8, 0, 0, 0, time.UTC)))
	assert.Nil(t, west.CapturedBefore)

	none := EventFilter{}
	none.ResolveRange(sydney)
	assert.Nil(t, none.CapturedFrom)
	assert.Nil(t, none.CapturedBefore)
}
