package get_available_slots

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-AppointmentService/internal/api/handlers"
	getAvailableSlots "github.com/m04kA/SMC-AppointmentService/internal/usecase/get_available_slots"
	"github.com/m04kA/SMC-AppointmentService/pkg/logger"
)

type fakeUseCase struct {
	got *getAvailableSlots.Request
	err error
}

func (f *fakeUseCase) Execute(_ context.Context, req *getAvailableSlots.Request) (*getAvailableSlots.Response, error) {
	f.got = req
	if f.err != nil {
		return nil, f.err
	}
	start := time.Date(2026, 10, 19, 9, 0, 0, 0, time.UTC)
	return &getAvailableSlots.Response{
		Date:            req.Date,
		ServiceID:       req.ServiceID,
		StaffID:         req.StaffID,
		Timezone:        "UTC",
		DurationMinutes: 60,
		Slots:           []getAvailableSlots.Slot{{StartTime: start, EndTime: start.Add(time.Hour)}},
	}, nil
}

func serve(uc *fakeUseCase, query string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/api/v1/bookings/availability?"+query, nil)
	w := httptest.NewRecorder()
	NewHandler(uc, logger.Nop()).Handle(w, req)
	return w
}

func TestHandle_Slots(t *testing.T) {
	uc := &fakeUseCase{}
	w := serve(uc, "serviceId=3&staffId=7&date=2026-10-19")

	require.Equal(t, http.StatusOK, w.Code)
	require.NotNil(t, uc.got)
	assert.Equal(t, int64(3), uc.got.ServiceID)
	assert.Equal(t, int64(7), uc.got.StaffID)

	var body AvailableSlotsResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "2026-10-19", body.Date)
	assert.Equal(t, "UTC", body.Timezone)
	require.Len(t, body.Slots, 1)
	assert.True(t, body.Slots[0].StartTime.Equal(time.Date(2026, 10, 19, 9, 0, 0, 0, time.UTC)))
}

func TestHandle_ErrorMapping(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{"service not found", getAvailableSlots.ErrServiceNotFound, http.StatusNotFound, handlers.CodeResourceNotFound},
		{"staff not found", getAvailableSlots.ErrStaffNotFound, http.StatusNotFound, handlers.CodeResourceNotFound},
		{"staff mismatch", getAvailableSlots.ErrStaffMismatch, http.StatusBadRequest, handlers.CodeStaffMismatch},
		{"invalid input", getAvailableSlots.ErrInvalidInput, http.StatusBadRequest, handlers.CodeValidationError},
		{"internal", getAvailableSlots.ErrInternal, http.StatusInternalServerError, handlers.CodeInternalError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := serve(&fakeUseCase{err: tt.err}, "serviceId=3&staffId=7&date=2026-10-19")

			assert.Equal(t, tt.wantStatus, w.Code)
			var body handlers.ErrorResponse
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
			assert.Equal(t, tt.wantCode, body.Code)
		})
	}
}

func TestHandle_BadRequests(t *testing.T) {
	tests := []struct {
		name  string
		query string
	}{
		{"missing service", "staffId=7&date=2026-10-19"},
		{"zero service", "serviceId=0&staffId=7&date=2026-10-19"},
		{"invalid staff", "serviceId=3&staffId=x&date=2026-10-19"},
		{"missing date", "serviceId=3&staffId=7"},
		{"bad date", "serviceId=3&staffId=7&date=19.10.2026"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			uc := &fakeUseCase{}
			w := serve(uc, tt.query)

			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Nil(t, uc.got)
		})
	}
}
