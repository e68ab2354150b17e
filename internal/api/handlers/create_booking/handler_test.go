package create_booking

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-AppointmentService/internal/api/handlers"
	"github.com/m04kA/SMC-AppointmentService/internal/api/middleware"
	"github.com/m04kA/SMC-AppointmentService/internal/domain"
	createBooking "github.com/m04kA/SMC-AppointmentService/internal/usecase/create_booking"
	"github.com/m04kA/SMC-AppointmentService/pkg/logger"
)

type fakeUseCase struct {
	got *createBooking.Request
	err error
}

func (f *fakeUseCase) Execute(_ context.Context, req *createBooking.Request) (*createBooking.Response, error) {
	f.got = req
	if f.err != nil {
		return nil, f.err
	}
	return &createBooking.Response{Booking: &domain.Booking{
		ID:         7,
		CustomerID: req.CustomerID,
		ServiceID:  req.ServiceID,
		StaffID:    req.StaffID,
		StartTime:  req.StartTime,
		EndTime:    req.StartTime.Add(time.Hour),
		Status:     domain.StatusPending,
	}}, nil
}

const validBody = `{"serviceId":1,"staffId":2,"startTime":"2026-10-19T10:00:00Z"}`

func serve(t *testing.T, uc *fakeUseCase, body string, withActor bool) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/bookings", strings.NewReader(body))
	if withActor {
		req = req.WithContext(middleware.WithActor(req.Context(), domain.Actor{UserID: 42, Role: domain.RoleCustomer}))
	}
	w := httptest.NewRecorder()
	NewHandler(uc, logger.Nop()).Handle(w, req)
	return w
}

func TestHandle_Created(t *testing.T) {
	uc := &fakeUseCase{}
	w := serve(t, uc, validBody, true)

	require.Equal(t, http.StatusCreated, w.Code)
	require.NotNil(t, uc.got)
	assert.Equal(t, int64(42), uc.got.CustomerID)
	assert.Equal(t, int64(2), uc.got.StaffID)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, float64(7), body["id"])
	assert.Equal(t, "pending", body["status"])
}

func TestHandle_ErrorMapping(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{"conflict", fmt.Errorf("%w: taken", createBooking.ErrBookingConflict), http.StatusConflict, handlers.CodeBookingConflict},
		{"outside hours", createBooking.ErrOutsideWorkingHours, http.StatusBadRequest, handlers.CodeOutsideWorkingHours},
		{"mismatch", createBooking.ErrStaffMismatch, http.StatusBadRequest, handlers.CodeStaffMismatch},
		{"service not found", createBooking.ErrServiceNotFound, http.StatusNotFound, handlers.CodeResourceNotFound},
		{"invalid input", createBooking.ErrInvalidInput, http.StatusBadRequest, handlers.CodeValidationError},
		{"internal", createBooking.ErrInternal, http.StatusInternalServerError, handlers.CodeInternalError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := serve(t, &fakeUseCase{err: tt.err}, validBody, true)

			assert.Equal(t, tt.wantStatus, w.Code)
			var body handlers.ErrorResponse
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
			assert.Equal(t, tt.wantCode, body.Code)
		})
	}
}

func TestHandle_BadRequests(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"malformed json", `{"serviceId":`},
		{"unknown field", `{"serviceId":1,"staffId":2,"startTime":"2026-10-19T10:00:00Z","price":1}`},
		{"missing staff", `{"serviceId":1,"startTime":"2026-10-19T10:00:00Z"}`},
		{"bad email", `{"serviceId":1,"staffId":2,"startTime":"2026-10-19T10:00:00Z","customerEmail":"nope"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			uc := &fakeUseCase{}
			w := serve(t, uc, tt.body, true)

			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Nil(t, uc.got)
		})
	}
}

func TestHandle_Unauthorized(t *testing.T) {
	w := serve(t, &fakeUseCase{}, validBody, false)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
