package update_booking_status

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-AppointmentService/internal/api/handlers"
	"github.com/m04kA/SMC-AppointmentService/internal/api/middleware"
	"github.com/m04kA/SMC-AppointmentService/internal/domain"
	"github.com/m04kA/SMC-AppointmentService/internal/service/bookings"
	"github.com/m04kA/SMC-AppointmentService/internal/service/bookings/models"
	"github.com/m04kA/SMC-AppointmentService/pkg/logger"
)

type fakeService struct {
	got *models.UpdateStatusRequest
	err error
}

func (f *fakeService) UpdateStatus(_ context.Context, req *models.UpdateStatusRequest) (*models.BookingResponse, error) {
	f.got = req
	if f.err != nil {
		return nil, f.err
	}
	return &models.BookingResponse{ID: req.BookingID, Status: req.Status}, nil
}

func serve(svc *fakeService, bookingID, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPatch, "/api/v1/bookings/"+bookingID+"/status", strings.NewReader(body))
	req = mux.SetURLVars(req, map[string]string{"bookingId": bookingID})
	req = req.WithContext(middleware.WithActor(req.Context(), domain.Actor{UserID: 7, Role: domain.RoleOwner}))
	w := httptest.NewRecorder()
	NewHandler(svc, logger.Nop()).Handle(w, req)
	return w
}

func TestHandle_StatusUpdated(t *testing.T) {
	svc := &fakeService{}
	w := serve(svc, "5", `{"status":"confirmed"}`)

	require.Equal(t, http.StatusOK, w.Code)
	require.NotNil(t, svc.got)
	assert.Equal(t, int64(5), svc.got.BookingID)
	assert.Equal(t, "confirmed", svc.got.Status)
	assert.Equal(t, int64(7), svc.got.Actor.UserID)

	var body models.BookingResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "confirmed", body.Status)
}

func TestHandle_ErrorMapping(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{"not found", bookings.ErrBookingNotFound, http.StatusNotFound, handlers.CodeResourceNotFound},
		{"access denied", bookings.ErrAccessDenied, http.StatusForbidden, handlers.CodeAccessDenied},
		{"bad transition", bookings.ErrInvalidTransition, http.StatusConflict, handlers.CodeInvalidStatusTransition},
		{"cancel too late", bookings.ErrCannotCancel, http.StatusBadRequest, handlers.CodeCancellationNotAllowed},
		{"stale", bookings.ErrConcurrentModification, http.StatusConflict, handlers.CodeConcurrentModification},
		{"invalid input", bookings.ErrInvalidInput, http.StatusBadRequest, handlers.CodeValidationError},
		{"internal", bookings.ErrInternal, http.StatusInternalServerError, handlers.CodeInternalError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := serve(&fakeService{err: tt.err}, "5", `{"status":"completed"}`)

			assert.Equal(t, tt.wantStatus, w.Code)
			var body handlers.ErrorResponse
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
			assert.Equal(t, tt.wantCode, body.Code)
		})
	}
}

func TestHandle_BadRequests(t *testing.T) {
	tests := []struct {
		name      string
		bookingID string
		body      string
	}{
		{"invalid booking id", "abc", `{"status":"confirmed"}`},
		{"malformed json", "5", `{"status":`},
		{"missing status", "5", `{}`},
		{"unknown status", "5", `{"status":"archived"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &fakeService{}
			w := serve(svc, tt.bookingID, tt.body)

			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Nil(t, svc.got)
		})
	}
}
