package infrastructure

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/mateusmacedo/go-parking/internal/parking/domain"
	"github.com/mateusmacedo/go-parking/internal/parking/fare"
)

func TestHandleError(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want int
	}{
		{name: "ticket not found", err: domain.ErrTicketNotFound, want: http.StatusNotFound},
		{name: "ticket already closed", err: domain.ErrTicketAlreadyClosed, want: http.StatusConflict},
		{name: "invalid time range", err: fmt.Errorf("%w: out time is missing", fare.ErrInvalidTimeRange), want: http.StatusUnprocessableEntity},
		{name: "unknown parking type", err: fmt.Errorf("%w: \"BUS\"", fare.ErrUnknownParkingType), want: http.StatusUnprocessableEntity},
		{name: "deadline exceeded", err: fmt.Errorf("dispatch: %w", context.DeadlineExceeded), want: http.StatusGatewayTimeout},
		{name: "unexpected failure", err: errors.New("connection reset"), want: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			rec := httptest.NewRecorder()
			handleError(rec, tt.err)

			if rec.Code != tt.want {
				t.Fatalf("expected %d, got %d", tt.want, rec.Code)
			}
			if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
				t.Fatalf("expected json content type, got %q", ct)
			}
		})
	}
}
