package infrastructure

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/mateusmacedo/go-parking/internal/parking/application"
	"github.com/mateusmacedo/go-parking/internal/parking/domain"
	"github.com/mateusmacedo/go-parking/internal/parking/fare"
)

const requestTimeout = 10 * time.Second

type TicketHTTPHandler struct {
	commandBus   application.ExitCommandBus
	findQueryBus application.FindTicketsQueryBus
	fareQueryBus application.QuoteFareQueryBus
}

func NewTicketHTTPHandler(
	commandBus application.ExitCommandBus,
	findQueryBus application.FindTicketsQueryBus,
	fareQueryBus application.QuoteFareQueryBus,
) *TicketHTTPHandler {
	return &TicketHTTPHandler{
		commandBus:   commandBus,
		findQueryBus: findQueryBus,
		fareQueryBus: fareQueryBus,
	}
}

// HandleExitVehicle encerra o ticket aberto e responde com o mesmo ticket já precificado.
func (h *TicketHTTPHandler) HandleExitVehicle(w http.ResponseWriter, r *http.Request) {
	vehicleRegNumber := chi.URLParam(r, "vehicleRegNumber")

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	open, err := h.findTicket(ctx, vehicleRegNumber, latestOpen)
	if err != nil {
		handleError(w, err)
		return
	}

	command := application.NewProcessExitingVehicleCommand(application.ProcessExitingVehicleData{
		VehicleRegNumber: vehicleRegNumber,
		TicketID:         open.ID,
	})
	if err := h.commandBus.Dispatch(ctx, command); err != nil {
		handleError(w, err)
		return
	}

	closed, err := h.findTicket(ctx, vehicleRegNumber, withID(open.ID))
	if err != nil {
		handleError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, closed)
}

func (h *TicketHTTPHandler) findTicket(ctx context.Context, vehicleRegNumber string, match func(domain.Ticket) bool) (domain.Ticket, error) {
	tickets, err := h.findQueryBus.Dispatch(ctx, application.NewFindTicketsQuery(application.FindTicketsData{
		VehicleRegNumber: vehicleRegNumber,
	}))
	if err != nil {
		return domain.Ticket{}, err
	}
	for _, ticket := range tickets {
		if match(ticket) {
			return ticket, nil
		}
	}
	return domain.Ticket{}, domain.ErrTicketNotFound
}

func (h *TicketHTTPHandler) HandleFindTickets(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	tickets, err := h.findQueryBus.Dispatch(ctx, application.NewFindTicketsQuery(application.FindTicketsData{
		VehicleRegNumber: chi.URLParam(r, "vehicleRegNumber"),
	}))
	if err != nil {
		handleError(w, err)
		return
	}
	if tickets == nil {
		tickets = []domain.Ticket{}
	}
	writeJSON(w, http.StatusOK, tickets)
}

func (h *TicketHTTPHandler) HandleQuoteFare(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	ticket, err := h.fareQueryBus.Dispatch(ctx, application.NewQuoteFareQuery(application.QuoteFareData{
		VehicleRegNumber: chi.URLParam(r, "vehicleRegNumber"),
	}))
	if err != nil {
		handleError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ticket)
}

func (h *TicketHTTPHandler) RegisterRoutes(router chi.Router) {
	router.Get("/tickets/{vehicleRegNumber}", h.HandleFindTickets)
	router.Get("/tickets/{vehicleRegNumber}/fare", h.HandleQuoteFare)
	router.Post("/tickets/{vehicleRegNumber}/exit", h.HandleExitVehicle)
}

// latestOpen depende da ordenação do mais recente para o mais antigo.
func latestOpen(ticket domain.Ticket) bool {
	return ticket.IsOpen()
}

func withID(id string) func(domain.Ticket) bool {
	return func(ticket domain.Ticket) bool {
		return ticket.ID == id
	}
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func handleError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, domain.ErrTicketNotFound):
		status = http.StatusNotFound
	case errors.Is(err, domain.ErrTicketAlreadyClosed):
		status = http.StatusConflict
	case errors.Is(err, fare.ErrInvalidTimeRange), errors.Is(err, fare.ErrUnknownParkingType):
		status = http.StatusUnprocessableEntity
	case errors.Is(err, context.DeadlineExceeded):
		status = http.StatusGatewayTimeout
	}
	writeJSON(w, status, map[string]string{"error": err.Error()})
}
