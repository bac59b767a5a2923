package infrastructure

import (
	"context"
	"errors"
	"sort"
	"sync"

	"github.com/mateusmacedo/go-parking/internal/parking/domain"
	"github.com/mateusmacedo/go-parking/pkg/application"
)

var ErrTicketAlreadyExists = errors.New("ticket already exists")

type InMemoryTicketRepository struct {
	mu     sync.RWMutex
	data   map[string]domain.Ticket
	logger application.AppLogger
}

func NewInMemoryTicketRepository(logger application.AppLogger) *InMemoryTicketRepository {
	return &InMemoryTicketRepository{
		data:   make(map[string]domain.Ticket),
		logger: logger,
	}
}

func (r *InMemoryTicketRepository) Save(ctx context.Context, ticket domain.Ticket) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.data[ticket.ID]; exists {
		application.LogError(ctx, r.logger, "ticket already exists", ErrTicketAlreadyExists, map[string]interface{}{
			"ticket_id": ticket.ID,
		})
		return ErrTicketAlreadyExists
	}

	r.data[ticket.ID] = cloneTicket(ticket)
	application.LogDebug(ctx, r.logger, "ticket saved", map[string]interface{}{"ticket_id": ticket.ID})
	return nil
}

func (r *InMemoryTicketRepository) CloseTicket(ctx context.Context, ticket domain.Ticket) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, exists := r.data[ticket.ID]
	if !exists {
		application.LogError(ctx, r.logger, "ticket not found", domain.ErrTicketNotFound, map[string]interface{}{
			"ticket_id": ticket.ID,
		})
		return domain.ErrTicketNotFound
	}
	if !stored.IsOpen() {
		application.LogError(ctx, r.logger, "ticket already closed", domain.ErrTicketAlreadyClosed, map[string]interface{}{
			"ticket_id": ticket.ID,
		})
		return domain.ErrTicketAlreadyClosed
	}

	r.data[ticket.ID] = cloneTicket(ticket)
	application.LogDebug(ctx, r.logger, "ticket closed", map[string]interface{}{"ticket_id": ticket.ID})
	return nil
}

// FindOpenByVehicle escolhe o ticket aberto mais recente se houver mais de um.
func (r *InMemoryTicketRepository) FindOpenByVehicle(ctx context.Context, vehicleRegNumber string) (domain.Ticket, error) {
	for _, ticket := range r.byVehicle(vehicleRegNumber) {
		if ticket.IsOpen() {
			return ticket, nil
		}
	}
	return domain.Ticket{}, domain.ErrTicketNotFound
}

func (r *InMemoryTicketRepository) FindByVehicle(ctx context.Context, vehicleRegNumber string) ([]domain.Ticket, error) {
	return r.byVehicle(vehicleRegNumber), nil
}

func (r *InMemoryTicketRepository) HasVisited(ctx context.Context, ticket domain.Ticket) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for id, stored := range r.data {
		if id != ticket.ID && stored.VehicleRegNumber == ticket.VehicleRegNumber {
			return true, nil
		}
	}
	return false, nil
}

func (r *InMemoryTicketRepository) byVehicle(vehicleRegNumber string) []domain.Ticket {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var tickets []domain.Ticket
	for _, ticket := range r.data {
		if ticket.VehicleRegNumber == vehicleRegNumber {
			tickets = append(tickets, cloneTicket(ticket))
		}
	}
	sort.Slice(tickets, func(i, j int) bool {
		return tickets[i].InTime.After(tickets[j].InTime)
	})
	return tickets
}

// cloneTicket evita que chamadores compartilhem o ponteiro de OutTime com o armazenamento.
func cloneTicket(ticket domain.Ticket) domain.Ticket {
	if ticket.OutTime != nil {
		out := *ticket.OutTime
		ticket.OutTime = &out
	}
	return ticket
}
