package application

import (
	"context"

	"github.com/mateusmacedo/go-parking/internal/clock"
	"github.com/mateusmacedo/go-parking/internal/parking/domain"
	"github.com/mateusmacedo/go-parking/internal/parking/fare"
	pkgApp "github.com/mateusmacedo/go-parking/pkg/application"
	pkgDomain "github.com/mateusmacedo/go-parking/pkg/domain"
)

type (
	ExitCommandBus          = pkgApp.CommandBus[pkgDomain.Command[ProcessExitingVehicleData], ProcessExitingVehicleData]
	FindTicketsQueryBus     = pkgApp.QueryBus[pkgDomain.Query[FindTicketsData], FindTicketsData, []domain.Ticket]
	QuoteFareQueryBus       = pkgApp.QueryBus[pkgDomain.Query[QuoteFareData], QuoteFareData, domain.Ticket]
	TicketPaidEventBus      = pkgApp.EventBus[pkgDomain.Event[TicketPaidData], TicketPaidData]
	ExitCommandHandler      = pkgApp.CommandHandler[pkgDomain.Command[ProcessExitingVehicleData], ProcessExitingVehicleData]
	FindTicketsQueryHandler = pkgApp.QueryHandler[pkgDomain.Query[FindTicketsData], FindTicketsData, []domain.Ticket]
	QuoteFareQueryHandler   = pkgApp.QueryHandler[pkgDomain.Query[QuoteFareData], QuoteFareData, domain.Ticket]
	TicketPaidEventHandler  = pkgApp.EventHandler[pkgDomain.Event[TicketPaidData], TicketPaidData]
)

type processExitingVehicleHandler struct {
	eventBus   TicketPaidEventBus
	repository domain.TicketRepository
	calculator *fare.Calculator
	clock      clock.Clock
	logger     pkgApp.AppLogger
}

// Handle fecha o ticket aberto do veículo com o horário atual, calcula o valor e persiste.
// Se o cálculo falhar, ou se outra saída encerrar o ticket antes, nada é gravado nem publicado.
func (h *processExitingVehicleHandler) Handle(ctx context.Context, command pkgDomain.Command[ProcessExitingVehicleData]) error {
	if ctx.Err() != nil {
		pkgApp.LogError(ctx, h.logger, "Contexto cancelado", ctx.Err(), nil)
		return ctx.Err()
	}

	data := command.Payload()
	fields := map[string]interface{}{"vehicle_reg_number": data.VehicleRegNumber}

	ticket, err := h.repository.FindOpenByVehicle(ctx, data.VehicleRegNumber)
	if err != nil {
		pkgApp.LogError(ctx, h.logger, "Erro ao buscar ticket aberto", err, fields)
		return err
	}
	if data.TicketID != "" && ticket.ID != data.TicketID {
		fields["ticket_id"] = data.TicketID
		pkgApp.LogError(ctx, h.logger, "Ticket informado não está mais aberto", domain.ErrTicketAlreadyClosed, fields)
		return domain.ErrTicketAlreadyClosed
	}

	outTime := h.clock.Now()
	ticket.OutTime = &outTime

	price, err := h.calculator.CalculateFare(ctx, &ticket, h.repository.HasVisited)
	if err != nil {
		pkgApp.LogError(ctx, h.logger, "Erro ao calcular tarifa", err, map[string]interface{}{"ticket": ticket})
		return err
	}

	if err := h.repository.CloseTicket(ctx, ticket); err != nil {
		pkgApp.LogError(ctx, h.logger, "Erro ao encerrar ticket", err, map[string]interface{}{"ticket": ticket})
		return err
	}
	pkgApp.LogInfo(ctx, h.logger, "Ticket encerrado", map[string]interface{}{
		"ticket_id":          ticket.ID,
		"vehicle_reg_number": ticket.VehicleRegNumber,
		"price":              price,
	})

	// O ticket já está gravado; falha na publicação não desfaz a saída.
	event := NewTicketPaidEvent(TicketPaidData{
		TicketID:         ticket.ID,
		VehicleRegNumber: ticket.VehicleRegNumber,
		ParkingType:      ticket.ParkingType,
		Price:            price,
		OutTime:          outTime,
	})
	if err := h.eventBus.Publish(ctx, event); err != nil {
		pkgApp.LogError(ctx, h.logger, "Erro ao publicar evento", err, map[string]interface{}{"ticket_id": ticket.ID})
	}

	return nil
}

func NewProcessExitingVehicleHandler(eventBus TicketPaidEventBus, repo domain.TicketRepository, calculator *fare.Calculator, clk clock.Clock, logger pkgApp.AppLogger) ExitCommandHandler {
	return &processExitingVehicleHandler{
		eventBus:   eventBus,
		repository: repo,
		calculator: calculator,
		clock:      clk,
		logger:     logger,
	}
}

type findTicketsHandler struct {
	repository domain.TicketRepository
	logger     pkgApp.AppLogger
}

func (h *findTicketsHandler) Handle(ctx context.Context, query pkgDomain.Query[FindTicketsData]) ([]domain.Ticket, error) {
	if ctx.Err() != nil {
		pkgApp.LogError(ctx, h.logger, "Contexto cancelado", ctx.Err(), nil)
		return nil, ctx.Err()
	}

	data := query.Payload()
	tickets, err := h.repository.FindByVehicle(ctx, data.VehicleRegNumber)
	if err != nil {
		pkgApp.LogError(ctx, h.logger, "Erro ao buscar tickets", err, map[string]interface{}{"vehicle_reg_number": data.VehicleRegNumber})
		return nil, err
	}

	pkgApp.LogDebug(ctx, h.logger, "Tickets encontrados", map[string]interface{}{
		"vehicle_reg_number": data.VehicleRegNumber,
		"count":              len(tickets),
	})
	return tickets, nil
}

func NewFindTicketsHandler(repo domain.TicketRepository, logger pkgApp.AppLogger) FindTicketsQueryHandler {
	return &findTicketsHandler{
		repository: repo,
		logger:     logger,
	}
}

type quoteFareHandler struct {
	repository domain.TicketRepository
	calculator *fare.Calculator
	clock      clock.Clock
	logger     pkgApp.AppLogger
}

// Handle precifica o ticket aberto como se o veículo saísse agora, sem persistir.
func (h *quoteFareHandler) Handle(ctx context.Context, query pkgDomain.Query[QuoteFareData]) (domain.Ticket, error) {
	if ctx.Err() != nil {
		pkgApp.LogError(ctx, h.logger, "Contexto cancelado", ctx.Err(), nil)
		return domain.Ticket{}, ctx.Err()
	}

	data := query.Payload()
	ticket, err := h.repository.FindOpenByVehicle(ctx, data.VehicleRegNumber)
	if err != nil {
		pkgApp.LogError(ctx, h.logger, "Erro ao buscar ticket aberto", err, map[string]interface{}{"vehicle_reg_number": data.VehicleRegNumber})
		return domain.Ticket{}, err
	}

	outTime := h.clock.Now()
	ticket.OutTime = &outTime
	if _, err := h.calculator.CalculateFare(ctx, &ticket, h.repository.HasVisited); err != nil {
		pkgApp.LogError(ctx, h.logger, "Erro ao calcular tarifa", err, map[string]interface{}{"ticket_id": ticket.ID})
		return domain.Ticket{}, err
	}

	return ticket, nil
}

func NewQuoteFareHandler(repo domain.TicketRepository, calculator *fare.Calculator, clk clock.Clock, logger pkgApp.AppLogger) QuoteFareQueryHandler {
	return &quoteFareHandler{
		repository: repo,
		calculator: calculator,
		clock:      clk,
		logger:     logger,
	}
}

type ticketPaidEventHandler struct {
	logger pkgApp.AppLogger
}

func (h *ticketPaidEventHandler) Handle(ctx context.Context, event pkgDomain.Event[TicketPaidData]) error {
	if ctx.Err() != nil {
		pkgApp.LogError(ctx, h.logger, "Contexto cancelado", ctx.Err(), nil)
		return ctx.Err()
	}

	data := event.Payload()
	pkgApp.LogInfo(ctx, h.logger, "Pagamento de ticket recebido", map[string]interface{}{
		"ticket_id":          data.TicketID,
		"vehicle_reg_number": data.VehicleRegNumber,
		"parking_type":       data.ParkingType,
		"price":              data.Price,
	})
	return nil
}

func NewTicketPaidEventHandler(logger pkgApp.AppLogger) TicketPaidEventHandler {
	return &ticketPaidEventHandler{
		logger: logger,
	}
}
