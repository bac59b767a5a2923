package parking

import (
	"github.com/go-chi/chi/v5"

	"github.com/mateusmacedo/go-parking/internal/clock"
	"github.com/mateusmacedo/go-parking/internal/parking/application"
	"github.com/mateusmacedo/go-parking/internal/parking/domain"
	"github.com/mateusmacedo/go-parking/internal/parking/fare"
	"github.com/mateusmacedo/go-parking/internal/parking/infrastructure"
	pkgApp "github.com/mateusmacedo/go-parking/pkg/application"
)

type ParkingSlice struct {
	httpHandler *infrastructure.TicketHTTPHandler
}

// NewParkingSlice registra os handlers de saída, consulta e cotação nos barramentos e monta
// o handler HTTP sobre eles.
func NewParkingSlice(
	commandBus application.ExitCommandBus,
	findQueryBus application.FindTicketsQueryBus,
	fareQueryBus application.QuoteFareQueryBus,
	eventBus application.TicketPaidEventBus,
	repository domain.TicketRepository,
	calculator *fare.Calculator,
	clk clock.Clock,
	logger pkgApp.AppLogger,
) *ParkingSlice {
	commandBus.RegisterHandler(application.ProcessExitingVehicleCommandName,
		application.NewProcessExitingVehicleHandler(eventBus, repository, calculator, clk, logger))
	findQueryBus.RegisterHandler(application.FindTicketsQueryName,
		application.NewFindTicketsHandler(repository, logger))
	fareQueryBus.RegisterHandler(application.QuoteFareQueryName,
		application.NewQuoteFareHandler(repository, calculator, clk, logger))
	eventBus.RegisterHandler(application.TicketPaidEventName,
		application.NewTicketPaidEventHandler(logger))

	return &ParkingSlice{
		httpHandler: infrastructure.NewTicketHTTPHandler(commandBus, findQueryBus, fareQueryBus),
	}
}

func (s *ParkingSlice) RegisterRoutes(router chi.Router) {
	s.httpHandler.RegisterRoutes(router)
}
