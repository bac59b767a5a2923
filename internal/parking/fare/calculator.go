// Package fare calcula o valor de um ticket a partir da permanência, do tipo de vaga e do
// histórico de visitas do veículo.
package fare

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/mateusmacedo/go-parking/internal/parking/domain"
)

const (
	millisPerHour = 3_600_000

	// FreeHours é a permanência máxima, inclusiva, que não é cobrada.
	FreeHours = 0.5
	// ReturningDiscount é o multiplicador aplicado a veículos que já estacionaram aqui.
	ReturningDiscount = 0.95
)

var (
	ErrInvalidTimeRange   = errors.New("invalid time range")
	ErrUnknownParkingType = errors.New("unknown parking type")
	ErrInvalidRate        = errors.New("invalid rate")
)

// VisitHistory informa se o veículo do ticket já estacionou antes, desconsiderando o
// próprio ticket. Deve aceitar tickets ainda sem preço.
type VisitHistory func(ctx context.Context, ticket domain.Ticket) (bool, error)

// RateTable mapeia o tipo de vaga para o valor cobrado por hora.
type RateTable map[domain.ParkingType]float64

type Calculator struct {
	rates RateTable
}

// NewCalculator copia a tabela; alterações posteriores no mapa original não afetam o cálculo.
// Só aceita tipos conhecidos com tarifa finita e não negativa, de modo que nenhum preço
// calculado seja negativo.
func NewCalculator(rates RateTable) (*Calculator, error) {
	copied := make(RateTable, len(rates))
	for parkingType, rate := range rates {
		if !parkingType.IsKnown() {
			return nil, fmt.Errorf("%w: %q", ErrUnknownParkingType, parkingType)
		}
		if rate < 0 || math.IsNaN(rate) || math.IsInf(rate, 0) {
			return nil, fmt.Errorf("%w: %v for %s", ErrInvalidRate, rate, parkingType)
		}
		copied[parkingType] = rate
	}
	return &Calculator{rates: copied}, nil
}

// CalculateFare cobra a permanência inteira, em horas fracionárias, pela tarifa do tipo de
// vaga. Até FreeHours o valor é zero, sem consultar tarifa nem histórico. visited nulo
// desativa o desconto. Em caso de erro o ticket não é alterado.
func (c *Calculator) CalculateFare(ctx context.Context, ticket *domain.Ticket, visited VisitHistory) (float64, error) {
	if ticket.OutTime == nil {
		return 0, fmt.Errorf("%w: out time is missing (in time %s)", ErrInvalidTimeRange, ticket.InTime)
	}
	if ticket.OutTime.Before(ticket.InTime) {
		return 0, fmt.Errorf("%w: out time %s is before in time %s", ErrInvalidTimeRange, ticket.OutTime, ticket.InTime)
	}

	hours := float64(ticket.OutTime.Sub(ticket.InTime).Milliseconds()) / millisPerHour
	if hours <= FreeHours {
		ticket.Price = 0
		return 0, nil
	}

	rate, ok := c.rates[ticket.ParkingType]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrUnknownParkingType, ticket.ParkingType)
	}

	discount := 1.0
	if visited != nil {
		returning, err := visited(ctx, *ticket)
		if err != nil {
			return 0, fmt.Errorf("visit history lookup: %w", err)
		}
		if returning {
			discount = ReturningDiscount
		}
	}

	price := hours * rate * discount
	ticket.Price = price
	return price, nil
}
