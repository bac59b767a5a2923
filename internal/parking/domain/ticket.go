package domain

import (
	"context"
	"errors"
	"time"
)

type ParkingType string

const (
	ParkingTypeCar  ParkingType = "CAR"
	ParkingTypeBike ParkingType = "BIKE"
)

// IsKnown informa se o tipo de vaga possui tarifa definida pelo estacionamento.
func (p ParkingType) IsKnown() bool {
	return p == ParkingTypeCar || p == ParkingTypeBike
}

var (
	ErrTicketNotFound      = errors.New("ticket not found")
	ErrTicketAlreadyClosed = errors.New("ticket already closed")
)

// Ticket registra uma permanência no estacionamento. OutTime nulo indica que o veículo
// ainda não saiu.
type Ticket struct {
	ID               string      `json:"id" gorm:"primaryKey"`
	ParkingSpotID    int         `json:"parkingSpotId"`
	ParkingType      ParkingType `json:"parkingType"`
	VehicleRegNumber string      `json:"vehicleRegNumber" gorm:"index"`
	Price            float64     `json:"price"`
	InTime           time.Time   `json:"inTime"`
	OutTime          *time.Time  `json:"outTime,omitempty"`
}

func (t Ticket) IsOpen() bool {
	return t.OutTime == nil
}

type TicketRepository interface {
	Save(ctx context.Context, ticket Ticket) error
	// CloseTicket grava saída e preço somente se o ticket ainda estiver aberto. Retorna
	// ErrTicketAlreadyClosed quando outra saída já o encerrou.
	CloseTicket(ctx context.Context, ticket Ticket) error

	// FindOpenByVehicle retorna o ticket ainda sem saída do veículo, ou ErrTicketNotFound.
	FindOpenByVehicle(ctx context.Context, vehicleRegNumber string) (Ticket, error)
	// FindByVehicle retorna os tickets do veículo do mais recente para o mais antigo.
	FindByVehicle(ctx context.Context, vehicleRegNumber string) ([]Ticket, error)
	// HasVisited informa se o veículo possui outro ticket além do informado.
	HasVisited(ctx context.Context, ticket Ticket) (bool, error)
}
