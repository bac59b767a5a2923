package application

import (
	"time"

	parkingDomain "github.com/mateusmacedo/go-parking/internal/parking/domain"
	"github.com/mateusmacedo/go-parking/pkg/domain"
)

const TicketPaidEventName = "TicketPaid"

// TicketPaidData é serializado em JSON pelos barramentos de mensageria.
type TicketPaidData struct {
	TicketID         string                    `json:"ticketId"`
	VehicleRegNumber string                    `json:"vehicleRegNumber"`
	ParkingType      parkingDomain.ParkingType `json:"parkingType"`
	Price            float64                   `json:"price"`
	OutTime          time.Time                 `json:"outTime"`
}

type ticketPaidEvent struct {
	data TicketPaidData
}

func (e ticketPaidEvent) EventName() string {
	return TicketPaidEventName
}

func (e ticketPaidEvent) Payload() TicketPaidData {
	return e.data
}

func NewTicketPaidEvent(data TicketPaidData) domain.Event[TicketPaidData] {
	return ticketPaidEvent{data: data}
}
