package application

import (
	"github.com/mateusmacedo/go-parking/pkg/domain"
)

const ProcessExitingVehicleCommandName = "ProcessExitingVehicle"

// ProcessExitingVehicleData identifica o veículo que está deixando o estacionamento.
// TicketID, quando informado, exige que o ticket aberto do veículo seja exatamente esse.
type ProcessExitingVehicleData struct {
	VehicleRegNumber string `json:"vehicleRegNumber"`
	TicketID         string `json:"ticketId,omitempty"`
}

type processExitingVehicleCommand struct {
	data ProcessExitingVehicleData
}

func (c processExitingVehicleCommand) CommandName() string {
	return ProcessExitingVehicleCommandName
}

func (c processExitingVehicleCommand) Payload() ProcessExitingVehicleData {
	return c.data
}

func NewProcessExitingVehicleCommand(data ProcessExitingVehicleData) domain.Command[ProcessExitingVehicleData] {
	return processExitingVehicleCommand{data: data}
}
