package application

import (
	"github.com/mateusmacedo/go-parking/pkg/domain"
)

const (
	FindTicketsQueryName = "FindTickets"
	QuoteFareQueryName   = "QuoteFare"
)

type FindTicketsData struct {
	VehicleRegNumber string
}

type findTicketsQuery struct {
	data FindTicketsData
}

func (q findTicketsQuery) QueryName() string {
	return FindTicketsQueryName
}

func (q findTicketsQuery) Payload() FindTicketsData {
	return q.data
}

func NewFindTicketsQuery(data FindTicketsData) domain.Query[FindTicketsData] {
	return findTicketsQuery{data: data}
}

// QuoteFareData pede o valor do ticket aberto do veículo caso ele saísse agora.
type QuoteFareData struct {
	VehicleRegNumber string
}

type quoteFareQuery struct {
	data QuoteFareData
}

func (q quoteFareQuery) QueryName() string {
	return QuoteFareQueryName
}

func (q quoteFareQuery) Payload() QuoteFareData {
	return q.data
}

func NewQuoteFareQuery(data QuoteFareData) domain.Query[QuoteFareData] {
	return quoteFareQuery{data: data}
}
