package quote

import (
	"fmt"

	"umzugsbuero/backend/internal/domain/customer"
	"umzugsbuero/backend/internal/domain/money"
)

const VATRate = 0.19

// SplitVAT derives net and VAT from a gross price. Nothing is rounded here;
// rounding is a display concern.
func SplitVAT(gross float64) (net, vat float64) {
	net = gross / (1 + VATRate)
	vat = gross - net
	return net, vat
}

const (
	BasePrice           = 450.0
	PricePerRoom        = 150.0
	PricePerSquareMetre = 8.0
	PricePerFloor       = 50.0

	DefaultRooms = 3.0
	DefaultArea  = 60.0
)

// Estimate computes the automatic draft price:
// base + rooms×150 + area×8 + floor×50 when there is no elevator.
func Estimate(a customer.Apartment) Calculation {
	lines := []Line{
		{Description: "Grundpreis Umzug", Amount: BasePrice},
		{Description: fmt.Sprintf("%s Zimmer à 150 €", money.FormatNumber(a.Rooms)), Amount: a.Rooms * PricePerRoom},
		{Description: fmt.Sprintf("%s m² Wohnfläche à 8 €", money.FormatNumber(a.Area)), Amount: a.Area * PricePerSquareMetre},
	}
	if !a.Elevator && a.Floor > 0 {
		lines = append(lines, Line{
			Description: fmt.Sprintf("Etagenzuschlag %d. OG ohne Aufzug", a.Floor),
			Amount:      float64(a.Floor) * PricePerFloor,
		})
	}
	return Calculation{Lines: lines}
}

