package pricing

import (
	"context"
	"fmt"

	"github.com/courierly/wallet-backend/internal/apperrors"
	portssvc "github.com/courierly/wallet-backend/internal/core/ports/services"
	"github.com/courierly/wallet-backend/internal/dto"
	"github.com/shopspring/decimal"
)

// Table-driven estimator: base rate plus a per-kg rate over the billable
// weight, scaled by zone and service level. The billable weight is the
// greater of the actual weight and the volumetric weight.
type Estimator struct {
	baseRate  decimal.Decimal
	perKgRate decimal.Decimal
}

// NewEstimator creates an estimator with the standard rate card.
func NewEstimator() *Estimator {
	return &Estimator{
		baseRate:  decimal.NewFromFloat(4.50),
		perKgRate: decimal.NewFromFloat(1.25),
	}
}

var _ portssvc.PricingSvc = (*Estimator)(nil)

// Divisor for volumetric weight in cm^3 per kg, the common air-freight value.
var volumetricDivisor = decimal.NewFromInt(5000)

var zoneMultipliers = map[string]decimal.Decimal{
	"DOMESTIC":      decimal.NewFromInt(1),
	"REGIONAL":      decimal.NewFromFloat(1.6),
	"INTERNATIONAL": decimal.NewFromFloat(2.8),
}

var serviceMultipliers = map[string]decimal.Decimal{
	"STANDARD": decimal.NewFromInt(1),
	"EXPRESS":  decimal.NewFromFloat(1.75),
}

// Estimate quotes the cost of a shipment. Pure, no side effects.
func (e *Estimator) Estimate(_ context.Context, details dto.ShipmentDetails) (decimal.Decimal, error) {
	if details.WeightKg.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero, fmt.Errorf("%w: weight must be positive, got %s", apperrors.ErrValidation, details.WeightKg.String())
	}
	zoneMult, ok := zoneMultipliers[details.DestinationZone]
	if !ok {
		return decimal.Zero, fmt.Errorf("%w: unknown destination zone %q", apperrors.ErrValidation, details.DestinationZone)
	}
	svcMult, ok := serviceMultipliers[details.ServiceLevel]
	if !ok {
		return decimal.Zero, fmt.Errorf("%w: unknown service level %q", apperrors.ErrValidation, details.ServiceLevel)
	}

	billable := details.WeightKg
	volume := details.LengthCm.Mul(details.WidthCm).Mul(details.HeightCm)
	if volume.IsPositive() {
		volumetric := volume.Div(volumetricDivisor)
		if volumetric.GreaterThan(billable) {
			billable = volumetric
		}
	}

	cost := e.baseRate.Add(e.perKgRate.Mul(billable)).Mul(zoneMult).Mul(svcMult)
	return cost.Round(2), nil
}
