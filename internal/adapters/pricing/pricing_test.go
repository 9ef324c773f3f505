package pricing_test

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/courierly/wallet-backend/internal/adapters/pricing"
	"github.com/courierly/wallet-backend/internal/apperrors"
	"github.com/courierly/wallet-backend/internal/dto"
)

func TestEstimate_DomesticStandard(t *testing.T) {
	e := pricing.NewEstimator()

	cost, err := e.Estimate(context.Background(), dto.ShipmentDetails{
		WeightKg:        decimal.NewFromInt(2),
		DestinationZone: "DOMESTIC",
		ServiceLevel:    "STANDARD",
	})

	require.NoError(t, err)
	// 4.50 + 1.25*2 = 7.00
	assert.True(t, cost.Equal(decimal.NewFromFloat(7.00)), "got %s", cost)
}

func TestEstimate_ExpressAndZoneMultipliersApply(t *testing.T) {
	e := pricing.NewEstimator()

	standard, err := e.Estimate(context.Background(), dto.ShipmentDetails{
		WeightKg:        decimal.NewFromInt(2),
		DestinationZone: "INTERNATIONAL",
		ServiceLevel:    "STANDARD",
	})
	require.NoError(t, err)

	express, err := e.Estimate(context.Background(), dto.ShipmentDetails{
		WeightKg:        decimal.NewFromInt(2),
		DestinationZone: "INTERNATIONAL",
		ServiceLevel:    "EXPRESS",
	})
	require.NoError(t, err)

	assert.True(t, express.GreaterThan(standard))
}

func TestEstimate_VolumetricWeightWins(t *testing.T) {
	e := pricing.NewEstimator()

	// 50*50*40 / 5000 = 20kg volumetric vs 1kg actual.
	bulky, err := e.Estimate(context.Background(), dto.ShipmentDetails{
		WeightKg:        decimal.NewFromInt(1),
		LengthCm:        decimal.NewFromInt(50),
		WidthCm:         decimal.NewFromInt(50),
		HeightCm:        decimal.NewFromInt(40),
		DestinationZone: "DOMESTIC",
		ServiceLevel:    "STANDARD",
	})
	require.NoError(t, err)

	dense, err := e.Estimate(context.Background(), dto.ShipmentDetails{
		WeightKg:        decimal.NewFromInt(1),
		DestinationZone: "DOMESTIC",
		ServiceLevel:    "STANDARD",
	})
	require.NoError(t, err)

	assert.True(t, bulky.GreaterThan(dense))
}

func TestEstimate_RejectsBadInput(t *testing.T) {
	e := pricing.NewEstimator()

	_, err := e.Estimate(context.Background(), dto.ShipmentDetails{
		WeightKg:        decimal.Zero,
		DestinationZone: "DOMESTIC",
		ServiceLevel:    "STANDARD",
	})
	assert.ErrorIs(t, err, apperrors.ErrValidation)

	_, err = e.Estimate(context.Background(), dto.ShipmentDetails{
		WeightKg:        decimal.NewFromInt(1),
		DestinationZone: "MOON",
		ServiceLevel:    "STANDARD",
	})
	assert.ErrorIs(t, err, apperrors.ErrValidation)

	_, err = e.Estimate(context.Background(), dto.ShipmentDetails{
		WeightKg:        decimal.NewFromInt(1),
		DestinationZone: "DOMESTIC",
		ServiceLevel:    "OVERNIGHT",
	})
	assert.ErrorIs(t, err, apperrors.ErrValidation)
}
