package engine_test

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/warp/attribution-engine/engine"
)

// =============================================================================
// COMMISSION PATHS
// =============================================================================

func TestCommission_Flat_SameCurrency(t *testing.T) {
	fee := engine.FeeSpec{Type: engine.FeeFlat, Value: decimal.NewFromInt(50000), Currency: engine.INR}

	got, err := engine.Commission(fee, inr(1200000), inrTable())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !got.Amount.Equal(decimal.NewFromInt(50000)) {
		t.Errorf("expected 50000, got %v", got.Amount)
	}
}

func TestCommission_Flat_ConvertsCurrency(t *testing.T) {
	// GIVEN: A 1000 USD flat fee, USD->INR = 84
	// THEN: 84000 INR
	fee := engine.FeeSpec{Type: engine.FeeFlat, Value: decimal.NewFromInt(1000), Currency: engine.USD}

	got, err := engine.Commission(fee, inr(1200000), inrTable())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !got.Amount.Equal(decimal.NewFromInt(84000)) {
		t.Errorf("expected 84000, got %v", got.Amount)
	}
	if got.Currency != engine.INR {
		t.Errorf("expected INR, got %s", got.Currency)
	}
}

func TestCommission_Percentage(t *testing.T) {
	// GIVEN: 8.33% of 1200000 in base
	// THEN: 99960 exactly
	fee := engine.FeeSpec{Type: engine.FeePercentage, Value: decimal.NewFromFloat(8.33)}

	got, err := engine.Commission(fee, inr(1200000), inrTable())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !got.Amount.Equal(decimal.NewFromInt(99960)) {
		t.Errorf("expected 99960, got %v", got.Amount)
	}
}

func TestInternalMargin_AccrualMinusCompensation(t *testing.T) {
	// The internal placement path books a fixed accrual and absorbs the
	// compensation; margin is the difference.
	got := engine.InternalMargin(inr(150000), inr(110000))
	if !got.Amount.Equal(decimal.NewFromInt(40000)) {
		t.Errorf("expected 40000, got %v", got.Amount)
	}
}

// =============================================================================
// ERROR CONDITIONS - No silent fallback for commissions
// =============================================================================

func TestCommission_NegativeValue_InvalidCommissionError(t *testing.T) {
	fee := engine.FeeSpec{Type: engine.FeePercentage, Value: decimal.NewFromInt(-5)}

	_, err := engine.Commission(fee, inr(1200000), inrTable())
	if !errors.Is(err, engine.ErrInvalidCommission) {
		t.Fatalf("expected ErrInvalidCommission, got %v", err)
	}
}

func TestCommission_UnknownType_UnsupportedCommissionTypeError(t *testing.T) {
	// Unlike period types, an unrecognized fee type is a hard error:
	// defaulting it would materially misstate money.
	fee := engine.FeeSpec{Type: engine.FeeType("retainer"), Value: decimal.NewFromInt(10)}

	_, err := engine.Commission(fee, inr(1200000), inrTable())
	if !errors.Is(err, engine.ErrUnsupportedCommissionType) {
		t.Fatalf("expected ErrUnsupportedCommissionType, got %v", err)
	}
}

func TestCommission_FlatMissingRate_InvalidRateError(t *testing.T) {
	fee := engine.FeeSpec{Type: engine.FeeFlat, Value: decimal.NewFromInt(100), Currency: engine.Currency("GBP")}

	_, err := engine.Commission(fee, inr(1200000), inrTable())
	if !errors.Is(err, engine.ErrInvalidRate) {
		t.Fatalf("expected ErrInvalidRate, got %v", err)
	}
}
