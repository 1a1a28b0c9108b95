package pricing

import (
	"testing"

	"github.com/clynova/cantabria-cart/internal/domain/cart"
	"github.com/clynova/cantabria-cart/internal/domain/shared"
	"github.com/clynova/cantabria-cart/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Test helpers

func clp(amount int64) valueobject.Money {
	return valueobject.NewMoneyCLPFromInt(amount)
}

func clpPtr(amount int64) *valueobject.Money {
	m := clp(amount)
	return &m
}

func pctPtr(p float64) *decimal.Decimal {
	d := decimal.NewFromFloat(p)
	return &d
}

func priceLine(t *testing.T, unitPrice int64, discounted *int64, qty int, weightGrams float64) cart.Line {
	t.Helper()
	price := clp(unitPrice)
	w, err := valueobject.NewWeightFromFloat(weightGrams, valueobject.WeightGrams)
	require.NoError(t, err)
	line := cart.Line{
		Quantity:   qty,
		UnitPrice:  &price,
		UnitWeight: w,
	}
	if discounted != nil {
		d := clp(*discounted)
		line.DiscountedUnitPrice = &d
	}
	return line
}

func TestCalculate_EmptyCart(t *testing.T) {
	breakdown, err := Calculate(nil, nil, nil)
	require.NoError(t, err)
	assert.True(t, breakdown.Subtotal.IsZero())
	assert.True(t, breakdown.ShippingCost.IsZero())
	assert.True(t, breakdown.PaymentCommission.IsZero())
	assert.True(t, breakdown.Total.IsZero())

	// An empty cart under a threshold policy still ships free
	withThreshold := &ShippingPolicy{BaseCost: clp(5000), FreeShippingThreshold: clpPtr(50000)}
	breakdown, err = Calculate(nil, withThreshold, nil)
	require.NoError(t, err)
	assert.True(t, breakdown.ShippingCost.IsZero())

	// A flat policy with no threshold logic applies its base cost
	flat := &ShippingPolicy{BaseCost: clp(5000)}
	breakdown, err = Calculate(nil, flat, nil)
	require.NoError(t, err)
	assert.True(t, breakdown.ShippingCost.Equals(clp(5000)))
}

func TestCalculate_SubtotalPrefersDiscountedPrice(t *testing.T) {
	discounted := int64(12990)
	lines := []cart.Line{
		priceLine(t, 15990, &discounted, 2, 500),
		priceLine(t, 8990, nil, 1, 250),
	}

	breakdown, err := Calculate(lines, nil, nil)
	require.NoError(t, err)
	assert.True(t, breakdown.Subtotal.Equals(clp(2*12990+8990)))
	assert.True(t, breakdown.Total.Equals(breakdown.Subtotal), "no policies yet means total equals subtotal")
}

func TestCalculate_MissingPriceIsFatal(t *testing.T) {
	lines := []cart.Line{{Quantity: 1}}
	_, err := Calculate(lines, nil, nil)
	assert.ErrorIs(t, err, shared.ErrPricingInputMissing)
}

func TestCalculate_FreeShippingBoundary(t *testing.T) {
	policy := &ShippingPolicy{BaseCost: clp(5000), FreeShippingThreshold: clpPtr(50000)}

	// Exactly at the threshold ships free
	at := []cart.Line{priceLine(t, 50000, nil, 1, 100)}
	breakdown, err := Calculate(at, policy, nil)
	require.NoError(t, err)
	assert.True(t, breakdown.ShippingCost.IsZero())

	// One peso below pays the base cost
	below := []cart.Line{priceLine(t, 49999, nil, 1, 100)}
	breakdown, err = Calculate(below, policy, nil)
	require.NoError(t, err)
	assert.True(t, breakdown.ShippingCost.Equals(clp(5000)))
}

func TestCalculate_WeightSurchargeBoundary(t *testing.T) {
	policy := &ShippingPolicy{BaseCost: clp(3000), ExtraCostPerKg: clpPtr(1000)}

	// Exactly 1kg: the first kilogram is included in the base cost
	oneKg := []cart.Line{priceLine(t, 10000, nil, 2, 500)}
	breakdown, err := Calculate(oneKg, policy, nil)
	require.NoError(t, err)
	assert.True(t, breakdown.ShippingCost.Equals(clp(3000)))

	// 1.5kg: only the half kilogram beyond the first is surcharged
	heavier := []cart.Line{priceLine(t, 10000, nil, 3, 500)}
	breakdown, err = Calculate(heavier, policy, nil)
	require.NoError(t, err)
	assert.True(t, breakdown.ShippingCost.Equals(clp(3500)))
}

func TestCalculate_CommissionStacksOnSubtotalPlusShipping(t *testing.T) {
	lines := []cart.Line{priceLine(t, 10000, nil, 1, 100)}
	shipping := &ShippingPolicy{BaseCost: clp(2000)}
	payment := &PaymentPolicy{CommissionPercentage: pctPtr(5)}

	breakdown, err := Calculate(lines, shipping, payment)
	require.NoError(t, err)
	assert.True(t, breakdown.Subtotal.Equals(clp(10000)))
	assert.True(t, breakdown.ShippingCost.Equals(clp(2000)))
	assert.True(t, breakdown.PaymentCommission.Equals(clp(600)))
	assert.True(t, breakdown.Total.Equals(clp(12600)))
}

func TestCalculate_CurrencyMismatchIsErrorNotPanic(t *testing.T) {
	lines := []cart.Line{priceLine(t, 10000, nil, 1, 100)}
	usdBase, err := valueobject.NewMoneyFromString("12.50", valueobject.USD)
	require.NoError(t, err)

	// No payment policy, so the mismatch is only met when totalling
	assert.NotPanics(t, func() {
		_, err := Calculate(lines, &ShippingPolicy{BaseCost: usdBase}, nil)
		assert.Error(t, err)
	})
}

func TestCalculate_CommissionRangeValidation(t *testing.T) {
	lines := []cart.Line{priceLine(t, 1000, nil, 1, 100)}

	_, err := Calculate(lines, nil, &PaymentPolicy{CommissionPercentage: pctPtr(-1)})
	assert.Error(t, err)

	_, err = Calculate(lines, nil, &PaymentPolicy{CommissionPercentage: pctPtr(101)})
	assert.Error(t, err)

	// Nil commission means the method adds no fee
	breakdown, err := Calculate(lines, nil, &PaymentPolicy{})
	require.NoError(t, err)
	assert.True(t, breakdown.PaymentCommission.IsZero())
}

func TestCalculate_Pure(t *testing.T) {
	discounted := int64(12990)
	lines := []cart.Line{priceLine(t, 15990, &discounted, 2, 500)}
	shipping := &ShippingPolicy{BaseCost: clp(5000), ExtraCostPerKg: clpPtr(1000), FreeShippingThreshold: clpPtr(50000)}
	payment := &PaymentPolicy{CommissionPercentage: pctPtr(3.5)}

	first, err := Calculate(lines, shipping, payment)
	require.NoError(t, err)
	second, err := Calculate(lines, shipping, payment)
	require.NoError(t, err)

	assert.True(t, first.Subtotal.Equals(second.Subtotal))
	assert.True(t, first.ShippingCost.Equals(second.ShippingCost))
	assert.True(t, first.PaymentCommission.Equals(second.PaymentCommission))
	assert.True(t, first.Total.Equals(second.Total))
}

func TestCalculate_EndToEndScenario(t *testing.T) {
	// Cart: product A, 500ml variant, qty 2, unit price 15990.
	// Shipping: base 5000, free above 50000. No payment commission.
	lines := []cart.Line{priceLine(t, 15990, nil, 2, 500)}
	shipping := &ShippingPolicy{BaseCost: clp(5000), FreeShippingThreshold: clpPtr(50000)}

	breakdown, err := Calculate(lines, shipping, nil)
	require.NoError(t, err)
	assert.True(t, breakdown.Subtotal.Equals(clp(31980)))
	assert.True(t, breakdown.ShippingCost.Equals(clp(5000)), "31980 is below the threshold")
	assert.True(t, breakdown.PaymentCommission.IsZero())
	assert.True(t, breakdown.Total.Equals(clp(36980)))
}

func TestCalculate_TotalIsSumOfParts(t *testing.T) {
	lines := []cart.Line{
		priceLine(t, 15990, nil, 2, 500),
		priceLine(t, 8990, nil, 3, 1000),
	}
	shipping := &ShippingPolicy{BaseCost: clp(4000), ExtraCostPerKg: clpPtr(1500)}
	payment := &PaymentPolicy{CommissionPercentage: pctPtr(2)}

	breakdown, err := Calculate(lines, shipping, payment)
	require.NoError(t, err)

	sum := breakdown.Subtotal.MustAdd(breakdown.ShippingCost).MustAdd(breakdown.PaymentCommission)
	assert.True(t, breakdown.Total.Equals(sum))
	assert.False(t, breakdown.Total.IsNegative())
}
