package valueobject

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// WeightUnit is the unit of measure for a product variant's weight
type WeightUnit string

const (
	WeightGrams     WeightUnit = "g"
	WeightKilograms WeightUnit = "kg"
)

// IsValid checks if the unit is a supported weight unit
func (u WeightUnit) IsValid() bool {
	return u == WeightGrams || u == WeightKilograms
}

var gramsPerKilogram = decimal.NewFromInt(1000)

// Weight is a value object representing a physical weight.
// It is immutable - all operations return new Weight instances.
type Weight struct {
	value decimal.Decimal
	unit  WeightUnit
}

// NewWeight creates a new Weight with the specified value and unit
func NewWeight(value decimal.Decimal, unit WeightUnit) (Weight, error) {
	if !unit.IsValid() {
		return Weight{}, fmt.Errorf("invalid weight unit: %s", unit)
	}
	if value.IsNegative() {
		return Weight{}, errors.New("weight cannot be negative")
	}
	return Weight{value: value, unit: unit}, nil
}

// NewWeightFromFloat creates Weight from a float64 value
func NewWeightFromFloat(value float64, unit WeightUnit) (Weight, error) {
	return NewWeight(decimal.NewFromFloat(value), unit)
}

// ZeroWeight returns a zero weight in kilograms
func ZeroWeight() Weight {
	return Weight{value: decimal.Zero, unit: WeightKilograms}
}

// Value returns the decimal value in the original unit
func (w Weight) Value() decimal.Decimal {
	return w.value
}

// Unit returns the unit of measure
func (w Weight) Unit() WeightUnit {
	return w.unit
}

// IsZero returns true if the weight is zero
func (w Weight) IsZero() bool {
	return w.value.IsZero()
}

// Kilograms returns the weight normalized to kilograms (grams divided by 1000)
func (w Weight) Kilograms() decimal.Decimal {
	if w.unit == WeightGrams {
		return w.value.Div(gramsPerKilogram)
	}
	return w.value
}

// MultiplyByInt returns the weight multiplied by a unit count
func (w Weight) MultiplyByInt(factor int64) Weight {
	return Weight{value: w.value.Mul(decimal.NewFromInt(factor)), unit: w.unit}
}

// Add returns the sum of both weights, normalized to kilograms
func (w Weight) Add(other Weight) Weight {
	return Weight{value: w.Kilograms().Add(other.Kilograms()), unit: WeightKilograms}
}

// String returns a string representation of the Weight
func (w Weight) String() string {
	return fmt.Sprintf("%s %s", w.value.String(), w.unit)
}

// MarshalJSON implements json.Marshaler
func (w Weight) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Value string     `json:"value"`
		Unit  WeightUnit `json:"unit"`
	}{
		Value: w.value.String(),
		Unit:  w.unit,
	})
}

// UnmarshalJSON implements json.Unmarshaler
func (w *Weight) UnmarshalJSON(data []byte) error {
	var v struct {
		Value string     `json:"value"`
		Unit  WeightUnit `json:"unit"`
	}
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	value, err := decimal.NewFromString(v.Value)
	if err != nil {
		return fmt.Errorf("invalid value: %w", err)
	}
	parsed, err := NewWeight(value, v.Unit)
	if err != nil {
		return err
	}
	*w = parsed
	return nil
}
