package cart

import (
	"time"

	"github.com/clynova/cantabria-cart/internal/domain/shared"
	"github.com/clynova/cantabria-cart/internal/domain/shared/valueobject"
	"github.com/google/uuid"
)

// Origin tags where a cart snapshot came from. It is only meaningful
// during reconciliation, when a locally held cart is folded into the
// server-held one.
type Origin string

const (
	OriginLocal  Origin = "local"
	OriginServer Origin = "server"
)

// IsValid checks if the origin is a valid provenance tag
func (o Origin) IsValid() bool {
	return o == OriginLocal || o == OriginServer
}

// QuantityMode selects how a quantity mutation is applied to a line
type QuantityMode string

const (
	QuantityIncrement QuantityMode = "increment"
	QuantityDecrement QuantityMode = "decrement"
	QuantitySet       QuantityMode = "set"
)

// IsValid checks if the mode is a valid QuantityMode
func (m QuantityMode) IsValid() bool {
	switch m {
	case QuantityIncrement, QuantityDecrement, QuantitySet:
		return true
	}
	return false
}

// LineKey identifies a line within a cart. No two lines in the same cart
// may share a key; a mutation targeting an existing key updates it in place.
type LineKey struct {
	ProductID uuid.UUID
	VariantID uuid.UUID
}

// VariantSnapshot is the price/stock record the catalog collaborator serves
// for one purchasable variant. Prices are snapshots taken at refresh time;
// stock is advisory (the backend re-validates on order submission).
type VariantSnapshot struct {
	Price           *valueobject.Money
	DiscountedPrice *valueobject.Money
	Stock           int
	UnitWeight      valueobject.Weight
}

// Line is one purchasable unit in a cart
type Line struct {
	ID                  uuid.UUID
	CartID              uuid.UUID
	ProductID           uuid.UUID
	VariantID           uuid.UUID
	Quantity            int
	UnitPrice           *valueobject.Money
	DiscountedUnitPrice *valueobject.Money
	AvailableStock      int
	UnitWeight          valueobject.Weight
	CreatedAt           time.Time
	UpdatedAt           time.Time
}

// NewLine creates a new cart line from a catalog snapshot
func NewLine(cartID, productID, variantID uuid.UUID, quantity int, snap VariantSnapshot) (*Line, error) {
	if productID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_PRODUCT", "Product ID cannot be empty")
	}
	if variantID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_VARIANT", "Variant ID cannot be empty")
	}
	if quantity < 1 {
		return nil, shared.NewDomainError("INVALID_QUANTITY", "Quantity must be at least 1")
	}

	now := time.Now()
	return &Line{
		ID:                  uuid.New(),
		CartID:              cartID,
		ProductID:           productID,
		VariantID:           variantID,
		Quantity:            quantity,
		UnitPrice:           snap.Price,
		DiscountedUnitPrice: snap.DiscountedPrice,
		AvailableStock:      snap.Stock,
		UnitWeight:          snap.UnitWeight,
		CreatedAt:           now,
		UpdatedAt:           now,
	}, nil
}

// Key returns the (product, variant) identity of the line
func (l *Line) Key() LineKey {
	return LineKey{ProductID: l.ProductID, VariantID: l.VariantID}
}

// EffectiveUnitPrice returns the price the line is charged at, preferring
// the discounted snapshot when present. A line with neither price is a data
// error and cannot be totalled.
func (l *Line) EffectiveUnitPrice() (valueobject.Money, error) {
	if l.DiscountedUnitPrice != nil {
		return *l.DiscountedUnitPrice, nil
	}
	if l.UnitPrice != nil {
		return *l.UnitPrice, nil
	}
	return valueobject.Money{}, shared.ErrPricingInputMissing
}

// LineTotal returns effective unit price multiplied by quantity
func (l *Line) LineTotal() (valueobject.Money, error) {
	unit, err := l.EffectiveUnitPrice()
	if err != nil {
		return valueobject.Money{}, err
	}
	return unit.MultiplyByInt(int64(l.Quantity)), nil
}

// TotalWeight returns unit weight multiplied by quantity
func (l *Line) TotalWeight() valueobject.Weight {
	return l.UnitWeight.MultiplyByInt(int64(l.Quantity))
}

// TargetQuantity computes the quantity a mode/magnitude pair requests,
// before clamping. Magnitude is the step size for increment/decrement and
// the absolute target for set; set is never additive.
func (l *Line) TargetQuantity(mode QuantityMode, magnitude int) (int, error) {
	if magnitude < 1 {
		return 0, shared.NewDomainError("INVALID_MAGNITUDE", "Magnitude must be at least 1")
	}
	switch mode {
	case QuantityIncrement:
		return l.Quantity + magnitude, nil
	case QuantityDecrement:
		return l.Quantity - magnitude, nil
	case QuantitySet:
		return magnitude, nil
	}
	return 0, shared.NewDomainError("INVALID_MODE", "Unknown quantity mode")
}

// ClampToStock clamps a target quantity to the advisory stock ceiling.
// Returns the clamped quantity and whether the request was adjusted.
// Targets below 1 are rejected; removing a line is an explicit operation.
func (l *Line) ClampToStock(target int) (int, bool, error) {
	if target < 1 {
		return 0, false, shared.NewDomainError("QUANTITY_BELOW_MINIMUM", "Quantity cannot go below 1; remove the line instead")
	}
	if l.AvailableStock < 1 {
		return 0, false, shared.ErrStaleStock
	}
	if target > l.AvailableStock {
		return l.AvailableStock, true, nil
	}
	return target, false, nil
}

// RefreshSnapshot replaces the price/stock snapshot on the line
func (l *Line) RefreshSnapshot(snap VariantSnapshot) {
	l.UnitPrice = snap.Price
	l.DiscountedUnitPrice = snap.DiscountedPrice
	l.AvailableStock = snap.Stock
	l.UnitWeight = snap.UnitWeight
	l.UpdatedAt = time.Now()
}

// Cart is the ordered collection of lines held for one user session
type Cart struct {
	shared.BaseAggregateRoot
	UserID uuid.UUID
	Origin Origin
	Lines  []Line
}

// NewCart creates an empty cart for a user
func NewCart(userID uuid.UUID, origin Origin) *Cart {
	return &Cart{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		UserID:            userID,
		Origin:            origin,
		Lines:             make([]Line, 0),
	}
}

// FindLine returns the line with the given key, or nil
func (c *Cart) FindLine(key LineKey) *Line {
	for i := range c.Lines {
		if c.Lines[i].Key() == key {
			return &c.Lines[i]
		}
	}
	return nil
}

// UpsertLine adds a line, or updates the existing line in place when the
// cart already holds the same (product, variant) key. The uniqueness
// invariant is enforced here: appending a duplicate key is impossible.
func (c *Cart) UpsertLine(line Line) {
	if existing := c.FindLine(line.Key()); existing != nil {
		existing.Quantity = line.Quantity
		existing.UnitPrice = line.UnitPrice
		existing.DiscountedUnitPrice = line.DiscountedUnitPrice
		existing.AvailableStock = line.AvailableStock
		existing.UnitWeight = line.UnitWeight
		existing.UpdatedAt = time.Now()
		c.UpdatedAt = time.Now()
		return
	}
	line.CartID = c.ID
	c.Lines = append(c.Lines, line)
	c.UpdatedAt = time.Now()
}

// SetLineQuantity assigns an absolute quantity to an existing line
func (c *Cart) SetLineQuantity(key LineKey, quantity int) error {
	if quantity < 1 {
		return shared.NewDomainError("INVALID_QUANTITY", "Quantity must be at least 1")
	}
	line := c.FindLine(key)
	if line == nil {
		return shared.ErrNotFound
	}
	line.Quantity = quantity
	line.UpdatedAt = time.Now()
	c.UpdatedAt = time.Now()
	return nil
}

// RemoveLine deletes the line with the given key
func (c *Cart) RemoveLine(key LineKey) error {
	for i := range c.Lines {
		if c.Lines[i].Key() == key {
			c.Lines = append(c.Lines[:i], c.Lines[i+1:]...)
			c.UpdatedAt = time.Now()
			return nil
		}
	}
	return shared.ErrNotFound
}

// Clear empties the cart. Called after an order is created so the same cart
// cannot be submitted twice.
func (c *Cart) Clear(reason string) {
	if len(c.Lines) == 0 {
		return
	}
	c.Lines = c.Lines[:0]
	c.UpdatedAt = time.Now()
	c.AddDomainEvent(NewCartClearedEvent(c, reason))
}

// IsEmpty returns true if the cart has no lines
func (c *Cart) IsEmpty() bool {
	return len(c.Lines) == 0
}

// LineCount returns the number of distinct lines
func (c *Cart) LineCount() int {
	return len(c.Lines)
}

// TotalWeight sums line weights, normalized to kilograms
func (c *Cart) TotalWeight() valueobject.Weight {
	total := valueobject.ZeroWeight()
	for i := range c.Lines {
		total = total.Add(c.Lines[i].TotalWeight())
	}
	return total
}
