package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/clynova/cantabria-cart/internal/domain/cart"
	"github.com/clynova/cantabria-cart/internal/domain/shared"
	"github.com/clynova/cantabria-cart/internal/domain/shared/valueobject"
)

// CartModel is the persistence model for the Cart aggregate
type CartModel struct {
	ID        uuid.UUID       `gorm:"type:uuid;primary_key"`
	UserID    uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex"`
	Origin    string          `gorm:"type:varchar(10);not null;default:'local'"`
	Version   int             `gorm:"not null;default:1"`
	Lines     []CartLineModel `gorm:"foreignKey:CartID;constraint:OnDelete:CASCADE"`
	CreatedAt time.Time       `gorm:"not null"`
	UpdatedAt time.Time       `gorm:"not null"`
}

// TableName returns the table name for GORM
func (CartModel) TableName() string {
	return "carts"
}

// CartLineModel is the persistence model for one cart line. The unique
// index over (cart_id, product_id, variant_id) backs the line uniqueness
// invariant at the storage level.
type CartLineModel struct {
	ID                  uuid.UUID        `gorm:"type:uuid;primary_key"`
	CartID              uuid.UUID        `gorm:"type:uuid;not null;uniqueIndex:idx_cart_line_variant,priority:1"`
	ProductID           uuid.UUID        `gorm:"type:uuid;not null;uniqueIndex:idx_cart_line_variant,priority:2"`
	VariantID           uuid.UUID        `gorm:"type:uuid;not null;uniqueIndex:idx_cart_line_variant,priority:3"`
	Quantity            int              `gorm:"not null"`
	UnitPrice           *decimal.Decimal `gorm:"type:decimal(18,4)"`
	DiscountedUnitPrice *decimal.Decimal `gorm:"type:decimal(18,4)"`
	Currency            string           `gorm:"type:varchar(3);not null;default:'CLP'"`
	AvailableStock      int              `gorm:"not null;default:0"`
	UnitWeight          decimal.Decimal  `gorm:"type:decimal(18,4);not null;default:0"`
	WeightUnit          string           `gorm:"type:varchar(2);not null;default:'g'"`
	CreatedAt           time.Time        `gorm:"not null"`
	UpdatedAt           time.Time        `gorm:"not null"`
}

// TableName returns the table name for GORM
func (CartLineModel) TableName() string {
	return "cart_lines"
}

// ToDomain converts the persistence model to a domain Cart aggregate
func (m *CartModel) ToDomain() (*cart.Cart, error) {
	c := &cart.Cart{
		BaseAggregateRoot: shared.BaseAggregateRoot{
			BaseEntity: shared.BaseEntity{
				ID:        m.ID,
				CreatedAt: m.CreatedAt,
				UpdatedAt: m.UpdatedAt,
			},
			Version: m.Version,
		},
		UserID: m.UserID,
		Origin: cart.Origin(m.Origin),
		Lines:  make([]cart.Line, 0, len(m.Lines)),
	}
	for i := range m.Lines {
		line, err := m.Lines[i].ToDomain()
		if err != nil {
			return nil, err
		}
		c.Lines = append(c.Lines, *line)
	}
	return c, nil
}

// ToDomain converts the persistence model to a domain cart line
func (m *CartLineModel) ToDomain() (*cart.Line, error) {
	currency := valueobject.Currency(m.Currency)
	var unitPrice, discounted *valueobject.Money
	if m.UnitPrice != nil {
		money, err := valueobject.NewMoney(*m.UnitPrice, currency)
		if err != nil {
			return nil, err
		}
		unitPrice = &money
	}
	if m.DiscountedUnitPrice != nil {
		money, err := valueobject.NewMoney(*m.DiscountedUnitPrice, currency)
		if err != nil {
			return nil, err
		}
		discounted = &money
	}
	weight, err := valueobject.NewWeight(m.UnitWeight, valueobject.WeightUnit(m.WeightUnit))
	if err != nil {
		return nil, err
	}
	return &cart.Line{
		ID:                  m.ID,
		CartID:              m.CartID,
		ProductID:           m.ProductID,
		VariantID:           m.VariantID,
		Quantity:            m.Quantity,
		UnitPrice:           unitPrice,
		DiscountedUnitPrice: discounted,
		AvailableStock:      m.AvailableStock,
		UnitWeight:          weight,
		CreatedAt:           m.CreatedAt,
		UpdatedAt:           m.UpdatedAt,
	}, nil
}

// FromDomain populates the persistence model from a domain Cart aggregate
func (m *CartModel) FromDomain(c *cart.Cart) {
	m.ID = c.ID
	m.CreatedAt = c.CreatedAt
	m.UpdatedAt = c.UpdatedAt
	m.Version = c.Version
	m.UserID = c.UserID
	m.Origin = string(c.Origin)
	m.Lines = make([]CartLineModel, 0, len(c.Lines))
	for i := range c.Lines {
		var lm CartLineModel
		lm.FromDomain(&c.Lines[i])
		lm.CartID = m.ID
		m.Lines = append(m.Lines, lm)
	}
}

// FromDomain populates the persistence model from a domain cart line
func (m *CartLineModel) FromDomain(l *cart.Line) {
	m.ID = l.ID
	m.CartID = l.CartID
	m.ProductID = l.ProductID
	m.VariantID = l.VariantID
	m.Quantity = l.Quantity
	m.Currency = string(valueobject.DefaultCurrency)
	if l.UnitPrice != nil {
		amount := l.UnitPrice.Amount()
		m.UnitPrice = &amount
		m.Currency = string(l.UnitPrice.Currency())
	}
	if l.DiscountedUnitPrice != nil {
		amount := l.DiscountedUnitPrice.Amount()
		m.DiscountedUnitPrice = &amount
	}
	m.AvailableStock = l.AvailableStock
	m.UnitWeight = l.UnitWeight.Value()
	m.WeightUnit = string(l.UnitWeight.Unit())
	if m.WeightUnit == "" {
		m.WeightUnit = string(valueobject.WeightGrams)
	}
	m.CreatedAt = l.CreatedAt
	m.UpdatedAt = l.UpdatedAt
}

// CartModelFromDomain creates a new persistence model from a domain Cart
func CartModelFromDomain(c *cart.Cart) *CartModel {
	m := &CartModel{}
	m.FromDomain(c)
	return m
}
