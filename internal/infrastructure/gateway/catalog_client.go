package gateway

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/clynova/cantabria-cart/internal/domain/cart"
	"github.com/clynova/cantabria-cart/internal/domain/shared/valueobject"
)

// CatalogClient pulls price/stock snapshots from the product catalog.
// It implements cart.SnapshotProvider.
type CatalogClient struct {
	*client
}

// NewCatalogClient creates a catalog client
func NewCatalogClient(baseURL string, timeout time.Duration) (*CatalogClient, error) {
	c, err := newClient(baseURL, timeout)
	if err != nil {
		return nil, err
	}
	return &CatalogClient{client: c}, nil
}

type weightPayload struct {
	Value string `json:"value"`
	Unit  string `json:"unit"`
}

type snapshotResponse struct {
	Price           *string        `json:"price"`
	DiscountedPrice *string        `json:"discounted_price"`
	Currency        string         `json:"currency"`
	Stock           int            `json:"stock"`
	Weight          *weightPayload `json:"weight"`
}

// VariantSnapshot fetches the current snapshot for one variant.
// A variant the catalog no longer lists maps to shared.ErrNotFound.
func (c *CatalogClient) VariantSnapshot(ctx context.Context, productID, variantID uuid.UUID) (*cart.VariantSnapshot, error) {
	path := fmt.Sprintf("/api/products/%s/variants/%s/snapshot", productID.String(), variantID.String())

	var resp snapshotResponse
	if err := c.doJSON(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return nil, err
	}

	currency := valueobject.Currency(resp.Currency)
	if currency == "" {
		currency = valueobject.DefaultCurrency
	}

	snap := &cart.VariantSnapshot{Stock: resp.Stock}

	if resp.Price != nil {
		price, err := valueobject.NewMoneyFromString(*resp.Price, currency)
		if err != nil {
			return nil, fmt.Errorf("gateway: invalid price for variant %s: %w", variantID, err)
		}
		snap.Price = &price
	}
	if resp.DiscountedPrice != nil {
		discounted, err := valueobject.NewMoneyFromString(*resp.DiscountedPrice, currency)
		if err != nil {
			return nil, fmt.Errorf("gateway: invalid discounted price for variant %s: %w", variantID, err)
		}
		snap.DiscountedPrice = &discounted
	}
	if resp.Weight != nil {
		value, err := decimal.NewFromString(resp.Weight.Value)
		if err != nil {
			return nil, fmt.Errorf("gateway: invalid weight for variant %s: %w", variantID, err)
		}
		weight, err := valueobject.NewWeight(value, valueobject.WeightUnit(resp.Weight.Unit))
		if err != nil {
			return nil, fmt.Errorf("gateway: invalid weight for variant %s: %w", variantID, err)
		}
		snap.UnitWeight = weight
	}

	return snap, nil
}
