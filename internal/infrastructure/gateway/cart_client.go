package gateway

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/clynova/cantabria-cart/internal/domain/cart"
	"github.com/clynova/cantabria-cart/internal/domain/shared"
)

// CartAPIClient talks to the server-held cart API. It implements
// cart.RemoteCartGateway.
type CartAPIClient struct {
	*client
}

// NewCartAPIClient creates a cart API client
func NewCartAPIClient(baseURL string, timeout time.Duration) (*CartAPIClient, error) {
	c, err := newClient(baseURL, timeout)
	if err != nil {
		return nil, err
	}
	return &CartAPIClient{client: c}, nil
}

type remoteLinePayload struct {
	ProductID string `json:"product_id"`
	VariantID string `json:"variant_id"`
	Quantity  int    `json:"quantity"`
}

type remoteCartResponse struct {
	Items []remoteLinePayload `json:"items"`
}

type quantityPayload struct {
	ProductID string `json:"product_id"`
	VariantID string `json:"variant_id"`
	Quantity  int    `json:"quantity"`
	Mode      string `json:"mode"`
}

// FetchCart fetches the server-held cart lines for a user. A user with no
// server cart yet reads as an empty cart, not an error.
func (c *CartAPIClient) FetchCart(ctx context.Context, userID uuid.UUID) ([]cart.RemoteLine, error) {
	var resp remoteCartResponse
	err := c.doJSON(ctx, http.MethodGet, "/api/cart/"+userID.String(), nil, &resp)
	if err != nil {
		if err == shared.ErrNotFound {
			return nil, nil
		}
		return nil, err
	}

	lines := make([]cart.RemoteLine, 0, len(resp.Items))
	for _, item := range resp.Items {
		productID, err := uuid.Parse(item.ProductID)
		if err != nil {
			return nil, fmt.Errorf("gateway: invalid product id %q in server cart: %w", item.ProductID, err)
		}
		variantID, err := uuid.Parse(item.VariantID)
		if err != nil {
			return nil, fmt.Errorf("gateway: invalid variant id %q in server cart: %w", item.VariantID, err)
		}
		lines = append(lines, cart.RemoteLine{
			ProductID: productID,
			VariantID: variantID,
			Quantity:  item.Quantity,
		})
	}
	return lines, nil
}

// AddLine adds one line to the server-held cart
func (c *CartAPIClient) AddLine(ctx context.Context, userID uuid.UUID, line cart.RemoteLine) error {
	payload := remoteLinePayload{
		ProductID: line.ProductID.String(),
		VariantID: line.VariantID.String(),
		Quantity:  line.Quantity,
	}
	return c.doJSON(ctx, http.MethodPost, "/api/cart/"+userID.String()+"/items", payload, nil)
}

// UpdateQuantity applies a quantity mutation to one line
func (c *CartAPIClient) UpdateQuantity(ctx context.Context, userID uuid.UUID, key cart.LineKey, quantity int, mode cart.QuantityMode) error {
	payload := quantityPayload{
		ProductID: key.ProductID.String(),
		VariantID: key.VariantID.String(),
		Quantity:  quantity,
		Mode:      string(mode),
	}
	return c.doJSON(ctx, http.MethodPut, "/api/cart/"+userID.String()+"/items", payload, nil)
}

// RemoveLine removes one line from the server-held cart. Removing a line
// the server does not have is a no-op.
func (c *CartAPIClient) RemoveLine(ctx context.Context, userID uuid.UUID, key cart.LineKey) error {
	path := fmt.Sprintf("/api/cart/%s/items?product_id=%s&variant_id=%s",
		userID.String(), key.ProductID.String(), key.VariantID.String())
	err := c.doJSON(ctx, http.MethodDelete, path, nil, nil)
	if err == shared.ErrNotFound {
		return nil
	}
	return err
}

// Clear empties the server-held cart. Clearing a missing cart is a no-op.
func (c *CartAPIClient) Clear(ctx context.Context, userID uuid.UUID) error {
	err := c.doJSON(ctx, http.MethodDelete, "/api/cart/"+userID.String(), nil, nil)
	if err == shared.ErrNotFound {
		return nil
	}
	return err
}
