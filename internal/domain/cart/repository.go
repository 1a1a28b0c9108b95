package cart

import (
	"context"

	"github.com/google/uuid"
)

// Repository defines the interface for cart persistence. Guest sessions
// carry a generated user ID, so one implementation serves guests and
// authenticated users alike; the server wires the gorm-backed one, the
// in-memory one backs tests and storage-free deployments.
type Repository interface {
	// FindByUser finds the cart for a user. Returns shared.ErrNotFound
	// when the user has no cart yet.
	FindByUser(ctx context.Context, userID uuid.UUID) (*Cart, error)

	// Save creates or updates a cart together with its lines
	Save(ctx context.Context, c *Cart) error

	// DeleteByUser removes the cart for a user
	DeleteByUser(ctx context.Context, userID uuid.UUID) error
}

// SnapshotProvider supplies catalog price/stock snapshots per variant.
// The catalog itself is a collaborator outside this service.
type SnapshotProvider interface {
	// VariantSnapshot fetches the current snapshot for one variant
	VariantSnapshot(ctx context.Context, productID, variantID uuid.UUID) (*VariantSnapshot, error)
}

// RemoteLine is the wire shape of one cart line on the remote cart API
type RemoteLine struct {
	ProductID uuid.UUID
	VariantID uuid.UUID
	Quantity  int
}

// RemoteCartGateway is the server-held cart the storefront syncs against.
// Endpoint paths are owned by the backend; only these operations and shapes
// are part of the contract.
type RemoteCartGateway interface {
	// FetchCart fetches the server-held cart lines for a user
	FetchCart(ctx context.Context, userID uuid.UUID) ([]RemoteLine, error)

	// AddLine adds one line to the server-held cart
	AddLine(ctx context.Context, userID uuid.UUID, line RemoteLine) error

	// UpdateQuantity applies a quantity mutation to one line
	UpdateQuantity(ctx context.Context, userID uuid.UUID, key LineKey, quantity int, mode QuantityMode) error

	// RemoveLine removes one line from the server-held cart
	RemoveLine(ctx context.Context, userID uuid.UUID, key LineKey) error

	// Clear empties the server-held cart
	Clear(ctx context.Context, userID uuid.UUID) error
}
