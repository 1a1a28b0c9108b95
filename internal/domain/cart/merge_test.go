package cart

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mergeTestCarts(t *testing.T) (*Cart, *Cart, LineKey) {
	t.Helper()
	userID := uuid.New()
	local := NewCart(userID, OriginLocal)
	server := NewCart(userID, OriginServer)
	shared := LineKey{ProductID: uuid.New(), VariantID: uuid.New()}
	return local, server, shared
}

func lineWithKey(t *testing.T, c *Cart, key LineKey, qty int) Line {
	t.Helper()
	line, err := NewLine(c.ID, key.ProductID, key.VariantID, qty, testSnapshot(t, 15990, 50, 500))
	require.NoError(t, err)
	return *line
}

func TestMerge_QuantityIsMaxNotSum(t *testing.T) {
	local, server, key := mergeTestCarts(t)
	local.UpsertLine(lineWithKey(t, local, key, 3))
	server.UpsertLine(lineWithKey(t, server, key, 5))

	merged := Merge(local, server)
	require.Equal(t, 1, merged.LineCount())
	assert.Equal(t, 5, merged.FindLine(key).Quantity, "overlap takes max(local, server), never the sum")

	// And the other way around
	local2, server2, key2 := mergeTestCarts(t)
	local2.UpsertLine(lineWithKey(t, local2, key2, 7))
	server2.UpsertLine(lineWithKey(t, server2, key2, 2))
	assert.Equal(t, 7, Merge(local2, server2).FindLine(key2).Quantity)
}

func TestMerge_UnionOfDisjointLines(t *testing.T) {
	local, server, _ := mergeTestCarts(t)
	localOnly := LineKey{ProductID: uuid.New(), VariantID: uuid.New()}
	serverOnly := LineKey{ProductID: uuid.New(), VariantID: uuid.New()}
	local.UpsertLine(lineWithKey(t, local, localOnly, 2))
	server.UpsertLine(lineWithKey(t, server, serverOnly, 4))

	merged := Merge(local, server)
	assert.Equal(t, 2, merged.LineCount())
	assert.NotNil(t, merged.FindLine(localOnly))
	assert.NotNil(t, merged.FindLine(serverOnly))

	// Server lines keep their position; local-only lines follow
	assert.Equal(t, serverOnly, merged.Lines[0].Key())
	assert.Equal(t, localOnly, merged.Lines[1].Key())
}

func TestMerge_Idempotent(t *testing.T) {
	local, server, key := mergeTestCarts(t)
	local.UpsertLine(lineWithKey(t, local, key, 3))
	extra := LineKey{ProductID: uuid.New(), VariantID: uuid.New()}
	local.UpsertLine(lineWithKey(t, local, extra, 1))
	server.UpsertLine(lineWithKey(t, server, key, 5))

	once := Merge(local, server)
	twice := Merge(local, once)

	require.Equal(t, once.LineCount(), twice.LineCount())
	for _, l := range once.Lines {
		counterpart := twice.FindLine(l.Key())
		require.NotNil(t, counterpart)
		assert.Equal(t, l.Quantity, counterpart.Quantity)
	}
}

func TestMerge_NilServerCartIsEmpty(t *testing.T) {
	local, _, key := mergeTestCarts(t)
	local.UpsertLine(lineWithKey(t, local, key, 2))

	merged := Merge(local, nil)
	assert.Equal(t, 1, merged.LineCount())
	assert.Equal(t, 2, merged.FindLine(key).Quantity)
	assert.Equal(t, OriginServer, merged.Origin)
	assert.Equal(t, local.UserID, merged.UserID)
}

func TestMerge_BothEmpty(t *testing.T) {
	local, server, _ := mergeTestCarts(t)
	assert.True(t, Merge(local, server).IsEmpty())
	assert.True(t, Merge(nil, nil).IsEmpty())
}

func TestMerge_KeepsSurvivingCartIdentity(t *testing.T) {
	local, server, key := mergeTestCarts(t)
	local.UpsertLine(lineWithKey(t, local, key, 3))
	server.UpsertLine(lineWithKey(t, server, key, 5))

	merged := Merge(local, server)
	assert.Equal(t, local.ID, merged.ID, "merge replaces the stored cart, it must not mint a sibling aggregate")
	assert.Equal(t, local.Version, merged.Version)
	for _, l := range merged.Lines {
		assert.Equal(t, local.ID, l.CartID)
	}

	// Without a local cart the server cart's identity survives
	assert.Equal(t, server.ID, Merge(nil, server).ID)
}

func TestMerge_LocalSnapshotWinsOnOverlap(t *testing.T) {
	local, server, key := mergeTestCarts(t)

	localLine, err := NewLine(local.ID, key.ProductID, key.VariantID, 2, testSnapshot(t, 12990, 8, 500))
	require.NoError(t, err)
	local.UpsertLine(*localLine)

	serverLine, err := NewLine(server.ID, key.ProductID, key.VariantID, 2, testSnapshot(t, 15990, 20, 500))
	require.NoError(t, err)
	server.UpsertLine(*serverLine)

	merged := Merge(local, server)
	price, err := merged.FindLine(key).EffectiveUnitPrice()
	require.NoError(t, err)
	assert.True(t, price.Equals(*localLine.UnitPrice), "local snapshot is the fresher one")
	assert.Equal(t, 8, merged.FindLine(key).AvailableStock)
}
