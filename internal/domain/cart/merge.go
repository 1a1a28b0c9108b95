package cart

import "github.com/google/uuid"

// Merge folds a locally held cart into the server-held one at login.
//
// The result is the union of lines keyed by (product, variant). Where both
// carts hold the same key the merged quantity is the maximum of the two,
// never the sum: summing compounds quantities when reconciliation runs more
// than once for the same session transition. Max-based merging makes the
// operation idempotent - merging an output with one of its inputs returns
// an equal cart.
//
// Either input may be nil or empty; a missing server cart is treated as an
// empty one, not an error. Line order is server lines first (overlaid with
// the local snapshot, which is the fresher one), then local-only lines in
// their original order.
//
// The merged cart keeps the identity of the local cart (or the server
// cart when there is no local one). The merge replaces that cart's
// contents, it does not create a sibling, so saving the result updates
// the stored row instead of inserting a second cart for the same user.
func Merge(local, server *Cart) *Cart {
	userID := uuid.Nil
	if local != nil {
		userID = local.UserID
	} else if server != nil {
		userID = server.UserID
	}

	merged := NewCart(userID, OriginServer)
	if local != nil {
		merged.BaseEntity = local.BaseEntity
		merged.Version = local.Version
	} else if server != nil {
		merged.BaseEntity = server.BaseEntity
		merged.Version = server.Version
	}

	var localLines, serverLines []Line
	if local != nil {
		localLines = local.Lines
	}
	if server != nil {
		serverLines = server.Lines
	}

	localByKey := make(map[LineKey]*Line, len(localLines))
	for i := range localLines {
		localByKey[localLines[i].Key()] = &localLines[i]
	}

	seen := make(map[LineKey]bool, len(serverLines))
	for i := range serverLines {
		line := serverLines[i]
		if counterpart, ok := localByKey[line.Key()]; ok {
			// Local snapshot wins (last refreshed client side); quantity is
			// the max of both sides.
			overlay := *counterpart
			if overlay.Quantity < line.Quantity {
				overlay.Quantity = line.Quantity
			}
			line = overlay
		}
		seen[line.Key()] = true
		merged.UpsertLine(line)
	}

	for i := range localLines {
		if !seen[localLines[i].Key()] {
			merged.UpsertLine(localLines[i])
		}
	}

	return merged
}
