// Package mirror contains the order-mirroring decision and sizing engine:
// classifying inbound order events, computing counter-order quantities under
// exchange constraints, and deriving the counter-order parameter set.
package mirror

import (
	"strings"

	"counterTradeBot/internal/domain"
)

// mirrorableStatuses is the fixed set of order states that warrant a
// counter-action. Cancellations, rejections and expiries never do.
var mirrorableStatuses = map[domain.OrderStatus]struct{}{
	domain.StatusCreated:         {},
	domain.StatusNew:             {},
	domain.StatusPartiallyFilled: {},
	domain.StatusFilled:          {},
}

// ShouldMirror decides whether an incoming order-update event triggers a
// counter-order. Pure function of the event's fields.
//
// The link-id check is the anti-feedback-loop invariant: every counter-order
// this bot places carries the reserved prefix, so the update events those
// orders generate are filtered out before re-entering the pipeline.
func ShouldMirror(ev domain.OrderEvent) bool {
	if _, ok := mirrorableStatuses[ev.Status]; !ok {
		return false
	}
	if ev.Origin != domain.OriginUser {
		return false
	}
	if strings.HasPrefix(ev.LinkID, domain.CounterLinkPrefix) {
		return false
	}
	return true
}
