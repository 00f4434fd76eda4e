package settlement

import (
	"fmt"

	"lounge-pos-billing/internal/domain"
)

type RouteKind string

const (
	// RouteSale records the payment against the linked sale
	RouteSale RouteKind = "sale"
	// RouteSession records the payment directly against the session
	RouteSession RouteKind = "session"
)

// Route names the backend aggregate that owns a payment record. A sale
// route built from a session keeps the session id so the session can be
// closed with the payment.
type Route struct {
	Kind      RouteKind `json:"kind"`
	SaleID    string    `json:"saleId,omitempty"`
	SessionID string    `json:"sessionId,omitempty"`
}

// RouteFor picks the route from LinkedSaleID alone. Status and whatever
// direct-payment capability the session exposes play no part: only the
// linked sale decides which aggregate owns the payment.
func RouteFor(s domain.Session) Route {
	if s.HasLinkedSale() {
		return Route{Kind: RouteSale, SaleID: s.LinkedSaleID, SessionID: s.ID}
	}
	return Route{Kind: RouteSession, SessionID: s.ID}
}

// SaleRoute is the route of a point-of-sale invoice
func SaleRoute(saleID string) Route {
	return Route{Kind: RouteSale, SaleID: saleID}
}

func (r Route) String() string {
	if r.Kind == RouteSale {
		return fmt.Sprintf("sale:%s", r.SaleID)
	}
	return fmt.Sprintf("session:%s", r.SessionID)
}
