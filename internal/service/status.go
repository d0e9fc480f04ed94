package service

import "course-commerce/internal/model"

// GatewayStatus is the transaction_status vocabulary of the payment gateway.
type GatewayStatus int

const (
	GatewayUnknown GatewayStatus = iota
	GatewayCapture
	GatewaySettlement
	GatewayPending
	GatewayDeny
	GatewayExpire
	GatewayCancel
)

func ParseGatewayStatus(s string) GatewayStatus {
	switch s {
	case "capture":
		return GatewayCapture
	case "settlement":
		return GatewaySettlement
	case "pending":
		return GatewayPending
	case "deny":
		return GatewayDeny
	case "expire":
		return GatewayExpire
	case "cancel":
		return GatewayCancel
	default:
		return GatewayUnknown
	}
}

func (g GatewayStatus) String() string {
	switch g {
	case GatewayCapture:
		return "capture"
	case GatewaySettlement:
		return "settlement"
	case GatewayPending:
		return "pending"
	case GatewayDeny:
		return "deny"
	case GatewayExpire:
		return "expire"
	case GatewayCancel:
		return "cancel"
	case GatewayUnknown:
		return "unknown"
	}
	return "unknown"
}

// Mapping is the ledger outcome of one gateway report.
type Mapping struct {
	Target  model.TransactionStatus
	Apply   bool // false: the report leaves the ledger as is
	Handled bool // false: status outside the known vocabulary
}

// MapGatewayStatus translates a gateway report into a ledger status.
// A capture only counts as paid for an accepted credit card charge, unless
// an operator asserts it (trustCapture).
func MapGatewayStatus(status GatewayStatus, paymentType, fraudStatus string, trustCapture bool) Mapping {
	switch status {
	case GatewayCapture:
		if trustCapture || (paymentType == "credit_card" && fraudStatus == "accept") {
			return Mapping{Target: model.StatusPaid, Apply: true, Handled: true}
		}
		return Mapping{Handled: true}
	case GatewaySettlement:
		return Mapping{Target: model.StatusPaid, Apply: true, Handled: true}
	case GatewayPending:
		return Mapping{Target: model.StatusPending, Apply: true, Handled: true}
	case GatewayDeny, GatewayExpire, GatewayCancel:
		return Mapping{Target: model.StatusFailed, Apply: true, Handled: true}
	case GatewayUnknown:
		return Mapping{}
	}
	return Mapping{}
}

// NextStatus applies a target to the current order status. paid and failed
// are sticky: once reached, nothing moves the order again.
func NextStatus(current, target model.TransactionStatus) (model.TransactionStatus, bool) {
	if current == target {
		return current, false
	}
	if current.Terminal() {
		return current, false
	}
	return target, true
}
