package model

import (
	"time"

	"gorm.io/datatypes"
)

type GatewayEventSource string

const (
	SourceWebhook GatewayEventSource = "webhook"
	SourcePoll    GatewayEventSource = "poll"
	SourceManual  GatewayEventSource = "manual"
)

// GatewayEvent is an append-only log of what the payment gateway (or an
// operator) reported for an order and what the ledger did with it.
type GatewayEvent struct {
	ID                uint               `gorm:"primaryKey" json:"id"`
	OrderID           string             `gorm:"type:varchar(64);index" json:"order_id"`
	Source            GatewayEventSource `gorm:"type:varchar(16);not null" json:"source"`
	TransactionStatus string             `gorm:"type:varchar(32)" json:"transaction_status"`
	PaymentType       string             `gorm:"type:varchar(50)" json:"payment_type"`
	FraudStatus       string             `gorm:"type:varchar(32)" json:"fraud_status"`
	Payload           datatypes.JSON     `json:"payload"`
	Outcome           string             `gorm:"type:varchar(64)" json:"outcome"`
	CreatedAt         time.Time          `json:"created_at"`
}
