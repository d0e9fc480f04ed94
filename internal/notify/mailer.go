package notify

import (
	"context"
	"log"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Mailer sends the two purchase emails. Implementations must be safe for
// concurrent use.
type Mailer interface {
	SendPurchaseConfirmation(ctx context.Context, msg PurchaseConfirmation) error
	SendTransactionReminder(ctx context.Context, msg TransactionReminder) error
}

type PurchaseLine struct {
	CourseTitle string
	Total       decimal.Decimal
	URL         string
}

type PurchaseConfirmation struct {
	To            string
	Name          string
	OrderID       string
	Lines         []PurchaseLine
	Total         decimal.Decimal
	PaymentMethod string
	URL           string
}

type TransactionReminder struct {
	To          string
	Name        string
	OrderID     string
	CourseTitle string
	Total       decimal.Decimal
	URL         string
}

const (
	SubjectPurchaseConfirmation = "Pembelian Berhasil! Saatnya Akses Kontenmu 🎉"
	SubjectTransactionReminder  = "Transaksi Kamu Belum Selesai"
)

var idPrinter = message.NewPrinter(language.Indonesian)

// Rupiah formats an amount the way the storefront prints prices: "Rp 150.000".
func Rupiah(amount decimal.Decimal) string {
	return idPrinter.Sprintf("Rp %d", amount.Round(0).IntPart())
}

// LogMailer only logs. Used when SMTP is not configured.
type LogMailer struct{}

func (LogMailer) SendPurchaseConfirmation(_ context.Context, msg PurchaseConfirmation) error {
	log.Printf("[mail] purchase confirmation to %s order=%s total=%s lines=%d", msg.To, msg.OrderID, Rupiah(msg.Total), len(msg.Lines))
	return nil
}

func (LogMailer) SendTransactionReminder(_ context.Context, msg TransactionReminder) error {
	log.Printf("[mail] transaction reminder to %s order=%s total=%s", msg.To, msg.OrderID, Rupiah(msg.Total))
	return nil
}
