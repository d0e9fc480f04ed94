package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"course-commerce/internal/events"
	"course-commerce/internal/gateway"
	"course-commerce/internal/idempotency"
	"course-commerce/internal/model"
	"course-commerce/internal/notify"
	"course-commerce/internal/repository"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// NotificationRequest is the gateway's asynchronous status push.
type NotificationRequest struct {
	TransactionStatus string `json:"transaction_status" validate:"required"`
	PaymentType       string `json:"payment_type" validate:"required"`
	OrderID           string `json:"order_id" validate:"required"`
	FraudStatus       string `json:"fraud_status"`
	StatusCode        string `json:"status_code"`
	GrossAmount       string `json:"gross_amount"`
	SignatureKey      string `json:"signature_key"`
}

type CheckStatusRequest struct {
	OrderID string `json:"order_id" validate:"required"`
}

// UpdateStatusRequest is an operator asserting a gateway status by hand.
type UpdateStatusRequest struct {
	OrderID           string `json:"order_id" validate:"required"`
	TransactionStatus string `json:"transaction_status" validate:"required,oneof=capture settlement pending deny expire cancel"`
	PaymentType       string `json:"payment_type"`
}

type ReconcileResult struct {
	OrderID   string                  `json:"order_id"`
	Status    model.TransactionStatus `json:"order_status"`
	Previous  model.TransactionStatus `json:"previous_status"`
	Changed   bool                    `json:"changed"`
	Handled   bool                    `json:"handled"`
	Duplicate bool                    `json:"duplicate,omitempty"`
	Details   json.RawMessage         `json:"details,omitempty"`
}

type ReconcileService interface {
	HandleNotification(ctx context.Context, req *NotificationRequest, raw []byte) (*ReconcileResult, error)
	CheckStatus(ctx context.Context, req *CheckStatusRequest) (*ReconcileResult, error)
	UpdateStatus(ctx context.Context, req *UpdateStatusRequest) (*ReconcileResult, error)
}

type ReconcileOptions struct {
	WebURL          string
	ServerKey       string
	VerifySignature bool
	DedupTTL        time.Duration
}

type reconcileService struct {
	db        *gorm.DB
	txRepo    repository.TransactionRepository
	eventRepo repository.GatewayEventRepository
	gateway   gateway.Client
	dedup     idempotency.Store
	mailer    notify.Mailer
	publisher events.Publisher
	opts      ReconcileOptions
	now       func() time.Time
}

func NewReconcileService(
	db *gorm.DB,
	txRepo repository.TransactionRepository,
	eventRepo repository.GatewayEventRepository,
	gw gateway.Client,
	dedup idempotency.Store,
	mailer notify.Mailer,
	publisher events.Publisher,
	opts ReconcileOptions,
) ReconcileService {
	if opts.DedupTTL <= 0 {
		opts.DedupTTL = 24 * time.Hour
	}
	return &reconcileService{
		db:        db,
		txRepo:    txRepo,
		eventRepo: eventRepo,
		gateway:   gw,
		dedup:     dedup,
		mailer:    mailer,
		publisher: publisher,
		opts:      opts,
		now:       time.Now,
	}
}

// report is one gateway statement about an order, whatever its source.
type report struct {
	source       model.GatewayEventSource
	orderID      string
	status       string
	paymentType  string
	fraudStatus  string
	trustCapture bool
	payload      []byte
}

func (s *reconcileService) HandleNotification(ctx context.Context, req *NotificationRequest, raw []byte) (*ReconcileResult, error) {
	if err := validate(req); err != nil {
		return nil, err
	}
	rep := report{
		source:      model.SourceWebhook,
		orderID:     req.OrderID,
		status:      req.TransactionStatus,
		paymentType: req.PaymentType,
		fraudStatus: req.FraudStatus,
		payload:     payloadOf(raw, req),
	}

	if s.opts.VerifySignature &&
		!gateway.VerifySignature(req.OrderID, req.StatusCode, req.GrossAmount, s.opts.ServerKey, req.SignatureKey) {
		log.Printf("Notification for %s rejected: bad signature", req.OrderID)
		s.record(rep, "invalid_signature")
		return nil, ErrInvalidSignature
	}

	key := idempotency.WebhookKey(req.OrderID, req.TransactionStatus)
	claimed, err := s.dedup.Claim(ctx, key, s.opts.DedupTTL)
	if err != nil {
		// Fail open: the state machine already tolerates repeats.
		log.Printf("Dedup claim %s failed: %v", key, err)
		claimed = true
	}
	if !claimed {
		log.Printf("Notification %s already processed, skipping", key)
		s.record(rep, "duplicate")
		return &ReconcileResult{OrderID: req.OrderID, Handled: true, Duplicate: true}, nil
	}

	res, err := s.apply(ctx, rep)
	// Keep the claim only once the order settled; a challenged capture may
	// be followed by an accepted one under the same status.
	if err != nil || (!res.Changed && !res.Status.Terminal()) {
		if relErr := s.dedup.Release(ctx, key); relErr != nil {
			log.Printf("Dedup release %s failed: %v", key, relErr)
		}
	}
	if err != nil {
		return nil, err
	}
	if !res.Handled {
		return res, fmt.Errorf("%w: %s", ErrUnhandledStatus, req.TransactionStatus)
	}
	return res, nil
}

func (s *reconcileService) CheckStatus(ctx context.Context, req *CheckStatusRequest) (*ReconcileResult, error) {
	if err := validate(req); err != nil {
		return nil, err
	}

	st, err := s.gateway.GetStatus(ctx, req.OrderID)
	if errors.Is(err, gateway.ErrUnknownOrder) {
		// No payment method chosen yet; report the ledger as it stands.
		rows, ferr := s.txRepo.FindByOrderID(req.OrderID)
		if ferr != nil {
			return nil, ferr
		}
		if len(rows) == 0 {
			return nil, fmt.Errorf("%w: %s", ErrOrderNotFound, req.OrderID)
		}
		current := model.OrderStatus(rows)
		return &ReconcileResult{OrderID: req.OrderID, Status: current, Previous: current}, nil
	}
	if err != nil {
		log.Printf("Status query for %s failed: %v", req.OrderID, err)
		return nil, err
	}

	res, err := s.apply(ctx, report{
		source:      model.SourcePoll,
		orderID:     req.OrderID,
		status:      st.TransactionStatus,
		paymentType: st.PaymentType,
		fraudStatus: st.FraudStatus,
		payload:     st.Raw,
	})
	if err != nil {
		return nil, err
	}
	res.Details = st.Raw
	return res, nil
}

func (s *reconcileService) UpdateStatus(ctx context.Context, req *UpdateStatusRequest) (*ReconcileResult, error) {
	if err := validate(req); err != nil {
		return nil, err
	}
	return s.apply(ctx, report{
		source:       model.SourceManual,
		orderID:      req.OrderID,
		status:       req.TransactionStatus,
		paymentType:  req.PaymentType,
		trustCapture: true,
		payload:      payloadOf(nil, req),
	})
}

// apply runs one report through the state machine under a row lock on the
// order. Mail and events go out only after commit.
func (s *reconcileService) apply(ctx context.Context, rep report) (*ReconcileResult, error) {
	res := &ReconcileResult{OrderID: rep.orderID}
	var rows []model.Transaction

	err := s.db.Transaction(func(tx *gorm.DB) error {
		var err error
		rows, err = s.txRepo.LockByOrderID(tx, rep.orderID)
		if err != nil {
			return err
		}
		if len(rows) == 0 {
			return fmt.Errorf("%w: %s", ErrOrderNotFound, rep.orderID)
		}

		current := model.OrderStatus(rows)
		res.Previous = current
		res.Status = current

		m := MapGatewayStatus(ParseGatewayStatus(rep.status), rep.paymentType, rep.fraudStatus, rep.trustCapture)
		res.Handled = m.Handled
		if !m.Apply {
			return nil
		}

		next, changed := NextStatus(current, m.Target)
		paymentType := rep.paymentType
		if !changed {
			if current != m.Target {
				log.Printf("Order %s is %s, ignoring %s", rep.orderID, current, rep.status)
			}
			if model.Uniform(rows) {
				return nil
			}
			// Rows that drifted apart are pulled back to the order status.
			log.Printf("Order %s has mixed rows, realigning to %s", rep.orderID, current)
			paymentType = ""
		}

		if _, err := s.txRepo.UpdateStatusByOrderID(tx, rep.orderID, next, paymentType); err != nil {
			return err
		}
		res.Status = next
		res.Changed = true
		return nil
	})
	if err != nil {
		s.record(rep, "error")
		if !errors.Is(err, ErrOrderNotFound) {
			log.Printf("Reconcile %s (%s) failed: %v", rep.orderID, rep.source, err)
		}
		return nil, err
	}

	s.record(rep, outcomeOf(res))
	if !res.Handled {
		log.Printf("Unhandled transaction status %q for %s", rep.status, rep.orderID)
	}
	if res.Changed && res.Previous != res.Status {
		log.Printf("Order %s moved %s -> %s via %s", rep.orderID, res.Previous, res.Status, rep.source)
		s.afterChange(ctx, rep, res)
	}
	return res, nil
}

func (s *reconcileService) afterChange(ctx context.Context, rep report, res *ReconcileResult) {
	rows, err := s.txRepo.FindByOrderID(rep.orderID)
	if err != nil || len(rows) == 0 {
		log.Printf("Reload %s after status change failed: %v", rep.orderID, err)
		return
	}

	if res.Status == model.StatusPaid {
		msg := purchaseConfirmation(rows, s.opts.WebURL, paymentMethodLabel(rep.paymentType))
		if err := s.mailer.SendPurchaseConfirmation(ctx, msg); err != nil {
			log.Printf("Purchase confirmation for %s failed: %v", rep.orderID, err)
		}
	}
	publish(ctx, s.publisher, eventTypeFor(res.Status), rows, s.now())
}

func (s *reconcileService) record(rep report, outcome string) {
	if s.eventRepo == nil {
		return
	}
	ev := &model.GatewayEvent{
		OrderID:           rep.orderID,
		Source:            rep.source,
		TransactionStatus: rep.status,
		PaymentType:       rep.paymentType,
		FraudStatus:       rep.fraudStatus,
		Payload:           datatypes.JSON(rep.payload),
		Outcome:           outcome,
	}
	if err := s.eventRepo.Create(ev); err != nil {
		log.Printf("Gateway event log for %s failed: %v", rep.orderID, err)
	}
}

func outcomeOf(res *ReconcileResult) string {
	switch {
	case !res.Handled:
		return "unhandled"
	case res.Changed:
		return "applied:" + string(res.Status)
	default:
		return "unchanged"
	}
}

// payloadOf keeps the raw body when it is JSON, otherwise encodes v.
func payloadOf(raw []byte, v interface{}) []byte {
	if len(raw) > 0 && json.Valid(raw) {
		return raw
	}
	b, err := json.Marshal(v)
	if err != nil {
		return []byte("{}")
	}
	return b
}
