package service

import (
	"context"
	"log"
	"time"

	"course-commerce/internal/events"
	"course-commerce/internal/model"
	"course-commerce/internal/notify"
)

// purchaseConfirmation lists every course of the order with its content link.
// rows must carry their Course.
func purchaseConfirmation(rows []model.Transaction, webURL, paymentMethod string) notify.PurchaseConfirmation {
	msg := notify.PurchaseConfirmation{
		PaymentMethod: paymentMethod,
		Total:         model.OrderTotal(rows),
	}
	if len(rows) == 0 {
		return msg
	}
	msg.To = rows[0].Email
	msg.Name = rows[0].Fullname
	msg.OrderID = rows[0].OrderID

	for _, r := range rows {
		line := notify.PurchaseLine{CourseTitle: "Unknown Course", Total: r.Total}
		if r.Course != nil {
			line.CourseTitle = r.Course.Title
			line.URL = r.Course.ContentURL(webURL)
		}
		msg.Lines = append(msg.Lines, line)
	}
	msg.URL = msg.Lines[0].URL
	return msg
}

func paymentMethodLabel(paymentType string) string {
	switch paymentType {
	case "":
		return "Midtrans"
	case "free":
		return "Free"
	case "manual":
		return "Manual"
	}
	return "Midtrans (" + paymentType + ")"
}

func eventTypeFor(status model.TransactionStatus) events.Type {
	switch status {
	case model.StatusPaid:
		return events.OrderPaid
	case model.StatusFailed:
		return events.OrderFailed
	}
	return events.OrderPending
}

// publish emits one event for an order. Errors are logged; the ledger is the
// source of truth.
func publish(ctx context.Context, pub events.Publisher, typ events.Type, rows []model.Transaction, at time.Time) {
	if pub == nil || len(rows) == 0 {
		return
	}
	ids := make([]uint, len(rows))
	for i, r := range rows {
		ids[i] = r.CourseID
	}
	event := events.Event{
		Type:       typ,
		OrderID:    rows[0].OrderID,
		Status:     string(model.OrderStatus(rows)),
		Email:      rows[0].Email,
		Total:      model.OrderTotal(rows),
		CourseIDs:  ids,
		OccurredAt: at,
	}
	if err := pub.Publish(ctx, event); err != nil {
		log.Printf("Publish %s for %s failed: %v", typ, event.OrderID, err)
	}
}
