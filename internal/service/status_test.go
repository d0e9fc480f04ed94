package service

import (
	"testing"

	"course-commerce/internal/model"
)

func TestMapGatewayStatus(t *testing.T) {
	cases := []struct {
		name         string
		status       string
		paymentType  string
		fraud        string
		trustCapture bool
		want         Mapping
	}{
		{"settlement", "settlement", "bank_transfer", "", false, Mapping{model.StatusPaid, true, true}},
		{"accepted card capture", "capture", "credit_card", "accept", false, Mapping{model.StatusPaid, true, true}},
		{"challenged capture", "capture", "credit_card", "challenge", false, Mapping{Handled: true}},
		{"non-card capture", "capture", "gopay", "accept", false, Mapping{Handled: true}},
		{"operator capture", "capture", "", "", true, Mapping{model.StatusPaid, true, true}},
		{"pending", "pending", "qris", "", false, Mapping{model.StatusPending, true, true}},
		{"deny", "deny", "credit_card", "deny", false, Mapping{model.StatusFailed, true, true}},
		{"expire", "expire", "bank_transfer", "", false, Mapping{model.StatusFailed, true, true}},
		{"cancel", "cancel", "bank_transfer", "", false, Mapping{model.StatusFailed, true, true}},
		{"refund is unknown", "refund", "bank_transfer", "", false, Mapping{}},
		{"empty", "", "", "", false, Mapping{}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := MapGatewayStatus(ParseGatewayStatus(tc.status), tc.paymentType, tc.fraud, tc.trustCapture)
			if got != tc.want {
				t.Errorf("got %+v, want %+v", got, tc.want)
			}
		})
	}
}

func TestNextStatusTerminalsAreSticky(t *testing.T) {
	cases := []struct {
		current, target model.TransactionStatus
		want            model.TransactionStatus
		changed         bool
	}{
		{model.StatusPending, model.StatusPaid, model.StatusPaid, true},
		{model.StatusPending, model.StatusFailed, model.StatusFailed, true},
		{model.StatusPending, model.StatusPending, model.StatusPending, false},
		{model.StatusPaid, model.StatusFailed, model.StatusPaid, false},
		{model.StatusPaid, model.StatusPending, model.StatusPaid, false},
		{model.StatusFailed, model.StatusPaid, model.StatusFailed, false},
		{model.StatusPaid, model.StatusPaid, model.StatusPaid, false},
	}
	for _, tc := range cases {
		got, changed := NextStatus(tc.current, tc.target)
		if got != tc.want || changed != tc.changed {
			t.Errorf("NextStatus(%s, %s) = %s, %v; want %s, %v", tc.current, tc.target, got, changed, tc.want, tc.changed)
		}
	}
}

func TestParseGatewayStatusRoundTrip(t *testing.T) {
	for _, s := range []string{"capture", "settlement", "pending", "deny", "expire", "cancel"} {
		if got := ParseGatewayStatus(s).String(); got != s {
			t.Errorf("round trip %s = %s", s, got)
		}
	}
	if ParseGatewayStatus("authorize") != GatewayUnknown {
		t.Error("authorize should be unknown")
	}
}
