package gateway

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func newClient(srv *httptest.Server) *MidtransClient {
	return NewMidtransClient(Config{
		ServerKey: "SB-Mid-server-abc",
		SnapURL:   srv.URL + "/snap/v1/transactions",
		BaseURL:   srv.URL,
		Timeout:   time.Second,
	})
}

func TestCreateChargeSendsBasicAuthAndBody(t *testing.T) {
	var got ChargeRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/snap/v1/transactions" {
			t.Errorf("unexpected %s %s", r.Method, r.URL.Path)
		}
		wantAuth := "Basic " + base64.StdEncoding.EncodeToString([]byte("SB-Mid-server-abc:"))
		if r.Header.Get("Authorization") != wantAuth {
			t.Errorf("authorization = %q", r.Header.Get("Authorization"))
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode: %v", err)
		}
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"token":"tok-1","redirect_url":"https://pay.example/tok-1"}`))
	}))
	defer srv.Close()

	resp, err := newClient(srv).CreateCharge(context.Background(), ChargeRequest{
		TransactionDetails: TransactionDetails{OrderID: "JP-251019-aa", GrossAmount: 100000},
		CustomerDetails:    CustomerDetails{FirstName: "Budi", Email: "budi@example.com", Phone: "0812"},
	})
	if err != nil {
		t.Fatalf("create charge: %v", err)
	}
	if resp.Token != "tok-1" || resp.RedirectURL != "https://pay.example/tok-1" {
		t.Errorf("resp = %+v", resp)
	}
	if got.TransactionDetails.GrossAmount != 100000 || got.CustomerDetails.Email != "budi@example.com" {
		t.Errorf("request body = %+v", got)
	}
}

func TestCreateChargeNon2xxIsUnavailable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"error_messages":["Access denied"]}`))
	}))
	defer srv.Close()

	_, err := newClient(srv).CreateCharge(context.Background(), ChargeRequest{})
	if !errors.Is(err, ErrGatewayUnavailable) {
		t.Fatalf("err = %v, want ErrGatewayUnavailable", err)
	}
	if !strings.Contains(err.Error(), "401") {
		t.Errorf("error should carry the status code: %v", err)
	}
}

func TestCreateChargeTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(300 * time.Millisecond)
		w.Write([]byte(`{"token":"late"}`))
	}))
	defer srv.Close()

	c := NewMidtransClient(Config{SnapURL: srv.URL, Timeout: 50 * time.Millisecond})
	_, err := c.CreateCharge(context.Background(), ChargeRequest{})
	if !errors.Is(err, ErrGatewayUnavailable) {
		t.Fatalf("err = %v, want ErrGatewayUnavailable", err)
	}
}

func TestGetStatus(t *testing.T) {
	cases := []struct {
		name    string
		code    int
		body    string
		wantErr error
		want    string
	}{
		{"settlement", 200, `{"status_code":"200","order_id":"JP-1","transaction_status":"settlement","payment_type":"bank_transfer","gross_amount":"100000.00"}`, nil, "settlement"},
		{"unknown order", 200, `{"status_code":"404","status_message":"Transaction doesn't exist."}`, ErrUnknownOrder, ""},
		{"missing status", 200, `{"status_code":"200"}`, ErrMalformedResponse, ""},
		{"not json", 200, `<html>`, ErrMalformedResponse, ""},
		{"server error", 502, `bad gateway`, ErrGatewayUnavailable, ""},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if r.Method != http.MethodGet || r.URL.Path != "/v2/JP-1/status" {
					t.Errorf("unexpected %s %s", r.Method, r.URL.Path)
				}
				w.WriteHeader(tc.code)
				w.Write([]byte(tc.body))
			}))
			defer srv.Close()

			resp, err := newClient(srv).GetStatus(context.Background(), "JP-1")
			if tc.wantErr != nil {
				if !errors.Is(err, tc.wantErr) {
					t.Fatalf("err = %v, want %v", err, tc.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if resp.TransactionStatus != tc.want || len(resp.Raw) == 0 {
				t.Errorf("resp = %+v", resp)
			}
		})
	}
}

func TestSignature(t *testing.T) {
	sig := Signature("JP-1", "200", "100000.00", "key")
	if len(sig) != 128 {
		t.Fatalf("sha512 hex length = %d", len(sig))
	}
	if !VerifySignature("JP-1", "200", "100000.00", "key", sig) {
		t.Errorf("valid signature rejected")
	}
	if VerifySignature("JP-1", "200", "1.00", "key", sig) {
		t.Errorf("tampered amount accepted")
	}
}

func TestGrossAmount(t *testing.T) {
	if got := GrossAmount(decimal.RequireFromString("100000.00")); got != 100000 {
		t.Errorf("got %d", got)
	}
	if got := GrossAmount(decimal.RequireFromString("66999.5")); got != 67000 {
		t.Errorf("got %d", got)
	}
}
