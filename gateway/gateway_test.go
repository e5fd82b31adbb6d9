package gateway_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/xraph/paylater"
	"github.com/xraph/paylater/gateway"
	"github.com/xraph/paylater/store/memory"
)

type response struct {
	Success   bool            `json:"success"`
	ErrorCode string          `json:"error_code"`
	Data      json.RawMessage `json:"data"`
}

func newHandler(t *testing.T, opts ...gateway.ServerOption) http.Handler {
	t.Helper()
	engine := paylater.New(memory.New())
	return gateway.NewServer(engine, opts...).Handler()
}

func call(t *testing.T, h http.Handler, action string, data any) (int, response) {
	t.Helper()

	body := map[string]any{"action": action, "token": "t", "role": "admin"}
	if data != nil {
		body["data"] = data
	}
	raw, err := json.Marshal(body)
	if err != nil {
		t.Fatal(err)
	}

	req := httptest.NewRequest(http.MethodPost, "/paylater", bytes.NewReader(raw))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	var res response
	if err := json.Unmarshal(rec.Body.Bytes(), &res); err != nil {
		t.Fatalf("malformed response %q: %v", rec.Body.String(), err)
	}
	return rec.Code, res
}

func TestHealth(t *testing.T) {
	h := newHandler(t)
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Errorf("status = %d", rec.Code)
	}
}

func TestActionDispatch(t *testing.T) {
	h := newHandler(t)

	t.Run("EmptyAction", func(t *testing.T) {
		status, res := call(t, h, "", nil)
		if status != http.StatusBadRequest || res.ErrorCode != "INVALID_INPUT" {
			t.Errorf("status=%d res=%+v", status, res)
		}
	})

	t.Run("UnknownAction", func(t *testing.T) {
		status, res := call(t, h, "credit_mystery", nil)
		if status != http.StatusNotFound || res.ErrorCode != "UNKNOWN_ACTION" {
			t.Errorf("status=%d res=%+v", status, res)
		}
	})

	t.Run("MalformedBody", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/paylater", bytes.NewReader([]byte("{")))
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("status = %d", rec.Code)
		}
	})
}

func TestAuthorizerDeny(t *testing.T) {
	deny := gateway.AuthorizerFunc(func(_ *http.Request, _, _, role string) error {
		if role != "admin" {
			return errors.New("role not allowed")
		}
		return nil
	})
	h := newHandler(t, gateway.WithAuthorizer(deny))

	// call() sends role=admin; drop it to trip the authorizer.
	raw, _ := json.Marshal(map[string]any{"action": gateway.ActionAccountGet, "role": "guest"})
	req := httptest.NewRequest(http.MethodPost, "/paylater", bytes.NewReader(raw))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusForbidden {
		t.Errorf("status = %d", rec.Code)
	}
	var res response
	if err := json.Unmarshal(rec.Body.Bytes(), &res); err != nil {
		t.Fatal(err)
	}
	if res.Success || res.ErrorCode != "FORBIDDEN" {
		t.Errorf("res = %+v", res)
	}
}

func TestAccountAndInvoiceFlow(t *testing.T) {
	h := newHandler(t)

	status, res := call(t, h, gateway.ActionAccountUpsert, map[string]any{
		"phone":        "0811",
		"credit_limit": 1_000_000,
	})
	if status != http.StatusOK || !res.Success {
		t.Fatalf("upsert: status=%d res=%+v", status, res)
	}

	status, res = call(t, h, gateway.ActionInvoiceCreate, map[string]any{
		"phone":       "0811",
		"principal":   100_000,
		"tenor_weeks": 2,
		"invoice_id":  "inv-1",
	})
	if status != http.StatusOK || !res.Success {
		t.Fatalf("create: status=%d res=%+v", status, res)
	}
	var created struct {
		Invoice struct {
			TotalDue int64 `json:"total_due"`
		} `json:"invoice"`
	}
	if err := json.Unmarshal(res.Data, &created); err != nil {
		t.Fatal(err)
	}
	if created.Invoice.TotalDue != 110_000 {
		t.Errorf("total_due = %d", created.Invoice.TotalDue)
	}

	status, res = call(t, h, gateway.ActionInvoicePay, map[string]any{
		"invoice_id":     "inv-1",
		"amount":         110_000,
		"payment_ref_id": "pay-1",
	})
	if status != http.StatusOK || !res.Success {
		t.Fatalf("pay: status=%d res=%+v", status, res)
	}
	var paid struct {
		Settled bool `json:"settled"`
	}
	if err := json.Unmarshal(res.Data, &paid); err != nil {
		t.Fatal(err)
	}
	if !paid.Settled {
		t.Error("payment did not settle")
	}

	status, res = call(t, h, gateway.ActionAccountGet, map[string]any{"phone": "0811"})
	if status != http.StatusOK || !res.Success {
		t.Fatalf("get: status=%d res=%+v", status, res)
	}
	var snap struct {
		Account struct {
			UsedLimit int64 `json:"used_limit"`
		} `json:"account"`
	}
	if err := json.Unmarshal(res.Data, &snap); err != nil {
		t.Fatal(err)
	}
	if snap.Account.UsedLimit != 0 {
		t.Errorf("used_limit = %d after settle", snap.Account.UsedLimit)
	}
}

func TestErrorCodes(t *testing.T) {
	h := newHandler(t)

	t.Run("AccountNotFound", func(t *testing.T) {
		status, res := call(t, h, gateway.ActionInvoiceCreate, map[string]any{
			"phone":       "0811",
			"principal":   10_000,
			"tenor_weeks": 1,
			"invoice_id":  "inv-x",
		})
		if status != http.StatusNotFound || res.ErrorCode != "NOT_FOUND" {
			t.Errorf("status=%d res=%+v", status, res)
		}
	})

	if _, res := call(t, h, gateway.ActionAccountUpsert, map[string]any{
		"phone":        "0811",
		"credit_limit": 5_000,
	}); !res.Success {
		t.Fatalf("upsert: %+v", res)
	}

	t.Run("InsufficientLimit", func(t *testing.T) {
		status, res := call(t, h, gateway.ActionInvoiceCreate, map[string]any{
			"phone":       "0811",
			"principal":   50_000,
			"tenor_weeks": 1,
			"invoice_id":  "inv-x",
		})
		if status != http.StatusConflict || res.ErrorCode != "INSUFFICIENT_LIMIT" {
			t.Errorf("status=%d res=%+v", status, res)
		}
	})

	t.Run("ValidationFailure", func(t *testing.T) {
		status, res := call(t, h, gateway.ActionInvoicePay, map[string]any{
			"invoice_id": "inv-x",
			"amount":     -5,
		})
		if status != http.StatusBadRequest || res.ErrorCode != "INVALID_INPUT" {
			t.Errorf("status=%d res=%+v", status, res)
		}
	})
}

func TestInvoicePreview(t *testing.T) {
	h := newHandler(t)

	status, res := call(t, h, gateway.ActionInvoicePreview, map[string]any{
		"principal":   100_000,
		"tenor_weeks": 3,
	})
	if status != http.StatusOK || !res.Success {
		t.Fatalf("status=%d res=%+v", status, res)
	}

	var quote struct {
		FeeAmount          int64 `json:"fee_amount"`
		TotalBeforePenalty int64 `json:"total_before_penalty"`
		WeeklyInstallment  int64 `json:"weekly_installment"`
		Display            struct {
			FeeAmount struct {
				Display string `json:"display"`
			} `json:"fee_amount"`
			TotalBeforePenalty struct {
				Amount   int64  `json:"amount"`
				Display  string `json:"display"`
				Currency string `json:"currency"`
			} `json:"total_before_penalty"`
		} `json:"display"`
	}
	if err := json.Unmarshal(res.Data, &quote); err != nil {
		t.Fatal(err)
	}
	// Default 3-week fee is 15%; 115_000 over 3 weeks rounds up.
	if quote.FeeAmount != 15_000 || quote.TotalBeforePenalty != 115_000 {
		t.Errorf("quote = %+v", quote)
	}
	if quote.WeeklyInstallment != 38_334 {
		t.Errorf("weekly = %d", quote.WeeklyInstallment)
	}
	if quote.Display.FeeAmount.Display != "Rp15.000" {
		t.Errorf("fee display = %q", quote.Display.FeeAmount.Display)
	}
	d := quote.Display.TotalBeforePenalty
	if d.Amount != 115_000 || d.Currency != "idr" || d.Display != "Rp115.000" {
		t.Errorf("total display = %+v", d)
	}

	t.Run("NonPositivePrincipal", func(t *testing.T) {
		status, res := call(t, h, gateway.ActionInvoicePreview, map[string]any{"principal": 0})
		if status != http.StatusBadRequest || res.ErrorCode != "INVALID_INPUT" {
			t.Errorf("status=%d res=%+v", status, res)
		}
	})
}

func TestSchedulerActions(t *testing.T) {
	h := newHandler(t)

	status, res := call(t, h, gateway.ActionInstallDueNoticeSchedule, map[string]any{"every": "6h"})
	if status != http.StatusOK || !res.Success {
		t.Fatalf("install: status=%d res=%+v", status, res)
	}

	status, res = call(t, h, gateway.ActionGetDueNoticeSchedule, nil)
	if status != http.StatusOK || !res.Success {
		t.Fatalf("get: status=%d res=%+v", status, res)
	}
	var sched struct {
		Name    string `json:"name"`
		Enabled bool   `json:"enabled"`
	}
	if err := json.Unmarshal(res.Data, &sched); err != nil {
		t.Fatal(err)
	}
	if sched.Name != "due_notice" || !sched.Enabled {
		t.Errorf("schedule = %+v", sched)
	}

	status, res = call(t, h, gateway.ActionRemoveDueNoticeSchedule, nil)
	if status != http.StatusOK || !res.Success {
		t.Fatalf("remove: status=%d res=%+v", status, res)
	}

	status, res = call(t, h, gateway.ActionGetDueNoticeSchedule, nil)
	if status != http.StatusNotFound || res.ErrorCode != "NOT_FOUND" {
		t.Errorf("get after remove: status=%d res=%+v", status, res)
	}

	t.Run("BadInterval", func(t *testing.T) {
		status, res := call(t, h, gateway.ActionInstallLimitScheduler, map[string]any{"every": "soon"})
		if status != http.StatusBadRequest || res.ErrorCode != "INVALID_INPUT" {
			t.Errorf("status=%d res=%+v", status, res)
		}
	})
}
