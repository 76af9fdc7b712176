package http

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"plata/internal/rates"
	"plata/internal/services"
	"plata/internal/storage"
)

func newTestServer(t *testing.T) *http.Server {
	t.Helper()
	store, err := storage.Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	transactions := services.NewTransactionService(store, nil)
	return NewServer(":0", Deps{
		Transactions: transactions,
		Transfers:    services.NewTransferService(store, nil),
		Investments:  services.NewInvestmentService(store),
		Recurring:    services.NewRecurringService(store, transactions),
		Accounts:     services.NewAccountService(store),
		Budgets:      services.NewBudgetService(store),
		Goals:        services.NewGoalService(store),
		Reconciler:   services.NewReconciler(store, nil),
		Ledger:       services.NewLedger(store),
		Rates:        rates.New(store, 0),

		DefaultCurrency: "COP",
	})
}

func doJSON(t *testing.T, srv *http.Server, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	rr := httptest.NewRecorder()
	srv.Handler.ServeHTTP(rr, req)
	return rr
}

func TestHealth(t *testing.T) {
	srv := newTestServer(t)
	rr := doJSON(t, srv, http.MethodGet, "/healthz", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("/healthz status = %d", rr.Code)
	}
	if rr.Header().Get("X-Request-ID") == "" {
		t.Error("missing X-Request-ID header")
	}
}

func TestAccountLifecycle(t *testing.T) {
	srv := newTestServer(t)

	rr := doJSON(t, srv, http.MethodPost, "/accounts",
		`{"user_id":1,"name":"Checking","type":"bank","currency_code":"COP"}`)
	if rr.Code != http.StatusCreated {
		t.Fatalf("create account status = %d, body %s", rr.Code, rr.Body)
	}
	var account accountResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &account); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if account.ID == 0 || account.BalanceCents != 0 {
		t.Errorf("unexpected account: %+v", account)
	}

	rr = doJSON(t, srv, http.MethodGet, fmt.Sprintf("/accounts/%d", account.ID), "")
	if rr.Code != http.StatusOK {
		t.Fatalf("get account status = %d", rr.Code)
	}

	rr = doJSON(t, srv, http.MethodGet, "/accounts?user_id=1", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("list accounts status = %d", rr.Code)
	}

	rr = doJSON(t, srv, http.MethodDelete, fmt.Sprintf("/accounts/%d", account.ID), "")
	if rr.Code != http.StatusNoContent {
		t.Fatalf("delete account status = %d", rr.Code)
	}
	rr = doJSON(t, srv, http.MethodGet, fmt.Sprintf("/accounts/%d", account.ID), "")
	if rr.Code != http.StatusNotFound {
		t.Fatalf("get deleted account status = %d, want 404", rr.Code)
	}
}

func TestTransactionEndpoints(t *testing.T) {
	srv := newTestServer(t)

	rr := doJSON(t, srv, http.MethodPost, "/accounts",
		`{"user_id":1,"name":"Checking","type":"bank","currency_code":"COP"}`)
	if rr.Code != http.StatusCreated {
		t.Fatalf("create account: %d %s", rr.Code, rr.Body)
	}
	var account accountResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &account); err != nil {
		t.Fatalf("decode: %v", err)
	}

	t.Run("create and check balance", func(t *testing.T) {
		rr := doJSON(t, srv, http.MethodPost, "/transactions",
			fmt.Sprintf(`{"account_id":%d,"amount":"-123.45","description":"Groceries"}`, account.ID))
		if rr.Code != http.StatusCreated {
			t.Fatalf("create transaction: %d %s", rr.Code, rr.Body)
		}

		var tx transactionResponse
		if err := json.Unmarshal(rr.Body.Bytes(), &tx); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if tx.AmountCents != -12345 {
			t.Errorf("amount_cents = %d, want -12345", tx.AmountCents)
		}

		rr = doJSON(t, srv, http.MethodGet, fmt.Sprintf("/accounts/%d", account.ID), "")
		var after accountResponse
		if err := json.Unmarshal(rr.Body.Bytes(), &after); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if after.BalanceCents != -12345 {
			t.Errorf("balance = %d, want -12345", after.BalanceCents)
		}
	})

	t.Run("validation maps to 400", func(t *testing.T) {
		cases := []string{
			`{"account_id":` + fmt.Sprint(account.ID) + `,"amount":"0.00"}`,
			`{"account_id":` + fmt.Sprint(account.ID) + `,"amount":"abc"}`,
			`{not json`,
		}
		for _, body := range cases {
			rr := doJSON(t, srv, http.MethodPost, "/transactions", body)
			if rr.Code != http.StatusBadRequest {
				t.Errorf("body %s: status = %d, want 400", body, rr.Code)
			}
		}
	})

	t.Run("missing entity maps to 404", func(t *testing.T) {
		rr := doJSON(t, srv, http.MethodGet, "/transactions/424242", "")
		if rr.Code != http.StatusNotFound {
			t.Errorf("status = %d, want 404", rr.Code)
		}
	})

	t.Run("split mismatch maps to 400", func(t *testing.T) {
		rr := doJSON(t, srv, http.MethodPost, "/transactions/split",
			fmt.Sprintf(`{"account_id":%d,"amount":"-10.00","splits":[{"amount":"-3.00"},{"amount":"-3.00"}]}`, account.ID))
		if rr.Code != http.StatusBadRequest {
			t.Errorf("status = %d, want 400, body %s", rr.Code, rr.Body)
		}
	})

	t.Run("consistency check endpoint", func(t *testing.T) {
		rr := doJSON(t, srv, http.MethodGet, fmt.Sprintf("/accounts/%d/check", account.ID), "")
		if rr.Code != http.StatusOK {
			t.Fatalf("status = %d", rr.Code)
		}
		var out map[string]bool
		if err := json.Unmarshal(rr.Body.Bytes(), &out); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if !out["consistent"] {
			t.Error("account reported inconsistent")
		}
	})
}

func TestTransferAndConflictMapping(t *testing.T) {
	srv := newTestServer(t)

	createAccount := func(name string) accountResponse {
		rr := doJSON(t, srv, http.MethodPost, "/accounts",
			fmt.Sprintf(`{"user_id":1,"name":"%s","type":"bank","currency_code":"COP"}`, name))
		if rr.Code != http.StatusCreated {
			t.Fatalf("create account: %d %s", rr.Code, rr.Body)
		}
		var a accountResponse
		if err := json.Unmarshal(rr.Body.Bytes(), &a); err != nil {
			t.Fatalf("decode: %v", err)
		}
		return a
	}
	from := createAccount("From")
	to := createAccount("To")

	rr := doJSON(t, srv, http.MethodPost, "/transfers",
		fmt.Sprintf(`{"from_account_id":%d,"to_account_id":%d,"amount":"500.00"}`, from.ID, to.ID))
	if rr.Code != http.StatusCreated {
		t.Fatalf("create transfer: %d %s", rr.Code, rr.Body)
	}
	var transfer transferResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &transfer); err != nil {
		t.Fatalf("decode: %v", err)
	}

	rr = doJSON(t, srv, http.MethodGet, fmt.Sprintf("/transfers/%d", transfer.ID), "")
	if rr.Code != http.StatusOK {
		t.Fatalf("get transfer: %d", rr.Code)
	}
	var detail struct {
		transferResponse
		Legs []transactionResponse `json:"legs"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &detail); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(detail.Legs) != 2 {
		t.Fatalf("legs = %d, want 2", len(detail.Legs))
	}

	// Deleting a leg is a conflict, not a validation error.
	rr = doJSON(t, srv, http.MethodDelete, fmt.Sprintf("/transactions/%d", detail.Legs[0].ID), "")
	if rr.Code != http.StatusConflict {
		t.Errorf("delete leg status = %d, want 409", rr.Code)
	}

	// Oversell is the other conflict path.
	rr = doJSON(t, srv, http.MethodPost, "/investments/sell",
		fmt.Sprintf(`{"account_id":%d,"symbol":"VTI","quantity":"1","price":"10"}`, from.ID))
	if rr.Code != http.StatusConflict {
		t.Errorf("oversell status = %d, want 409", rr.Code)
	}
}

func TestMethodNotAllowed(t *testing.T) {
	srv := newTestServer(t)
	rr := doJSON(t, srv, http.MethodPut, "/accounts", `{}`)
	if rr.Code != http.StatusMethodNotAllowed {
		t.Errorf("PUT /accounts status = %d, want 405", rr.Code)
	}
}

func TestAccountDefaultCurrency(t *testing.T) {
	srv := newTestServer(t)

	rr := doJSON(t, srv, http.MethodPost, "/accounts",
		`{"user_id":1,"name":"Wallet","type":"cash"}`)
	if rr.Code != http.StatusCreated {
		t.Fatalf("create account without currency: %d %s", rr.Code, rr.Body)
	}
	var account accountResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &account); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if account.CurrencyCode != "COP" {
		t.Errorf("currency_code = %q, want the configured default COP", account.CurrencyCode)
	}
}

func TestBudgetEndpoints(t *testing.T) {
	srv := newTestServer(t)

	rr := doJSON(t, srv, http.MethodPost, "/categories",
		`{"user_id":1,"name":"Groceries","type":"expense"}`)
	if rr.Code != http.StatusCreated {
		t.Fatalf("create category: %d %s", rr.Code, rr.Body)
	}
	var category struct {
		ID int64 `json:"id"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &category); err != nil {
		t.Fatalf("decode: %v", err)
	}

	rr = doJSON(t, srv, http.MethodPost, "/budgets",
		fmt.Sprintf(`{"user_id":1,"category_id":%d,"amount":"100.00"}`, category.ID))
	if rr.Code != http.StatusCreated {
		t.Fatalf("create budget: %d %s", rr.Code, rr.Body)
	}
	var budget budgetResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &budget); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if budget.AmountCents != 10000 || budget.Period != "monthly" {
		t.Errorf("budget = %+v, want 10000 cents / monthly", budget)
	}

	t.Run("duplicate conflicts", func(t *testing.T) {
		rr := doJSON(t, srv, http.MethodPost, "/budgets",
			fmt.Sprintf(`{"user_id":1,"category_id":%d,"amount":"50.00"}`, category.ID))
		if rr.Code != http.StatusConflict {
			t.Errorf("duplicate budget status = %d, want 409", rr.Code)
		}
	})

	t.Run("status reflects spending", func(t *testing.T) {
		rr := doJSON(t, srv, http.MethodPost, "/accounts",
			`{"user_id":1,"name":"Checking","type":"bank"}`)
		if rr.Code != http.StatusCreated {
			t.Fatalf("create account: %d %s", rr.Code, rr.Body)
		}
		var account accountResponse
		if err := json.Unmarshal(rr.Body.Bytes(), &account); err != nil {
			t.Fatalf("decode: %v", err)
		}
		rr = doJSON(t, srv, http.MethodPost, "/transactions",
			fmt.Sprintf(`{"account_id":%d,"amount":"-90.00","category_id":%d}`, account.ID, category.ID))
		if rr.Code != http.StatusCreated {
			t.Fatalf("create transaction: %d %s", rr.Code, rr.Body)
		}

		rr = doJSON(t, srv, http.MethodGet, "/budgets/status?user_id=1", "")
		if rr.Code != http.StatusOK {
			t.Fatalf("budget status: %d %s", rr.Code, rr.Body)
		}
		var statuses []services.BudgetStatus
		if err := json.Unmarshal(rr.Body.Bytes(), &statuses); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if len(statuses) != 1 {
			t.Fatalf("got %d statuses, want 1", len(statuses))
		}
		if statuses[0].Actual != 9000 || statuses[0].Status != "warning" {
			t.Errorf("status = %+v, want actual 9000 / warning", statuses[0])
		}
	})

	t.Run("update and delete", func(t *testing.T) {
		rr := doJSON(t, srv, http.MethodPut, fmt.Sprintf("/budgets/%d", budget.ID),
			`{"amount":"150.00","period":"monthly"}`)
		if rr.Code != http.StatusOK {
			t.Fatalf("update budget: %d %s", rr.Code, rr.Body)
		}

		rr = doJSON(t, srv, http.MethodDelete, fmt.Sprintf("/budgets/%d", budget.ID), "")
		if rr.Code != http.StatusNoContent {
			t.Fatalf("delete budget: %d", rr.Code)
		}
		rr = doJSON(t, srv, http.MethodDelete, fmt.Sprintf("/budgets/%d", budget.ID), "")
		if rr.Code != http.StatusNotFound {
			t.Errorf("delete missing budget status = %d, want 404", rr.Code)
		}
	})
}

func TestSavingsGoalEndpoints(t *testing.T) {
	srv := newTestServer(t)

	t.Run("active is null without goals", func(t *testing.T) {
		rr := doJSON(t, srv, http.MethodGet, "/savings-goals/active?user_id=1", "")
		if rr.Code != http.StatusOK {
			t.Fatalf("active goal: %d %s", rr.Code, rr.Body)
		}
		if strings.TrimSpace(rr.Body.String()) != "null" {
			t.Errorf("body = %q, want null", rr.Body.String())
		}
	})

	rr := doJSON(t, srv, http.MethodPost, "/savings-goals?user_id=1",
		`{"name":"Emergency fund","target_amount":"1000.00","current_amount":"250.00"}`)
	if rr.Code != http.StatusCreated {
		t.Fatalf("create goal: %d %s", rr.Code, rr.Body)
	}
	var goal goalResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &goal); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if goal.Icon != "🎯" || goal.Color != "amber" || !goal.IsActive {
		t.Errorf("goal defaults = %+v", goal)
	}
	if goal.Progress != 25 {
		t.Errorf("progress = %v, want 25", goal.Progress)
	}

	t.Run("active returns the goal", func(t *testing.T) {
		rr := doJSON(t, srv, http.MethodGet, "/savings-goals/active?user_id=1", "")
		if rr.Code != http.StatusOK {
			t.Fatalf("active goal: %d %s", rr.Code, rr.Body)
		}
		var active goalResponse
		if err := json.Unmarshal(rr.Body.Bytes(), &active); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if active.ID != goal.ID {
			t.Errorf("active goal id = %d, want %d", active.ID, goal.ID)
		}
	})

	t.Run("update, get, delete", func(t *testing.T) {
		rr := doJSON(t, srv, http.MethodPut, fmt.Sprintf("/savings-goals/%d", goal.ID),
			`{"name":"Emergency fund","target_amount":"1000.00","current_amount":"500.00"}`)
		if rr.Code != http.StatusOK {
			t.Fatalf("update goal: %d %s", rr.Code, rr.Body)
		}
		var updated goalResponse
		if err := json.Unmarshal(rr.Body.Bytes(), &updated); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if updated.CurrentCents != 50000 || updated.Progress != 50 {
			t.Errorf("updated goal = %+v, want 50000 cents / 50%%", updated)
		}

		rr = doJSON(t, srv, http.MethodDelete, fmt.Sprintf("/savings-goals/%d", goal.ID), "")
		if rr.Code != http.StatusNoContent {
			t.Fatalf("delete goal: %d", rr.Code)
		}
		rr = doJSON(t, srv, http.MethodGet, fmt.Sprintf("/savings-goals/%d", goal.ID), "")
		if rr.Code != http.StatusNotFound {
			t.Errorf("get deleted goal status = %d, want 404", rr.Code)
		}
	})

	t.Run("validation maps to 400", func(t *testing.T) {
		rr := doJSON(t, srv, http.MethodPost, "/savings-goals?user_id=1",
			`{"name":"","target_amount":"100.00"}`)
		if rr.Code != http.StatusBadRequest {
			t.Errorf("empty name status = %d, want 400", rr.Code)
		}
	})
}

func TestRecurringCreateDefaults(t *testing.T) {
	srv := newTestServer(t)

	rr := doJSON(t, srv, http.MethodPost, "/accounts",
		`{"user_id":1,"name":"Checking","type":"bank"}`)
	if rr.Code != http.StatusCreated {
		t.Fatalf("create account: %d %s", rr.Code, rr.Body)
	}
	var account accountResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &account); err != nil {
		t.Fatalf("decode: %v", err)
	}

	// day_of_month and start_date are optional; they default to 1 and today.
	rr = doJSON(t, srv, http.MethodPost, "/recurring",
		fmt.Sprintf(`{"user_id":1,"account_id":%d,"name":"Salary","amount":"2500.00","frequency":"monthly"}`, account.ID))
	if rr.Code != http.StatusCreated {
		t.Fatalf("create recurring without schedule fields: %d %s", rr.Code, rr.Body)
	}
	var rec recurringResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &rec); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if rec.DayOfMonth != 1 {
		t.Errorf("day_of_month = %d, want 1", rec.DayOfMonth)
	}
	if rec.StartDate == "" {
		t.Error("start_date should default to today")
	}

	t.Run("upcoming lists definitions due inside the window", func(t *testing.T) {
		start := time.Now().UTC().AddDate(0, 0, 5).Format("2006-01-02")
		rr := doJSON(t, srv, http.MethodPost, "/recurring",
			fmt.Sprintf(`{"user_id":1,"account_id":%d,"name":"Netflix","amount":"-15.00","frequency":"daily","start_date":%q}`,
				account.ID, start))
		if rr.Code != http.StatusCreated {
			t.Fatalf("create recurring: %d %s", rr.Code, rr.Body)
		}
		var netflix recurringResponse
		if err := json.Unmarshal(rr.Body.Bytes(), &netflix); err != nil {
			t.Fatalf("decode: %v", err)
		}

		rr = doJSON(t, srv, http.MethodGet, "/recurring/upcoming?user_id=1", "")
		if rr.Code != http.StatusOK {
			t.Fatalf("upcoming: %d %s", rr.Code, rr.Body)
		}
		var upcoming []recurringResponse
		if err := json.Unmarshal(rr.Body.Bytes(), &upcoming); err != nil {
			t.Fatalf("decode: %v", err)
		}
		found := false
		for _, u := range upcoming {
			if u.ID == netflix.ID {
				found = true
			}
		}
		if !found {
			t.Errorf("upcoming = %+v, want it to include the definition due in 5 days", upcoming)
		}
	})
}
