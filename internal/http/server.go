// Package http exposes the ledger services as a thin JSON API. Handlers
// parse and validate input, call one service operation and marshal the
// result; every invariant lives in the services, not here.
package http

import (
	"net/http"
	"time"

	"plata/internal/middleware/trace"
	"plata/internal/rates"
	"plata/internal/services"
)

// Server bundles the service dependencies behind an http.Server.
type Server struct {
	transactions *services.TransactionService
	transfers    *services.TransferService
	investments  *services.InvestmentService
	recurring    *services.RecurringService
	accounts     *services.AccountService
	budgets      *services.BudgetService
	goals        *services.GoalService
	reconciler   *services.Reconciler
	ledger       *services.Ledger
	rates        *rates.Service

	defaultCurrency string
}

type Deps struct {
	Transactions *services.TransactionService
	Transfers    *services.TransferService
	Investments  *services.InvestmentService
	Recurring    *services.RecurringService
	Accounts     *services.AccountService
	Budgets      *services.BudgetService
	Goals        *services.GoalService
	Reconciler   *services.Reconciler
	Ledger       *services.Ledger
	Rates        *rates.Service

	// DefaultCurrency fills in accounts created without a currency code.
	DefaultCurrency string
}

// NewServer builds the configured http.Server listening on addr.
func NewServer(addr string, deps Deps) *http.Server {
	s := &Server{
		transactions: deps.Transactions,
		transfers:    deps.Transfers,
		investments:  deps.Investments,
		recurring:    deps.Recurring,
		accounts:     deps.Accounts,
		budgets:      deps.Budgets,
		goals:        deps.Goals,
		reconciler:   deps.Reconciler,
		ledger:       deps.Ledger,
		rates:        deps.Rates,

		defaultCurrency: deps.DefaultCurrency,
	}

	mux := http.NewServeMux()

	mux.HandleFunc("GET /healthz", s.handleHealth)

	mux.HandleFunc("POST /accounts", s.handleCreateAccount)
	mux.HandleFunc("GET /accounts", s.handleListAccounts)
	mux.HandleFunc("GET /accounts/{id}", s.handleGetAccount)
	mux.HandleFunc("DELETE /accounts/{id}", s.handleDeleteAccount)
	mux.HandleFunc("GET /accounts/{id}/check", s.handleCheckAccount)

	mux.HandleFunc("POST /categories", s.handleCreateCategory)
	mux.HandleFunc("GET /categories", s.handleListCategories)
	mux.HandleFunc("DELETE /categories/{id}", s.handleDeleteCategory)

	mux.HandleFunc("POST /transactions", s.handleCreateTransaction)
	mux.HandleFunc("POST /transactions/split", s.handleCreateSplit)
	mux.HandleFunc("GET /transactions", s.handleListTransactions)
	mux.HandleFunc("GET /transactions/{id}", s.handleGetTransaction)
	mux.HandleFunc("DELETE /transactions/{id}", s.handleDeleteTransaction)

	mux.HandleFunc("POST /transfers", s.handleCreateTransfer)
	mux.HandleFunc("GET /transfers", s.handleListTransfers)
	mux.HandleFunc("GET /transfers/{id}", s.handleGetTransfer)

	mux.HandleFunc("POST /investments/buy", s.handleBuy)
	mux.HandleFunc("POST /investments/sell", s.handleSell)
	mux.HandleFunc("GET /investments", s.handleListInvestments)

	mux.HandleFunc("POST /recurring", s.handleCreateRecurring)
	mux.HandleFunc("GET /recurring", s.handleListRecurring)
	mux.HandleFunc("GET /recurring/upcoming", s.handleUpcomingRecurring)
	mux.HandleFunc("PUT /recurring/{id}", s.handleUpdateRecurring)
	mux.HandleFunc("POST /recurring/{id}/deactivate", s.handleDeactivateRecurring)
	mux.HandleFunc("DELETE /recurring/{id}", s.handleDeleteRecurring)
	mux.HandleFunc("POST /recurring/process", s.handleProcessRecurring)

	mux.HandleFunc("POST /budgets", s.handleCreateBudget)
	mux.HandleFunc("GET /budgets", s.handleListBudgets)
	mux.HandleFunc("GET /budgets/status", s.handleBudgetStatus)
	mux.HandleFunc("PUT /budgets/{id}", s.handleUpdateBudget)
	mux.HandleFunc("DELETE /budgets/{id}", s.handleDeleteBudget)

	mux.HandleFunc("POST /savings-goals", s.handleCreateGoal)
	mux.HandleFunc("GET /savings-goals", s.handleListGoals)
	mux.HandleFunc("GET /savings-goals/active", s.handleActiveGoal)
	mux.HandleFunc("GET /savings-goals/{id}", s.handleGetGoal)
	mux.HandleFunc("PUT /savings-goals/{id}", s.handleUpdateGoal)
	mux.HandleFunc("DELETE /savings-goals/{id}", s.handleDeleteGoal)

	mux.HandleFunc("POST /admin/reconcile", s.handleReconcile)
	mux.HandleFunc("GET /rates", s.handleGetRate)
	mux.HandleFunc("POST /rates", s.handleImportRate)

	return &http.Server{
		Addr:           addr,
		Handler:        trace.Middleware(mux),
		ReadTimeout:    10 * time.Second,
		WriteTimeout:   10 * time.Second,
		IdleTimeout:    60 * time.Second,
		MaxHeaderBytes: 1 << 16,
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
