package routes

import (
	"net/http"

	"github.com/gorilla/mux"

	"devlink.vn/backoffice/handlers"
	"devlink.vn/backoffice/middleware"
)

// RegisterRoutes sets up all application routes
func RegisterRoutes() http.Handler {
	r := mux.NewRouter()

	// =====================================================
	// Public Routes (no authentication)
	// =====================================================
	r.HandleFunc("/register", handlers.Register).Methods("POST")
	r.HandleFunc("/login", handlers.Login).Methods("POST")

	// =====================================================
	// Protected API Routes (require JWT authentication)
	// =====================================================
	api := r.PathPrefix("/api/v1").Subrouter()
	api.Use(middleware.JWTMiddleware)

	// Periods
	api.Handle("/periods",
		perm("period:read", handlers.ListPeriodsHandler)).Methods("GET")
	api.Handle("/periods/seed",
		perm("period:seed", handlers.SeedPeriodHandler)).Methods("POST")
	api.Handle("/periods/{id}",
		perm("period:read", handlers.GetPeriodHandler)).Methods("GET")
	api.Handle("/periods/{id}/export",
		perm("period:export", handlers.ExportPeriodToExcel)).Methods("GET")

	// Payment record lifecycle. Each endpoint demands the permission its
	// role-gated transition requires; the engine behind them is shared.
	api.Handle("/payments/{id}",
		perm("payment:read", handlers.GetPaymentRecordHandler)).Methods("GET")
	api.Handle("/payments/{id}/history",
		perm("payment:read", handlers.GetPaymentHistoryHandler)).Methods("GET")
	api.Handle("/payments/{id}/calculate",
		perm("payment:calculate", handlers.CalculatePaymentHandler)).Methods("POST")
	api.Handle("/payments/{id}/invoice",
		perm("payment:issue_invoice", handlers.IssueInvoiceHandler)).Methods("POST")
	api.Handle("/payments/{id}/payment",
		perm("payment:record_payment", handlers.RecordPaymentHandler)).Methods("POST")
	api.Handle("/payments/{id}/cancel",
		perm("payment:cancel", handlers.CancelPaymentHandler)).Methods("POST")

	// Evidence documents
	api.Handle("/payments/{id}/documents",
		perm("document:upload", handlers.UploadEvidenceHandler)).Methods("POST")
	api.Handle("/payments/{id}/documents",
		perm("document:read", handlers.ListEvidenceHandler)).Methods("GET")

	// Notifications (any authenticated user, own scope)
	api.HandleFunc("/notifications", handlers.ListNotificationsHandler).Methods("GET")
	api.HandleFunc("/notifications/{id}/read", handlers.MarkNotificationReadHandler).Methods("POST")

	// =====================================================
	// Admin Routes
	// =====================================================
	admin := api.PathPrefix("/admin").Subrouter()
	admin.Handle("/companies",
		perm("directory:manage", handlers.CreateCompanyHandler)).Methods("POST")
	admin.Handle("/companies",
		perm("directory:manage", handlers.ListCompaniesHandler)).Methods("GET")
	admin.Handle("/contracts",
		perm("directory:manage", handlers.CreateContractHandler)).Methods("POST")
	admin.Handle("/contracts/{id}/terminate",
		perm("directory:manage", handlers.TerminateContractHandler)).Methods("POST")
	admin.Handle("/contracts/{id}/cancel-records",
		perm("directory:manage", handlers.CancelContractRecordsHandler)).Methods("POST")
	admin.Handle("/sweep/run",
		perm("sweep:run", handlers.RunSweepHandler)).Methods("POST")

	return r
}

// perm wraps a handler func with a permission check.
func perm(permission string, h func(http.ResponseWriter, *http.Request)) http.Handler {
	return middleware.RequirePermission(permission)(http.HandlerFunc(h))
}
