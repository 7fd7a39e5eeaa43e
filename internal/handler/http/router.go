package http

import (
	"log/slog"
	"os"

	"github.com/csm-garage/backoffice-go/internal/handler/http/middleware"
	"github.com/csm-garage/backoffice-go/internal/pkg/jwt"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httplog/v3"
	"github.com/go-chi/jwtauth/v5"
)

type RouterConfig struct {
	Env         string
	Version     string
	CORSOrigins []string
	// RequestLogLevel defaults to info.
	RequestLogLevel slog.Level
}

type Handlers struct {
	Payroll    PayrollHandler
	Commission CommissionHandler
	Payment    PaymentHandler
	Mpesa      MpesaHandler
}

func NewRouter(cfg RouterConfig, JWTService jwt.Service, h Handlers) *chi.Mux {
	r := chi.NewRouter()
	logFormat := httplog.SchemaECS.Concise(cfg.Env != "production")
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		ReplaceAttr: logFormat.ReplaceAttr,
	})).With(
		slog.String("app", "csm-backoffice"),
		slog.String("version", cfg.Version),
		slog.String("env", cfg.Env),
	)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORSOrigins,
		AllowCredentials: true,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link"},
		MaxAge:           300,
	}))

	r.Use(httplog.RequestLogger(logger, &httplog.Options{
		Level:  cfg.RequestLogLevel,
		Schema: httplog.SchemaECS,
	}))

	r.Use(chiMiddleware.AllowContentEncoding("application/json"))
	r.Use(chiMiddleware.CleanPath)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Heartbeat("/"))

	r.Route("/api/v1", func(r chi.Router) {

		// Gateway webhook, authenticated by its shared token
		r.Post("/mpesa/callback", h.Mpesa.Callback)

		// Requires authentication
		r.Group(func(r chi.Router) {
			r.Use(jwtauth.Verifier(JWTService.JWTAuth()))
			r.Use(middleware.AuthRequired(JWTService.JWTAuth()))

			r.Route("/payroll", func(r chi.Router) {
				r.Use(middleware.RequireCompany)
				r.Post("/run", h.Payroll.RunPayroll)
				r.Get("/", h.Payroll.ListPayrolls)
				r.Get("/{id}/payslip", h.Payroll.GetPayslip)
			})

			r.Route("/employees/{employeeId}", func(r chi.Router) {
				r.Use(middleware.RequireCompany)
				r.Get("/remunerations", h.Payroll.ListRemunerations)
				r.Post("/remunerations", h.Payroll.CreateRemuneration)
				r.Get("/deductions", h.Payroll.ListDeductions)
				r.Post("/deductions", h.Payroll.CreateDeduction)

				r.Get("/commission-settings", h.Commission.ListSettings)
				r.Put("/commission-settings", h.Commission.UpsertSetting)
				r.Get("/commissions", h.Commission.ListCommissions)
				r.Post("/commissions/payment", h.Commission.UpdatePaymentStatus)
			})

			r.Route("/sale-items/{id}/employees", func(r chi.Router) {
				r.Use(middleware.RequireCompany)
				r.Put("/", h.Commission.ReplaceAssignments)
				r.Post("/{employeeId}", h.Commission.AssignEmployee)
				r.Delete("/{employeeId}", h.Commission.UnassignEmployee)
			})

			r.Route("/payments", func(r chi.Router) {
				r.Use(middleware.RequireCompany)
				r.Get("/", h.Payment.ListPayments)
				r.Post("/", h.Payment.CreatePayment)
				r.Post("/checkout", h.Payment.RegisterCheckout)
				r.Get("/{id}", h.Payment.GetPayment)
				r.Post("/{id}/link", h.Payment.LinkDocuments)
			})
		})
	})
	return r
}
