package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Clinica-api/internal/application/auth"
	"github.com/jhoicas/Clinica-api/internal/application/billing"
	"github.com/jhoicas/Clinica-api/internal/application/usecase"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	AuthUC          *auth.AuthUseCase
	UserUC          *usecase.UserUseCase
	PatientUC       *usecase.PatientUseCase
	AppointmentUC   *usecase.AppointmentUseCase
	InvoiceUC       *usecase.InvoiceUseCase
	MedicalRecordUC *usecase.MedicalRecordUseCase
	PDFUC           *billing.PDFUseCase
	Tokens          TokenParser
	DB              Pinger
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	app.Get("/health", Health(deps.DB))

	api := app.Group("/api")

	// Auth (público)
	authHandler := NewAuthHandler(deps.AuthUC)
	authGroup := api.Group("/auth")
	authGroup.Post("/register", authHandler.Register)
	authGroup.Post("/login", authHandler.Login)

	// Rutas protegidas (requieren Bearer Token)
	requireAuth := AuthMiddleware(deps.Tokens)
	authGroup.Get("/me", requireAuth, authHandler.Me)

	users := api.Group("/users", requireAuth)
	userHandler := NewUserHandler(deps.UserUC)
	users.Post("/", userHandler.Create)
	users.Get("/", userHandler.List)
	users.Get("/:id", userHandler.GetByID)

	patients := api.Group("/patients", requireAuth)
	patientHandler := NewPatientHandler(deps.PatientUC)
	patients.Post("/", patientHandler.Create)
	patients.Get("/", patientHandler.List)
	patients.Get("/:id", patientHandler.GetByID)
	patients.Put("/:id", patientHandler.Update)
	patients.Delete("/:id", patientHandler.Delete)

	appointments := api.Group("/appointments", requireAuth)
	appointmentHandler := NewAppointmentHandler(deps.AppointmentUC)
	appointments.Post("/", appointmentHandler.Create)
	appointments.Get("/", appointmentHandler.List)
	appointments.Get("/:id", appointmentHandler.GetByID)
	appointments.Put("/:id", appointmentHandler.Update)
	appointments.Delete("/:id", appointmentHandler.Delete)

	invoices := api.Group("/invoices", requireAuth)
	invoiceHandler := NewInvoiceHandler(deps.InvoiceUC, deps.PDFUC)
	invoices.Post("/", invoiceHandler.Create)
	invoices.Get("/", invoiceHandler.List)
	invoices.Get("/:id", invoiceHandler.GetByID)
	invoices.Get("/:id/pdf", invoiceHandler.DownloadPDF)
	invoices.Put("/:id", invoiceHandler.Update)
	invoices.Delete("/:id", invoiceHandler.Delete)

	records := api.Group("/medical-records", requireAuth)
	recordHandler := NewMedicalRecordHandler(deps.MedicalRecordUC)
	records.Post("/", recordHandler.Create)
	records.Get("/", recordHandler.List)
	records.Get("/:id", recordHandler.GetByID)
	records.Put("/:id", recordHandler.Update)
	records.Delete("/:id", recordHandler.Delete)
}
