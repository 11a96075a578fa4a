package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"

	"github.com/jhoicas/Clinica-api/internal/application/auth"
	"github.com/jhoicas/Clinica-api/internal/application/billing"
	"github.com/jhoicas/Clinica-api/internal/application/tenancy"
	"github.com/jhoicas/Clinica-api/internal/application/usecase"
	"github.com/jhoicas/Clinica-api/internal/infrastructure/cache"
	"github.com/jhoicas/Clinica-api/internal/infrastructure/metrics"
	infrapdf "github.com/jhoicas/Clinica-api/internal/infrastructure/pdf"
	"github.com/jhoicas/Clinica-api/internal/infrastructure/postgres"
	httpRouter "github.com/jhoicas/Clinica-api/internal/interfaces/http"
	"github.com/jhoicas/Clinica-api/pkg/config"
	"github.com/jhoicas/Clinica-api/pkg/jwt"
	"github.com/jhoicas/Clinica-api/pkg/logger"
	"github.com/jhoicas/Clinica-api/pkg/password"
)

//go:generate go run github.com/swaggo/swag/cmd/swag init -g cmd/api/main.go -d ../../ -o ../../docs --outputTypes json

// @title                       Clínica API
// @version                     1.0
// @description                 Backend multi-clínica: pacientes, citas, facturas e historias clínicas.
// @BasePath                    /
// @securityDefinitions.apikey  BearerAuth
// @in                          header
// @name                        Authorization
func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: cfg.App.LogLevel,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Msg("iniciando aplicación")

	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()

	if cfg.DB.AutoMigrate {
		if err := postgres.EnsureSchema(ctx, pool); err != nil {
			log.Fatal().Err(err).Msg("aplicar esquema")
		}
		log.Info().Msg("esquema aplicado")
	}

	// Contador de intentos de login: Redis si está configurado, memoria si no.
	var counter cache.Cache
	if cfg.Redis.Enabled() {
		counter, err = cache.NewRedisCache(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			log.Fatal().Err(err).Str("addr", cfg.Redis.Addr).Msg("conexión a Redis")
		}
		log.Info().Str("addr", cfg.Redis.Addr).Msg("throttle de login sobre Redis")
	} else {
		counter = cache.NewMemoryCache()
		log.Warn().Msg("REDIS_ADDR vacío: throttle de login en memoria (solo esta instancia)")
	}
	defer counter.Close()

	tokens, err := jwt.NewService(cfg.JWT.Secret, cfg.JWT.TTL(), cfg.JWT.Issuer)
	if err != nil {
		log.Fatal().Err(err).Msg("servicio de tokens")
	}
	hasher := password.NewHasher(cfg.Auth.BcryptCost)
	appMetrics := metrics.New()

	companyRepo := postgres.NewCompanyRepository(pool)
	userRepo := postgres.NewUserRepository(pool)
	patientRepo := postgres.NewPatientRepository(pool)
	appointmentRepo := postgres.NewAppointmentRepository(pool)
	invoiceRepo := postgres.NewInvoiceRepository(pool)
	recordRepo := postgres.NewMedicalRecordRepository(pool)
	txRunner := postgres.NewTxRunner(pool)

	guard := tenancy.NewGuard(userRepo)

	authUC := auth.NewAuthUseCase(userRepo, companyRepo, txRunner, hasher, tokens, guard,
		auth.WithThrottle(auth.NewLoginThrottle(counter, cfg.Auth.LoginMaxFailures, cfg.Auth.LoginFailureWindow)),
		auth.WithRecorder(appMetrics),
	)
	userUC := usecase.NewUserUseCase(userRepo, hasher, guard)
	patientUC := usecase.NewPatientUseCase(patientRepo, guard)
	appointmentUC := usecase.NewAppointmentUseCase(appointmentRepo, patientRepo, userRepo, guard)
	invoiceUC := usecase.NewInvoiceUseCase(invoiceRepo, patientRepo, userRepo, guard)
	recordUC := usecase.NewMedicalRecordUseCase(recordRepo, patientRepo, userRepo, guard)

	// PDF: comprobante de la factura
	pdfGenerator := infrapdf.NewMarotoPDFGenerator()
	invoicePDFUC := billing.NewPDFUseCase(invoiceRepo, companyRepo, patientRepo, userRepo, guard, pdfGenerator)

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
		ErrorHandler: httpRouter.ErrorHandler,
	})
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(httpRouter.RequestLogger(log))
	app.Use(appMetrics.Middleware())

	// Swagger UI en local: http://localhost:<port>/docs
	if cfg.App.DocsEnabled {
		app.Use(swagger.New(swagger.Config{
			BasePath: "/",
			FilePath: "./docs/swagger.json",
			Path:     "docs",
			Title:    "Clínica API",
		}))
	}
	if cfg.Metrics.Enabled {
		app.Get("/metrics", adaptor.HTTPHandler(appMetrics.Handler()))
	}

	httpRouter.Router(app, httpRouter.RouterDeps{
		AuthUC:          authUC,
		UserUC:          userUC,
		PatientUC:       patientUC,
		AppointmentUC:   appointmentUC,
		InvoiceUC:       invoiceUC,
		MedicalRecordUC: recordUC,
		PDFUC:           invoicePDFUC,
		Tokens:          tokens,
		DB:              pool,
	})

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("señal de apagado recibida, cerrando servidor...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}

	log.Info().Msg("aplicación detenida")
}
