// seed importa pacientes desde un CSV a la clínica de un administrador.
//
// Uso:
//
//	go run ./cmd/seed --admin admin@clinica.com --password secreto [--company "Clínica Demo"] [--latin1] pacientes.csv
//
// Si el administrador no existe y se indica --company, registra la clínica primero.
// El CSV lleva encabezado; columnas reconocidas: first_name, last_name, email, phone,
// birth_date (YYYY-MM-DD), gender, health_insurance, health_insurance_number, allergies,
// medical_observations. Las demás se ignoran. --latin1 para exportaciones ISO-8859-1.
package main

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/pflag"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"

	"github.com/jhoicas/Clinica-api/internal/application/auth"
	"github.com/jhoicas/Clinica-api/internal/application/authctx"
	"github.com/jhoicas/Clinica-api/internal/application/dto"
	"github.com/jhoicas/Clinica-api/internal/application/tenancy"
	"github.com/jhoicas/Clinica-api/internal/application/usecase"
	"github.com/jhoicas/Clinica-api/internal/domain"
	"github.com/jhoicas/Clinica-api/internal/infrastructure/postgres"
	"github.com/jhoicas/Clinica-api/pkg/config"
	"github.com/jhoicas/Clinica-api/pkg/jwt"
	"github.com/jhoicas/Clinica-api/pkg/logger"
	"github.com/jhoicas/Clinica-api/pkg/password"
)

func main() {
	admin := pflag.String("admin", "", "email del administrador de la clínica")
	pass := pflag.String("password", "", "password del administrador")
	company := pflag.String("company", "", "nombre de la clínica (registra si el administrador no existe)")
	latin1 := pflag.Bool("latin1", false, "el CSV está en ISO-8859-1")
	pflag.Parse()

	if pflag.NArg() != 1 || *admin == "" || *pass == "" {
		fmt.Fprintln(os.Stderr, "uso: seed --admin EMAIL --password PASS [--company NOMBRE] [--latin1] archivo.csv")
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Cargar configuración: %v\n", err)
		os.Exit(1)
	}
	log := logger.New(logger.Config{Env: cfg.App.Env, Level: cfg.App.LogLevel})

	f, err := os.Open(pflag.Arg(0))
	if err != nil {
		log.Fatal().Err(err).Msg("abrir CSV")
	}
	defer f.Close()

	patients, err := readPatients(f, *latin1)
	if err != nil {
		log.Fatal().Err(err).Msg("leer CSV")
	}

	ctx := log.WithContext(context.Background())
	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()
	if cfg.DB.AutoMigrate {
		if err := postgres.EnsureSchema(ctx, pool); err != nil {
			log.Fatal().Err(err).Msg("aplicar esquema")
		}
	}

	tokens, err := jwt.NewService(cfg.JWT.Secret, cfg.JWT.TTL(), cfg.JWT.Issuer)
	if err != nil {
		log.Fatal().Err(err).Msg("servicio de tokens")
	}
	userRepo := postgres.NewUserRepository(pool)
	guard := tenancy.NewGuard(userRepo)
	authUC := auth.NewAuthUseCase(userRepo, postgres.NewCompanyRepository(pool), postgres.NewTxRunner(pool),
		password.NewHasher(cfg.Auth.BcryptCost), tokens, guard)
	patientUC := usecase.NewPatientUseCase(postgres.NewPatientRepository(pool), guard)

	session, err := signIn(ctx, authUC, *admin, *pass, *company)
	if err != nil {
		log.Fatal().Err(err).Str("admin", *admin).Msg("autenticar administrador")
	}

	// Mismo ámbito que abre el middleware HTTP para una petición.
	scoped, release := authctx.Begin(ctx)
	defer release()
	if err := authctx.Establish(scoped, authctx.Identity{Email: session.User.Email}); err != nil {
		log.Fatal().Err(err).Msg("establecer identidad")
	}

	created, skipped := 0, 0
	for i, p := range patients {
		if _, err := patientUC.Create(scoped, p); err != nil {
			log.Warn().Err(err).Int("fila", i+2).Msg("paciente omitido")
			skipped++
			continue
		}
		created++
	}
	log.Info().
		Str("company_id", session.User.CompanyID).
		Int("creados", created).
		Int("omitidos", skipped).
		Msg("importación terminada")
}

// signIn inicia sesión; si el administrador no existe y hay nombre de clínica, la registra.
func signIn(ctx context.Context, uc *auth.AuthUseCase, email, pass, company string) (*dto.AuthResponse, error) {
	session, err := uc.Login(ctx, dto.LoginRequest{Email: email, Password: pass})
	if err == nil || company == "" || !errors.Is(err, domain.ErrInvalidCredentials) {
		return session, err
	}
	session, regErr := uc.Register(ctx, dto.RegisterRequest{
		Email:       email,
		Password:    pass,
		CompanyName: company,
		FirstName:   "Administrador",
		LastName:    company,
	})
	if errors.Is(regErr, domain.ErrEmailTaken) {
		// Existe: el login falló por la password.
		return nil, err
	}
	return session, regErr
}

// readPatients convierte las filas del CSV en solicitudes de alta.
func readPatients(r io.Reader, latin1 bool) ([]dto.PatientRequest, error) {
	if latin1 {
		r = transform.NewReader(r, charmap.ISO8859_1.NewDecoder())
	}
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("leer encabezado: %w", err)
	}
	for i := range header {
		header[i] = strings.ToLower(strings.TrimSpace(strings.TrimPrefix(header[i], "\ufeff")))
	}

	var out []dto.PatientRequest
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		var p dto.PatientRequest
		for i, v := range rec {
			if i >= len(header) {
				break
			}
			setField(&p, header[i], strings.TrimSpace(v))
		}
		out = append(out, p)
	}
	return out, nil
}

func setField(p *dto.PatientRequest, column, v string) {
	switch column {
	case "first_name":
		p.FirstName = v
	case "last_name":
		p.LastName = v
	case "email":
		p.Email = v
	case "phone":
		p.Phone = v
	case "birth_date":
		p.BirthDate = v
	case "gender":
		p.Gender = v
	case "health_insurance":
		p.HealthInsurance = v
	case "health_insurance_number":
		p.HealthInsuranceNumber = v
	case "allergies":
		p.Allergies = v
	case "medical_observations":
		p.MedicalObservations = v
	}
}
