package auth

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/Clinica-api/internal/application/dto"
	"github.com/jhoicas/Clinica-api/internal/application/tenancy"
	"github.com/jhoicas/Clinica-api/internal/domain"
	"github.com/jhoicas/Clinica-api/internal/domain/entity"
	"github.com/jhoicas/Clinica-api/internal/domain/repository"
	"github.com/jhoicas/Clinica-api/pkg/logger"
	"github.com/jhoicas/Clinica-api/pkg/password"
)

// Recorder recibe los resultados de login/registro (métricas). Opcional.
type Recorder interface {
	AuthAttempt(operation, result string)
}

type nopRecorder struct{}

func (nopRecorder) AuthAttempt(string, string) {}

// AuthUseCase casos de uso de autenticación: registro, login e identidad actual.
type AuthUseCase struct {
	userRepo    repository.UserRepository
	companyRepo repository.CompanyRepository
	tx          TxRunner
	hasher      PasswordHasher
	tokens      TokenIssuer
	guard       *tenancy.Guard
	throttle    *LoginThrottle
	recorder    Recorder
	now         func() time.Time
}

// Option personaliza el AuthUseCase.
type Option func(*AuthUseCase)

// WithThrottle habilita el límite de logins fallidos.
func WithThrottle(t *LoginThrottle) Option {
	return func(uc *AuthUseCase) { uc.throttle = t }
}

// WithRecorder registra los resultados en métricas.
func WithRecorder(r Recorder) Option {
	return func(uc *AuthUseCase) {
		if r != nil {
			uc.recorder = r
		}
	}
}

// NewAuthUseCase construye el caso de uso de auth.
func NewAuthUseCase(
	userRepo repository.UserRepository,
	companyRepo repository.CompanyRepository,
	tx TxRunner,
	hasher PasswordHasher,
	tokens TokenIssuer,
	guard *tenancy.Guard,
	opts ...Option,
) *AuthUseCase {
	uc := &AuthUseCase{
		userRepo:    userRepo,
		companyRepo: companyRepo,
		tx:          tx,
		hasher:      hasher,
		tokens:      tokens,
		guard:       guard,
		recorder:    nopRecorder{},
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(uc)
	}
	return uc
}

// Register crea la empresa y su primer usuario (ADMIN) en una sola transacción y emite
// un token. Devuelve ErrEmailTaken si el email ya existe (sin distinguir mayúsculas).
func (uc *AuthUseCase) Register(ctx context.Context, in dto.RegisterRequest) (*dto.AuthResponse, error) {
	log := logger.FromContext(ctx)

	email := entity.NormalizeEmail(in.Email)
	if err := validateRegister(email, in); err != nil {
		uc.recorder.AuthAttempt("register", "invalid")
		return nil, err
	}

	existing, err := uc.userRepo.FindByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("auth: buscar usuario: %w", err)
	}
	if existing != nil {
		uc.recorder.AuthAttempt("register", "email_taken")
		return nil, domain.ErrEmailTaken
	}

	// bcrypt fuera de la transacción: no retener la conexión mientras se hashea.
	hash, err := uc.hasher.Hash(in.Password)
	if err != nil {
		if errors.Is(err, password.ErrTooLong) {
			return nil, fmt.Errorf("%w: password demasiado larga", domain.ErrInvalidInput)
		}
		return nil, fmt.Errorf("auth: hashear password: %w", err)
	}

	now := uc.now()
	company := &entity.Company{
		ID:        uuid.New().String(),
		Name:      strings.TrimSpace(in.CompanyName),
		CreatedAt: now,
		UpdatedAt: now,
	}
	user := &entity.User{
		ID:           uuid.New().String(),
		CompanyID:    company.ID,
		Email:        email,
		PasswordHash: hash,
		FirstName:    strings.TrimSpace(in.FirstName),
		LastName:     strings.TrimSpace(in.LastName),
		Role:         entity.RoleAdmin,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	err = uc.tx.RunAuth(ctx, func(companies repository.CompanyRepository, users repository.UserRepository) error {
		if err := companies.Create(ctx, company); err != nil {
			return err
		}
		return users.Create(ctx, user)
	})
	if err != nil {
		if errors.Is(err, domain.ErrEmailTaken) {
			// Registro concurrente con el mismo email: el índice único decidió.
			uc.recorder.AuthAttempt("register", "email_taken")
			return nil, domain.ErrEmailTaken
		}
		return nil, fmt.Errorf("auth: registrar empresa y usuario: %w", err)
	}

	log.Info().Str("company_id", company.ID).Str("user_id", user.ID).Msg("empresa registrada")
	uc.recorder.AuthAttempt("register", "success")
	return uc.issue(user)
}

// Login verifica email/password y emite un token. Email desconocido y password incorrecta
// devuelven el mismo ErrInvalidCredentials; la causa solo queda en el log.
func (uc *AuthUseCase) Login(ctx context.Context, in dto.LoginRequest) (*dto.AuthResponse, error) {
	log := logger.FromContext(ctx)
	email := entity.NormalizeEmail(in.Email)

	if uc.throttle.Blocked(ctx, email) {
		log.Warn().Str("reason", "throttled").Msg("login bloqueado")
		uc.recorder.AuthAttempt("login", "throttled")
		return nil, domain.ErrTooManyAttempts
	}

	user, err := uc.userRepo.FindByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("auth: buscar usuario: %w", err)
	}

	if user == nil {
		uc.hasher.Verify(in.Password, uc.hasher.DecoyHash())
		return nil, uc.loginFailed(ctx, email, "unknown_email")
	}
	if !uc.hasher.Verify(in.Password, user.PasswordHash) {
		return nil, uc.loginFailed(ctx, email, "wrong_password")
	}

	uc.throttle.Reset(ctx, email)
	uc.recorder.AuthAttempt("login", "success")
	return uc.issue(user)
}

// Me devuelve el usuario autenticado y su empresa.
func (uc *AuthUseCase) Me(ctx context.Context) (*dto.MeResponse, error) {
	user, err := uc.guard.CurrentUser(ctx)
	if err != nil {
		return nil, err
	}
	company, err := uc.companyRepo.GetByID(ctx, user.CompanyID)
	if err != nil {
		return nil, fmt.Errorf("auth: obtener empresa: %w", err)
	}
	if company == nil {
		return nil, fmt.Errorf("%w: usuario %s sin empresa", domain.ErrInconsistentState, user.ID)
	}
	return &dto.MeResponse{
		User: toUserResponse(user),
		Company: dto.CompanyResponse{
			ID:        company.ID,
			Name:      company.Name,
			CreatedAt: company.CreatedAt,
		},
	}, nil
}

func (uc *AuthUseCase) loginFailed(ctx context.Context, email, reason string) error {
	logger.FromContext(ctx).Info().Str("reason", reason).Msg("login rechazado")
	uc.throttle.Fail(ctx, email)
	uc.recorder.AuthAttempt("login", "invalid_credentials")
	return domain.ErrInvalidCredentials
}

func (uc *AuthUseCase) issue(user *entity.User) (*dto.AuthResponse, error) {
	token, exp, err := uc.tokens.Generate(user.Email)
	if err != nil {
		return nil, fmt.Errorf("auth: emitir token: %w", err)
	}
	return &dto.AuthResponse{
		Token:     token,
		TokenType: "Bearer",
		ExpiresAt: exp,
		User:      toUserResponse(user),
	}, nil
}

func validateRegister(email string, in dto.RegisterRequest) error {
	if err := ValidateEmail(email); err != nil {
		return err
	}
	if err := ValidatePassword(in.Password); err != nil {
		return err
	}
	switch {
	case strings.TrimSpace(in.CompanyName) == "":
		return fmt.Errorf("%w: company_name requerido", domain.ErrInvalidInput)
	case strings.TrimSpace(in.FirstName) == "":
		return fmt.Errorf("%w: first_name requerido", domain.ErrInvalidInput)
	case strings.TrimSpace(in.LastName) == "":
		return fmt.Errorf("%w: last_name requerido", domain.ErrInvalidInput)
	}
	return nil
}

// ValidateEmail exige una dirección simple (sin nombre para mostrar). email ya normalizado.
func ValidateEmail(email string) error {
	if email == "" {
		return fmt.Errorf("%w: email requerido", domain.ErrInvalidInput)
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return fmt.Errorf("%w: email inválido", domain.ErrInvalidInput)
	}
	return nil
}

// ValidatePassword exige password no vacía y dentro del límite de bcrypt.
func ValidatePassword(plain string) error {
	if plain == "" {
		return fmt.Errorf("%w: password requerida", domain.ErrInvalidInput)
	}
	if len(plain) > password.MaxLength {
		return fmt.Errorf("%w: password supera %d bytes", domain.ErrInvalidInput, password.MaxLength)
	}
	return nil
}

func toUserResponse(u *entity.User) dto.UserResponse {
	return dto.UserResponse{
		ID:        u.ID,
		CompanyID: u.CompanyID,
		Email:     u.Email,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Name:      u.DisplayName(),
		Role:      u.Role,
		Specialty: u.Specialty,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}
