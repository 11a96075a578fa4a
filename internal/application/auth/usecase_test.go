package auth_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/jhoicas/Clinica-api/internal/application/auth"
	"github.com/jhoicas/Clinica-api/internal/application/authctx"
	"github.com/jhoicas/Clinica-api/internal/application/dto"
	"github.com/jhoicas/Clinica-api/internal/application/tenancy"
	"github.com/jhoicas/Clinica-api/internal/domain"
	"github.com/jhoicas/Clinica-api/internal/domain/entity"
	"github.com/jhoicas/Clinica-api/internal/infrastructure/cache"
	"github.com/jhoicas/Clinica-api/internal/testutil"
	pkgjwt "github.com/jhoicas/Clinica-api/pkg/jwt"
	"github.com/jhoicas/Clinica-api/pkg/password"
)

// ──────────────────────────────────────────────────────────────────────────────
// Helpers de test
// ──────────────────────────────────────────────────────────────────────────────

const testSecret = "test-secret-key-for-unit-tests-000"

type fixture struct {
	store  *testutil.Store
	tokens *pkgjwt.Service
	uc     *auth.AuthUseCase
}

func newFixture(t *testing.T, opts ...auth.Option) *fixture {
	t.Helper()
	store := testutil.NewStore()
	tokens, err := pkgjwt.NewService(testSecret, time.Hour, "clinica-test")
	require.NoError(t, err)
	uc := auth.NewAuthUseCase(
		store.Users(), store.Companies(), store,
		password.NewHasher(bcrypt.MinCost), tokens,
		tenancy.NewGuard(store.Users()),
		opts...,
	)
	return &fixture{store: store, tokens: tokens, uc: uc}
}

func registration(email, pw string) dto.RegisterRequest {
	return dto.RegisterRequest{Email: email, Password: pw, CompanyName: "Acme", FirstName: "A", LastName: "One"}
}

type recorder struct{ events []string }

func (r *recorder) AuthAttempt(op, result string) { r.events = append(r.events, op+":"+result) }

// ──────────────────────────────────────────────────────────────────────────────
// Registro y login
// ──────────────────────────────────────────────────────────────────────────────

func TestRegistroYLogin_EjemploCompleto(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	t1, err := f.uc.Register(ctx, registration("a@x.com", "pw1"))
	require.NoError(t, err)
	assert.Equal(t, "Bearer", t1.TokenType)
	assert.Equal(t, entity.RoleAdmin, t1.User.Role)
	assert.NotEmpty(t, t1.User.CompanyID)

	t2, err := f.uc.Login(ctx, dto.LoginRequest{Email: "a@x.com", Password: "pw1"})
	require.NoError(t, err)
	claims, err := f.tokens.Parse(t2.Token)
	require.NoError(t, err)
	assert.Equal(t, "a@x.com", claims.Subject)

	_, err = f.uc.Login(ctx, dto.LoginRequest{Email: "a@x.com", Password: "wrong"})
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)

	_, err = f.uc.Register(ctx, registration("a@x.com", "otra"))
	assert.ErrorIs(t, err, domain.ErrEmailTaken)
}

func TestRegister_EmailRepetidoCualquierCaso_SinNuevoTenant(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.uc.Register(ctx, registration("a@x.com", "pw1"))
	require.NoError(t, err)

	for _, email := range []string{"A@X.COM", "  a@X.com ", "a@x.com"} {
		_, err := f.uc.Register(ctx, registration(email, "pw2"))
		assert.ErrorIs(t, err, domain.ErrEmailTaken, email)
	}
	assert.Equal(t, 1, f.store.CompanyCount())
	assert.Equal(t, 1, f.store.UserCount())
}

func TestRegister_FalloAlCrearUsuario_NoDejaEmpresaHuerfana(t *testing.T) {
	f := newFixture(t)
	f.store.FailUserCreate = errors.New("insert users falló")

	_, err := f.uc.Register(context.Background(), registration("a@x.com", "pw1"))
	require.Error(t, err)
	assert.Zero(t, f.store.CompanyCount(), "rollback: la empresa no debe quedar")
	assert.Zero(t, f.store.UserCount())
}

// Otro registro con el mismo email se confirmó entre la verificación previa y el insert:
// FindByEmail no ve nada pero Create choca con el índice único.
func TestRegister_CarreraConMismoEmail_EmailTaken(t *testing.T) {
	f := newFixture(t)
	f.store.FailUserCreate = domain.ErrEmailTaken

	_, err := f.uc.Register(context.Background(), registration("a@x.com", "pw1"))
	assert.ErrorIs(t, err, domain.ErrEmailTaken)
	assert.Zero(t, f.store.CompanyCount())
}

func TestRegister_Validacion(t *testing.T) {
	f := newFixture(t)
	tests := []struct {
		name string
		in   dto.RegisterRequest
	}{
		{"email vacío", registration("", "pw1")},
		{"email sin arroba", registration("no-es-email", "pw1")},
		{"email con nombre", registration("Ana <a@x.com>", "pw1")},
		{"password vacía", registration("a@x.com", "")},
		{"password > 72 bytes", registration("a@x.com", strings.Repeat("p", password.MaxLength+1))},
		{"sin empresa", dto.RegisterRequest{Email: "a@x.com", Password: "pw1", FirstName: "A", LastName: "B"}},
		{"sin nombre", dto.RegisterRequest{Email: "a@x.com", Password: "pw1", CompanyName: "Acme", LastName: "B"}},
		{"sin apellido", dto.RegisterRequest{Email: "a@x.com", Password: "pw1", CompanyName: "Acme", FirstName: "A"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.uc.Register(context.Background(), tt.in)
			assert.ErrorIs(t, err, domain.ErrInvalidInput)
		})
	}
	assert.Zero(t, f.store.CompanyCount())
}

func TestRegister_PasswordNoSeGuardaEnPlano(t *testing.T) {
	f := newFixture(t)
	_, err := f.uc.Register(context.Background(), registration("a@x.com", "pw1-secreta"))
	require.NoError(t, err)

	u, err := f.store.Users().FindByEmail(context.Background(), "a@x.com")
	require.NoError(t, err)
	require.NotNil(t, u)
	assert.NotContains(t, u.PasswordHash, "pw1-secreta")
}

func TestLogin_EmailDesconocidoYPasswordIncorrecta_MismaSenal(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, err := f.uc.Register(ctx, registration("a@x.com", "pw1"))
	require.NoError(t, err)

	_, errWrong := f.uc.Login(ctx, dto.LoginRequest{Email: "a@x.com", Password: "mal"})
	_, errUnknown := f.uc.Login(ctx, dto.LoginRequest{Email: "nadie@x.com", Password: "pw1"})

	require.Error(t, errWrong)
	require.Error(t, errUnknown)
	assert.Equal(t, errWrong, errUnknown)
	assert.Equal(t, errWrong.Error(), errUnknown.Error())
	assert.ErrorIs(t, errUnknown, domain.ErrInvalidCredentials)
}

func TestLogin_EmailSinDistinguirMayusculas(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, err := f.uc.Register(ctx, registration("Ana@Clinica.com", "pw1"))
	require.NoError(t, err)

	out, err := f.uc.Login(ctx, dto.LoginRequest{Email: "ANA@clinica.COM", Password: "pw1"})
	require.NoError(t, err)
	assert.Equal(t, "ana@clinica.com", out.User.Email)
}

// ──────────────────────────────────────────────────────────────────────────────
// Límite de intentos
// ──────────────────────────────────────────────────────────────────────────────

func TestLogin_Throttle_BloqueaTrasMaximo(t *testing.T) {
	mem := cache.NewMemoryCache()
	t.Cleanup(func() { _ = mem.Close() })
	f := newFixture(t, auth.WithThrottle(auth.NewLoginThrottle(mem, 3, time.Minute)))
	ctx := context.Background()
	_, err := f.uc.Register(ctx, registration("a@x.com", "pw1"))
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		_, err := f.uc.Login(ctx, dto.LoginRequest{Email: "a@x.com", Password: "mal"})
		require.ErrorIs(t, err, domain.ErrInvalidCredentials)
	}
	_, err = f.uc.Login(ctx, dto.LoginRequest{Email: "a@x.com", Password: "pw1"})
	assert.ErrorIs(t, err, domain.ErrTooManyAttempts, "con la password correcta también")

	for i := 0; i < 3; i++ {
		_, _ = f.uc.Login(ctx, dto.LoginRequest{Email: "nadie@x.com", Password: "x"})
	}
	_, err = f.uc.Login(ctx, dto.LoginRequest{Email: "nadie@x.com", Password: "x"})
	assert.ErrorIs(t, err, domain.ErrTooManyAttempts, "mismo comportamiento para emails desconocidos")
}

func TestLogin_Throttle_ExitoReiniciaContador(t *testing.T) {
	mem := cache.NewMemoryCache()
	t.Cleanup(func() { _ = mem.Close() })
	f := newFixture(t, auth.WithThrottle(auth.NewLoginThrottle(mem, 3, time.Minute)))
	ctx := context.Background()
	_, err := f.uc.Register(ctx, registration("a@x.com", "pw1"))
	require.NoError(t, err)

	for round := 0; round < 3; round++ {
		for i := 0; i < 2; i++ {
			_, _ = f.uc.Login(ctx, dto.LoginRequest{Email: "a@x.com", Password: "mal"})
		}
		_, err := f.uc.Login(ctx, dto.LoginRequest{Email: "a@x.com", Password: "pw1"})
		require.NoError(t, err)
	}
}

type brokenCounter struct{}

func (brokenCounter) Get(context.Context, string) ([]byte, error) {
	return nil, errors.New("redis caído")
}

func (brokenCounter) Incr(context.Context, string, time.Duration) (int64, error) {
	return 0, errors.New("redis caído")
}

func (brokenCounter) Delete(context.Context, string) error { return errors.New("redis caído") }

func TestLogin_Throttle_CacheCaido_NoBloquea(t *testing.T) {
	f := newFixture(t, auth.WithThrottle(auth.NewLoginThrottle(brokenCounter{}, 1, time.Minute)))
	ctx := context.Background()
	_, err := f.uc.Register(ctx, registration("a@x.com", "pw1"))
	require.NoError(t, err)

	_, err = f.uc.Login(ctx, dto.LoginRequest{Email: "a@x.com", Password: "mal"})
	require.ErrorIs(t, err, domain.ErrInvalidCredentials)
	_, err = f.uc.Login(ctx, dto.LoginRequest{Email: "a@x.com", Password: "pw1"})
	assert.NoError(t, err)
}

func TestRecorder_RegistraResultados(t *testing.T) {
	rec := &recorder{}
	f := newFixture(t, auth.WithRecorder(rec))
	ctx := context.Background()

	_, _ = f.uc.Register(ctx, registration("a@x.com", "pw1"))
	_, _ = f.uc.Register(ctx, registration("a@x.com", "pw1"))
	_, _ = f.uc.Login(ctx, dto.LoginRequest{Email: "a@x.com", Password: "mal"})
	_, _ = f.uc.Login(ctx, dto.LoginRequest{Email: "a@x.com", Password: "pw1"})

	assert.Equal(t, []string{
		"register:success",
		"register:email_taken",
		"login:invalid_credentials",
		"login:success",
	}, rec.events)
}

// ──────────────────────────────────────────────────────────────────────────────
// Identidad actual
// ──────────────────────────────────────────────────────────────────────────────

func TestMe_DevuelveUsuarioYEmpresa(t *testing.T) {
	f := newFixture(t)
	out, err := f.uc.Register(context.Background(), registration("a@x.com", "pw1"))
	require.NoError(t, err)

	ctx, release := authctx.Begin(context.Background())
	defer release()
	require.NoError(t, authctx.Establish(ctx, authctx.Identity{Email: "a@x.com"}))

	me, err := f.uc.Me(ctx)
	require.NoError(t, err)
	assert.Equal(t, out.User.ID, me.User.ID)
	assert.Equal(t, out.User.CompanyID, me.Company.ID)
	assert.Equal(t, "Acme", me.Company.Name)
}

func TestMe_SinIdentidad_NoAutenticado(t *testing.T) {
	f := newFixture(t)
	_, err := f.uc.Me(context.Background())
	assert.ErrorIs(t, err, domain.ErrUnauthenticated)
}
