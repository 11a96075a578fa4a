package http_test

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Clinica-api/internal/application/authctx"
	apphttp "github.com/jhoicas/Clinica-api/internal/interfaces/http"
	pkgjwt "github.com/jhoicas/Clinica-api/pkg/jwt"
)

// ──────────────────────────────────────────────────────────────────────────────
// Helpers de test
// ──────────────────────────────────────────────────────────────────────────────

const (
	testJWTSecret = "test-secret-key-for-unit-tests"
	testIssuer    = "clinica-api-test"
)

func newTokens(t *testing.T, opts ...pkgjwt.Option) *pkgjwt.Service {
	t.Helper()
	svc, err := pkgjwt.NewService(testJWTSecret, time.Hour, testIssuer, opts...)
	require.NoError(t, err)
	return svc
}

func bearer(t *testing.T, svc *pkgjwt.Service, subject string) string {
	t.Helper()
	tok, _, err := svc.Generate(subject)
	require.NoError(t, err, "debe generarse un token JWT válido")
	return "Bearer " + tok
}

// buildTestApp monta AuthMiddleware y un handler que devuelve la identidad vista.
// captured recibe el contexto de cada petición para comprobar su limpieza.
func buildTestApp(t *testing.T, mw ...fiber.Handler) (*fiber.App, *capture) {
	t.Helper()
	cp := &capture{}
	app := fiber.New(fiber.Config{ErrorHandler: apphttp.ErrorHandler})
	handlers := append(mw, func(c *fiber.Ctx) error {
		cp.set(c.UserContext())
		id, ok := authctx.Current(c.UserContext())
		if !ok {
			return c.Status(fiber.StatusTeapot).SendString("sin identidad")
		}
		return c.SendString(id.Email)
	})
	app.Get("/protected", handlers...)
	return app, cp
}

type capture struct {
	mu  sync.Mutex
	ctx context.Context
}

func (c *capture) set(ctx context.Context) {
	c.mu.Lock()
	c.ctx = ctx
	c.mu.Unlock()
}

func (c *capture) get() context.Context {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ctx
}

func doRequest(t *testing.T, app *fiber.App, authHeader string) (int, string) {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, string(body)
}

// ──────────────────────────────────────────────────────────────────────────────
// Rechazos
// ──────────────────────────────────────────────────────────────────────────────

// Todos los motivos de rechazo producen exactamente la misma respuesta.
func TestAuthMiddleware_RechazosIndistinguibles(t *testing.T) {
	svc := newTokens(t)
	app, _ := buildTestApp(t, apphttp.AuthMiddleware(svc))

	otherSecret, err := pkgjwt.NewService("otro-secreto", time.Hour, testIssuer)
	require.NoError(t, err)
	past := time.Now().Add(-3 * time.Hour)
	expiredIssuer := newTokens(t, pkgjwt.WithClock(func() time.Time { return past }))

	cases := map[string]string{
		"sin header":         "",
		"esquema incorrecto": "Basic dXNlcjpwYXNz",
		"bearer vacío":       "Bearer ",
		"mal formado":        "Bearer no.es.jwt",
		"firma de otro":      bearer(t, otherSecret, "a@x.com"),
		"expirado":           bearer(t, expiredIssuer, "a@x.com"),
	}

	var reference string
	for name, header := range cases {
		t.Run(name, func(t *testing.T) {
			status, body := doRequest(t, app, header)
			assert.Equal(t, fiber.StatusUnauthorized, status)
			assert.JSONEq(t, `{"code":"UNAUTHENTICATED","message":"no autenticado"}`, body)
			if reference == "" {
				reference = body
			}
			assert.Equal(t, reference, body, "el cuerpo no revela el motivo")
		})
	}
}

// ──────────────────────────────────────────────────────────────────────────────
// Token válido
// ──────────────────────────────────────────────────────────────────────────────

func TestAuthMiddleware_TokenValido_EstableceIdentidad(t *testing.T) {
	svc := newTokens(t)
	app, _ := buildTestApp(t, apphttp.AuthMiddleware(svc))

	status, body := doRequest(t, app, bearer(t, svc, "A@X.com"))
	assert.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, "a@x.com", body, "el subject se normaliza")
}

func TestAuthMiddleware_EsquemaSinDistinguirMayusculas(t *testing.T) {
	svc := newTokens(t)
	app, _ := buildTestApp(t, apphttp.AuthMiddleware(svc))

	tok, _, err := svc.Generate("a@x.com")
	require.NoError(t, err)
	status, _ := doRequest(t, app, "bearer "+tok)
	assert.Equal(t, fiber.StatusOK, status)
}

// Montar el middleware dos veces en la misma cadena es un error de programación.
func TestAuthMiddleware_DobleEstablecimiento_Error500(t *testing.T) {
	svc := newTokens(t)
	mw := apphttp.AuthMiddleware(svc)
	app, _ := buildTestApp(t, mw, mw)

	status, body := doRequest(t, app, bearer(t, svc, "a@x.com"))
	assert.Equal(t, fiber.StatusInternalServerError, status)
	assert.Contains(t, body, "INTERNAL")
}

// Tras la respuesta el ámbito queda liberado: ninguna identidad sobrevive a su petición.
func TestAuthMiddleware_SinIdentidadResidual(t *testing.T) {
	svc := newTokens(t)
	app, cp := buildTestApp(t, apphttp.AuthMiddleware(svc))

	status, _ := doRequest(t, app, bearer(t, svc, "a@x.com"))
	require.Equal(t, fiber.StatusOK, status)

	_, ok := authctx.Current(cp.get())
	assert.False(t, ok)

	// La siguiente petición sin token no ve la identidad anterior (fiber reutiliza el Ctx).
	open := fiber.New()
	open.Get("/protected", func(c *fiber.Ctx) error {
		if _, ok := authctx.Current(c.UserContext()); ok {
			return c.SendStatus(fiber.StatusTeapot)
		}
		return c.SendStatus(fiber.StatusOK)
	})
	status, _ = doRequest(t, open, "")
	assert.Equal(t, fiber.StatusOK, status)
}

func TestAuthMiddleware_PeticionesConcurrentes(t *testing.T) {
	svc := newTokens(t)
	app, _ := buildTestApp(t, apphttp.AuthMiddleware(svc))

	const n = 40
	headers := make([]string, n)
	for i := range headers {
		headers[i] = bearer(t, svc, fmt.Sprintf("user%d@x.com", i))
	}

	var wg sync.WaitGroup
	errs := make(chan error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			req := httptest.NewRequest(http.MethodGet, "/protected", nil)
			req.Header.Set("Authorization", headers[i])
			resp, err := app.Test(req, -1)
			if err != nil {
				errs <- err
				return
			}
			defer resp.Body.Close()
			body, _ := io.ReadAll(resp.Body)
			if want := fmt.Sprintf("user%d@x.com", i); string(body) != want {
				errs <- fmt.Errorf("petición %d vio %q", i, body)
			}
		}(i)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Error(err)
	}
}
