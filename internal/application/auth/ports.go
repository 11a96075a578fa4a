package auth

import (
	"context"
	"time"

	"github.com/jhoicas/Clinica-api/internal/domain/repository"
)

// PasswordHasher hashea y verifica contraseñas (implementación: pkg/password).
type PasswordHasher interface {
	Hash(plain string) (string, error)
	Verify(plain, hash string) bool
	// DecoyHash hash válido que no corresponde a ninguna contraseña; se compara contra él
	// cuando el email no existe para igualar el tiempo de respuesta.
	DecoyHash() string
}

// TokenIssuer emite tokens para un subject (implementación: pkg/jwt).
type TokenIssuer interface {
	Generate(subject string) (string, time.Time, error)
}

// TxRunner ejecuta fn dentro de una transacción: commit si fn devuelve nil, rollback si no.
type TxRunner interface {
	RunAuth(ctx context.Context, fn func(companies repository.CompanyRepository, users repository.UserRepository) error) error
}

// Counter contador con ventana fija (implementación: infrastructure/cache).
type Counter interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Incr(ctx context.Context, key string, ttl time.Duration) (int64, error)
	Delete(ctx context.Context, key string) error
}
