package repository

import (
	"context"

	"github.com/jhoicas/Clinica-api/internal/domain/entity"
)

// UserRepository define el puerto de persistencia para User (Credential Store).
// Los métodos de búsqueda devuelven (nil, nil) cuando no hay fila.
type UserRepository interface {
	// Create devuelve domain.ErrEmailTaken si el email (normalizado) ya existe.
	Create(ctx context.Context, user *entity.User) error
	// FindByEmail busca sin distinguir mayúsculas; email ya normalizado.
	FindByEmail(ctx context.Context, email string) (*entity.User, error)
	GetByID(ctx context.Context, companyID, id string) (*entity.User, error)
	ListByCompany(ctx context.Context, companyID string, limit, offset int) ([]*entity.User, error)
}
