// Package tenancy aísla los datos por empresa. Todo acceso a entidades de una empresa
// pasa por Guard: resolver el tenant del llamador, autorizar lecturas y sellar escrituras.
package tenancy

import (
	"context"
	"fmt"

	"github.com/jhoicas/Clinica-api/internal/application/authctx"
	"github.com/jhoicas/Clinica-api/internal/domain"
	"github.com/jhoicas/Clinica-api/internal/domain/entity"
	"github.com/jhoicas/Clinica-api/internal/domain/repository"
	"github.com/jhoicas/Clinica-api/pkg/logger"
)

// userFinder es el subconjunto del Credential Store que necesita el guard.
type userFinder interface {
	FindByEmail(ctx context.Context, email string) (*entity.User, error)
}

var _ userFinder = (repository.UserRepository)(nil)

// Guard es el único punto de paso para el aislamiento por tenant.
type Guard struct {
	users userFinder
}

// NewGuard construye el guard sobre el repositorio de usuarios.
func NewGuard(users userFinder) *Guard {
	return &Guard{users: users}
}

// CurrentUser devuelve el usuario almacenado de la identidad de la petición.
// Sin identidad, o si el usuario ya no existe, devuelve ErrUnauthenticated.
func (g *Guard) CurrentUser(ctx context.Context) (*entity.User, error) {
	id, ok := authctx.Current(ctx)
	if !ok {
		return nil, domain.ErrUnauthenticated
	}
	user, err := g.users.FindByEmail(ctx, id.Email)
	if err != nil {
		return nil, fmt.Errorf("tenancy: buscar usuario: %w", err)
	}
	if user == nil || user.CompanyID == "" {
		// Token válido cuyo usuario desapareció: estado inconsistente, pero hacia
		// afuera es simplemente "no autenticado".
		logger.FromContext(ctx).Warn().
			Str("reason", "identity_vanished").
			Msg("identidad del token sin usuario almacenado")
		return nil, fmt.Errorf("%w: usuario del token no existe", domain.ErrUnauthenticated)
	}
	return user, nil
}

// ResolveTenant deriva el tenant siempre del usuario almacenado, nunca de un valor
// enviado por el cliente ni de un claim del token.
func (g *Guard) ResolveTenant(ctx context.Context) (string, error) {
	user, err := g.CurrentUser(ctx)
	if err != nil {
		return "", err
	}
	return user.CompanyID, nil
}

// AuthorizeAccess permite el acceso solo si la entidad pertenece a companyID.
// Entidad inexistente (nil) y entidad de otra empresa dan el mismo ErrNotFound.
func (g *Guard) AuthorizeAccess(e entity.TenantOwned, companyID string) error {
	if e == nil || companyID == "" {
		return domain.ErrNotFound
	}
	owner := e.OwnerCompanyID()
	if owner == "" || owner != companyID {
		return domain.ErrNotFound
	}
	return nil
}

// ScopeWrite sella la entidad nueva con el tenant del llamador antes de persistirla y
// devuelve ese tenant. Cualquier company_id previo (p.ej. enviado por el cliente) se descarta.
func (g *Guard) ScopeWrite(ctx context.Context, e entity.TenantOwned) (string, error) {
	companyID, err := g.ResolveTenant(ctx)
	if err != nil {
		return "", err
	}
	e.AssignCompany(companyID)
	return companyID, nil
}
