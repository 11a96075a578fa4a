package tenancy_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Clinica-api/internal/application/authctx"
	"github.com/jhoicas/Clinica-api/internal/application/tenancy"
	"github.com/jhoicas/Clinica-api/internal/domain"
	"github.com/jhoicas/Clinica-api/internal/domain/entity"
)

type fakeUsers struct {
	byEmail map[string]*entity.User
	err     error
}

func (f *fakeUsers) FindByEmail(_ context.Context, email string) (*entity.User, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.byEmail[email], nil
}

const (
	companyA = "company-a"
	companyB = "company-b"
)

func newGuard() *tenancy.Guard {
	return tenancy.NewGuard(&fakeUsers{byEmail: map[string]*entity.User{
		"a@x.com": {ID: "u1", Email: "a@x.com", CompanyID: companyA},
		"b@y.com": {ID: "u2", Email: "b@y.com", CompanyID: companyB},
	}})
}

func authenticated(t *testing.T, email string) context.Context {
	t.Helper()
	ctx, release := authctx.Begin(context.Background())
	t.Cleanup(release)
	require.NoError(t, authctx.Establish(ctx, authctx.Identity{Email: email}))
	return ctx
}

func TestResolveTenant_DesdeUsuarioAlmacenado(t *testing.T) {
	g := newGuard()

	tenant, err := g.ResolveTenant(authenticated(t, "a@x.com"))
	require.NoError(t, err)
	assert.Equal(t, companyA, tenant)

	tenant, err = g.ResolveTenant(authenticated(t, "b@y.com"))
	require.NoError(t, err)
	assert.Equal(t, companyB, tenant)
}

func TestResolveTenant_SinIdentidad_NoAutenticado(t *testing.T) {
	_, err := newGuard().ResolveTenant(context.Background())
	assert.ErrorIs(t, err, domain.ErrUnauthenticated)
}

func TestResolveTenant_UsuarioDesaparecido_NoAutenticado(t *testing.T) {
	_, err := newGuard().ResolveTenant(authenticated(t, "borrado@x.com"))
	assert.ErrorIs(t, err, domain.ErrUnauthenticated)
}

func TestResolveTenant_ErrorDelStore_SePropaga(t *testing.T) {
	boom := errors.New("db caída")
	g := tenancy.NewGuard(&fakeUsers{err: boom})

	_, err := g.ResolveTenant(authenticated(t, "a@x.com"))
	assert.ErrorIs(t, err, boom)
	assert.NotErrorIs(t, err, domain.ErrUnauthenticated)
}

func TestAuthorizeAccess(t *testing.T) {
	g := newGuard()
	var missing *entity.Patient

	tests := []struct {
		name    string
		e       entity.TenantOwned
		tenant  string
		wantErr error
	}{
		{"misma empresa", &entity.Patient{CompanyID: companyA}, companyA, nil},
		{"otra empresa", &entity.Patient{CompanyID: companyB}, companyA, domain.ErrNotFound},
		{"no existe (nil tipado)", missing, companyA, domain.ErrNotFound},
		{"no existe (nil)", nil, companyA, domain.ErrNotFound},
		{"entidad sin empresa", &entity.Invoice{}, companyA, domain.ErrNotFound},
		{"tenant vacío", &entity.Invoice{}, "", domain.ErrNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := g.AuthorizeAccess(tt.e, tt.tenant)
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
			assert.NotErrorIs(t, err, domain.ErrForbidden, "nunca se confirma la existencia")
		})
	}
}

func TestScopeWrite_SellaConTenantDelLlamador(t *testing.T) {
	g := newGuard()
	p := &entity.Patient{CompanyID: companyB} // valor enviado por el cliente

	tenant, err := g.ScopeWrite(authenticated(t, "a@x.com"), p)
	require.NoError(t, err)
	assert.Equal(t, companyA, tenant)
	assert.Equal(t, companyA, p.CompanyID)
}

func TestScopeWrite_SinIdentidad_NoSella(t *testing.T) {
	p := &entity.Patient{}
	_, err := newGuard().ScopeWrite(context.Background(), p)
	assert.ErrorIs(t, err, domain.ErrUnauthenticated)
	assert.Empty(t, p.CompanyID)
}
