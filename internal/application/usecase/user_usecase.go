package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/Clinica-api/internal/application/auth"
	"github.com/jhoicas/Clinica-api/internal/application/dto"
	"github.com/jhoicas/Clinica-api/internal/application/tenancy"
	"github.com/jhoicas/Clinica-api/internal/domain"
	"github.com/jhoicas/Clinica-api/internal/domain/entity"
	"github.com/jhoicas/Clinica-api/internal/domain/repository"
	"github.com/jhoicas/Clinica-api/pkg/password"
)

// UserUseCase gestiona los miembros del equipo de una empresa (dentistas, recepción, admins).
type UserUseCase struct {
	repo   repository.UserRepository
	hasher auth.PasswordHasher
	guard  *tenancy.Guard
}

// NewUserUseCase construye el caso de uso con el puerto de persistencia.
func NewUserUseCase(repo repository.UserRepository, hasher auth.PasswordHasher, guard *tenancy.Guard) *UserUseCase {
	return &UserUseCase{repo: repo, hasher: hasher, guard: guard}
}

// CreateMember da de alta un usuario en la empresa del llamador. Solo ADMIN.
func (uc *UserUseCase) CreateMember(ctx context.Context, in dto.CreateMemberRequest) (*dto.UserResponse, error) {
	caller, err := uc.guard.CurrentUser(ctx)
	if err != nil {
		return nil, err
	}
	if caller.Role != entity.RoleAdmin {
		return nil, domain.ErrForbidden
	}

	email := entity.NormalizeEmail(in.Email)
	if err := auth.ValidateEmail(email); err != nil {
		return nil, err
	}
	if err := auth.ValidatePassword(in.Password); err != nil {
		return nil, err
	}
	if strings.TrimSpace(in.FirstName) == "" || strings.TrimSpace(in.LastName) == "" {
		return nil, fmt.Errorf("%w: nombre y apellido requeridos", domain.ErrInvalidInput)
	}
	if !entity.ValidRole(in.Role) {
		return nil, fmt.Errorf("%w: rol %q", domain.ErrInvalidInput, in.Role)
	}

	existing, err := uc.repo.FindByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, domain.ErrEmailTaken
	}
	hash, err := uc.hasher.Hash(in.Password)
	if err != nil {
		if errors.Is(err, password.ErrTooLong) {
			return nil, fmt.Errorf("%w: password demasiado larga", domain.ErrInvalidInput)
		}
		return nil, err
	}

	now := time.Now()
	user := &entity.User{
		ID:           uuid.New().String(),
		Email:        email,
		PasswordHash: hash,
		FirstName:    strings.TrimSpace(in.FirstName),
		LastName:     strings.TrimSpace(in.LastName),
		Role:         in.Role,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if in.Role == entity.RoleDentist {
		user.Specialty = strings.TrimSpace(in.Specialty)
	}
	if _, err := uc.guard.ScopeWrite(ctx, user); err != nil {
		return nil, err
	}
	if err := uc.repo.Create(ctx, user); err != nil {
		return nil, err
	}
	return entityToUserResponse(user), nil
}

// ListMembers lista los usuarios de la empresa del llamador.
func (uc *UserUseCase) ListMembers(ctx context.Context, page dto.PageRequest) (*dto.UserListResponse, error) {
	companyID, err := uc.guard.ResolveTenant(ctx)
	if err != nil {
		return nil, err
	}
	page.DefaultPage()
	users, err := uc.repo.ListByCompany(ctx, companyID, page.Limit, page.Offset)
	if err != nil {
		return nil, err
	}
	out := &dto.UserListResponse{
		Items: make([]dto.UserResponse, 0, len(users)),
		Page:  dto.PageResponse{Limit: page.Limit, Offset: page.Offset},
	}
	for _, u := range users {
		if uc.guard.AuthorizeAccess(u, companyID) != nil {
			continue
		}
		out.Items = append(out.Items, *entityToUserResponse(u))
	}
	return out, nil
}

// GetMember obtiene un usuario de la empresa del llamador.
func (uc *UserUseCase) GetMember(ctx context.Context, id string) (*dto.UserResponse, error) {
	companyID, err := uc.guard.ResolveTenant(ctx)
	if err != nil {
		return nil, err
	}
	user, err := uc.repo.GetByID(ctx, companyID, id)
	if err != nil {
		return nil, err
	}
	if err := uc.guard.AuthorizeAccess(user, companyID); err != nil {
		return nil, err
	}
	return entityToUserResponse(user), nil
}

func entityToUserResponse(u *entity.User) *dto.UserResponse {
	if u == nil {
		return nil
	}
	return &dto.UserResponse{
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
