package entity

import (
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Roles válidos para User. Un único registro de identidad con etiqueta de rol
// en vez de subtipos (el dentista es un User con RoleDentist).
const (
	RoleAdmin        = "ADMIN"
	RoleDentist      = "DENTIST"
	RoleReceptionist = "RECEPTIONIST"
)

// ValidRole informa si el rol es uno de los soportados.
func ValidRole(role string) bool {
	switch role {
	case RoleAdmin, RoleDentist, RoleReceptionist:
		return true
	}
	return false
}

// User representa un usuario del sistema (pertenece a una Company de por vida).
type User struct {
	ID           string
	CompanyID    string
	Email        string // normalizado con NormalizeEmail; único global
	PasswordHash string // bcrypt hash, nunca plano en dominio después de persistir
	FirstName    string
	LastName     string
	Role         string
	Specialty    string // solo dentistas
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// DisplayName nombre para mostrar.
func (u *User) DisplayName() string {
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}

// NormalizeEmail recorta espacios y pasa a minúsculas (Unicode) para búsqueda y unicidad.
func NormalizeEmail(email string) string {
	return cases.Lower(language.Und).String(strings.TrimSpace(email))
}
