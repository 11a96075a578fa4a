// Package password hashea y verifica contraseñas con bcrypt (salt por hash, costo configurable).
package password

import (
	"errors"
	"fmt"
	"sync"

	"golang.org/x/crypto/bcrypt"
)

// MaxLength es el límite de bcrypt en bytes; por encima se rechaza en vez de truncar.
const MaxLength = 72

// ErrTooLong contraseña por encima de MaxLength bytes.
var ErrTooLong = errors.New("password: supera 72 bytes")

// Hasher es seguro para uso concurrente.
type Hasher struct {
	cost int

	decoyOnce sync.Once
	decoy     string
}

// NewHasher construye el hasher. cost fuera de rango usa bcrypt.DefaultCost.
func NewHasher(cost int) *Hasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return &Hasher{cost: cost}
}

// Hash genera un hash bcrypt con salt aleatorio: dos llamadas con la misma entrada difieren.
func (h *Hasher) Hash(plain string) (string, error) {
	if len(plain) > MaxLength {
		return "", ErrTooLong
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(plain), h.cost)
	if err != nil {
		return "", fmt.Errorf("password: generar hash: %w", err)
	}
	return string(hash), nil
}

// Verify compara en tiempo constante. Un hash almacenado corrupto cuenta como no coincidencia.
func (h *Hasher) Verify(plain, hash string) bool {
	if hash == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain)) == nil
}

// DecoyHash devuelve un hash válido con el mismo costo, para comparar cuando el email no
// existe y que el tiempo de respuesta no delate la ausencia del usuario.
func (h *Hasher) DecoyHash() string {
	h.decoyOnce.Do(func() {
		hash, err := bcrypt.GenerateFromPassword([]byte("decoy-password-never-matches"), h.cost)
		if err == nil {
			h.decoy = string(hash)
		}
	})
	return h.decoy
}
