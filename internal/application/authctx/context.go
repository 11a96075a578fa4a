// Package authctx mantiene la identidad autenticada durante una única petición.
//
// Cada petición abre su propio ámbito con Begin; la identidad vive en ese ámbito,
// que viaja en el context.Context de la petición. No existe estado global: dos
// peticiones concurrentes tienen ámbitos distintos y no pueden verse entre sí.
//
//	ctx, release := authctx.Begin(parent)
//	defer release()
//	if err := authctx.Establish(ctx, identity); err != nil { ... }
//	id, ok := authctx.Current(ctx)
package authctx

import (
	"context"
	"fmt"
	"sync"

	"github.com/jhoicas/Clinica-api/internal/domain"
)

// Identity principal autenticado resuelto desde el token.
type Identity struct {
	Email string // subject del token (normalizado)
}

type scopeKey struct{}

// scope contenedor por petición. El mutex protege contra goroutines hijas de la
// misma petición, no contra otras peticiones (esas tienen su propio scope).
type scope struct {
	mu          sync.Mutex
	identity    Identity
	established bool
	released    bool
}

// Begin abre el ámbito de autenticación de una petición. release limpia la identidad
// y debe ejecutarse en todo camino de salida (usar defer).
func Begin(parent context.Context) (ctx context.Context, release func()) {
	s := &scope{}
	var once sync.Once
	return context.WithValue(parent, scopeKey{}, s), func() {
		once.Do(s.clear)
	}
}

// Establish fija la identidad una única vez por petición. Llamarlo dos veces, sin
// ámbito, o después de liberar es un error de programación: ErrInconsistentState.
func Establish(ctx context.Context, id Identity) error {
	s, ok := ctx.Value(scopeKey{}).(*scope)
	if !ok {
		return fmt.Errorf("%w: establish sin ámbito de petición", domain.ErrInconsistentState)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.released {
		return fmt.Errorf("%w: establish después de liberar el ámbito", domain.ErrInconsistentState)
	}
	if s.established {
		return fmt.Errorf("%w: identidad establecida dos veces en la misma petición", domain.ErrInconsistentState)
	}
	s.identity = id
	s.established = true
	return nil
}

// Current devuelve la identidad de la petición, o false si no hubo autenticación o
// el ámbito ya fue liberado.
func Current(ctx context.Context) (Identity, bool) {
	s, ok := ctx.Value(scopeKey{}).(*scope)
	if !ok {
		return Identity{}, false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.established || s.released {
		return Identity{}, false
	}
	return s.identity, true
}

// Active informa si ctx ya tiene un ámbito abierto (no liberado).
func Active(ctx context.Context) bool {
	s, ok := ctx.Value(scopeKey{}).(*scope)
	if !ok {
		return false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return !s.released
}

func (s *scope) clear() {
	s.mu.Lock()
	s.identity = Identity{}
	s.established = false
	s.released = true
	s.mu.Unlock()
}
