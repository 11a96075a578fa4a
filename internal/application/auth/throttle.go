package auth

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/jhoicas/Clinica-api/internal/infrastructure/cache"
	"github.com/jhoicas/Clinica-api/pkg/logger"
)

const throttleNamespace = "login:fail"

// LoginThrottle limita los logins fallidos por email dentro de una ventana fija.
// Si el cache falla, deja pasar (fail open) y lo registra.
type LoginThrottle struct {
	counter     Counter
	maxFailures int64
	window      time.Duration
}

// NewLoginThrottle construye el limitador. counter nil deshabilita el límite.
func NewLoginThrottle(counter Counter, maxFailures int, window time.Duration) *LoginThrottle {
	return &LoginThrottle{counter: counter, maxFailures: int64(maxFailures), window: window}
}

// Blocked informa si el email agotó sus intentos en la ventana actual.
func (t *LoginThrottle) Blocked(ctx context.Context, email string) bool {
	if t == nil || t.counter == nil {
		return false
	}
	raw, err := t.counter.Get(ctx, cache.Key(throttleNamespace, email))
	if errors.Is(err, cache.ErrCacheMiss) {
		return false
	}
	if err != nil {
		logger.FromContext(ctx).Warn().Err(err).Msg("throttle: lectura del cache falló, se permite el intento")
		return false
	}
	n, err := strconv.ParseInt(string(raw), 10, 64)
	if err != nil {
		return false
	}
	return n >= t.maxFailures
}

// Fail registra un intento fallido.
func (t *LoginThrottle) Fail(ctx context.Context, email string) {
	if t == nil || t.counter == nil {
		return
	}
	if _, err := t.counter.Incr(ctx, cache.Key(throttleNamespace, email), t.window); err != nil {
		logger.FromContext(ctx).Warn().Err(err).Msg("throttle: no se pudo registrar el fallo")
	}
}

// Reset borra el contador tras un login exitoso.
func (t *LoginThrottle) Reset(ctx context.Context, email string) {
	if t == nil || t.counter == nil {
		return
	}
	if err := t.counter.Delete(ctx, cache.Key(throttleNamespace, email)); err != nil {
		logger.FromContext(ctx).Warn().Err(err).Msg("throttle: no se pudo limpiar el contador")
	}
}
