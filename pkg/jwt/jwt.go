package jwt

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Motivos de rechazo. Se distinguen en logs; hacia el cliente todos son "no autenticado".
var (
	ErrMissingToken   = errors.New("jwt: token ausente")
	ErrMalformedToken = errors.New("jwt: token mal formado")
	ErrBadSignature   = errors.New("jwt: firma inválida")
	ErrExpiredToken   = errors.New("jwt: token expirado")
	ErrInvalidToken   = errors.New("jwt: token inválido")
)

// Claims solo lleva el subject (email) y los tiempos estándar. El tenant NO viaja en el
// token: se deriva siempre del usuario almacenado.
type Claims struct {
	jwt.RegisteredClaims
}

// Service emite y valida tokens HS256 con un secreto de proceso. Es seguro para uso
// concurrente: no tiene estado mutable después de construirse.
type Service struct {
	secret []byte
	ttl    time.Duration
	issuer string
	now    func() time.Time
}

// Option personaliza el Service.
type Option func(*Service)

// WithClock reemplaza el reloj (tests de expiración).
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// NewService construye el servicio de tokens.
func NewService(secret string, ttl time.Duration, issuer string, opts ...Option) (*Service, error) {
	if secret == "" {
		return nil, fmt.Errorf("jwt: secret vacío")
	}
	if ttl <= 0 {
		return nil, fmt.Errorf("jwt: vigencia inválida %s", ttl)
	}
	s := &Service{secret: []byte(secret), ttl: ttl, issuer: issuer, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Generate firma un token para el subject indicado y devuelve también su expiración.
func (s *Service) Generate(subject string) (string, time.Time, error) {
	if strings.TrimSpace(subject) == "" {
		return "", time.Time{}, fmt.Errorf("jwt: subject vacío")
	}
	now := s.now()
	exp := now.Add(s.ttl)
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    s.issuer,
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("jwt: firmar token: %w", err)
	}
	return token, exp, nil
}

// Parse valida el token y devuelve sus claims.
// La firma se verifica antes que cualquier claim; luego la expiración; luego el subject.
func (s *Service) Parse(tokenString string) (*Claims, error) {
	if strings.TrimSpace(tokenString) == "" {
		return nil, ErrMissingToken
	}
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithIssuedAt(),
		jwt.WithTimeFunc(s.now),
	)
	token, err := parser.ParseWithClaims(tokenString, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		return s.secret, nil
	})
	if err != nil {
		return nil, classify(err)
	}
	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}
	if s.issuer != "" && claims.Issuer != s.issuer {
		return nil, ErrInvalidToken
	}
	if strings.TrimSpace(claims.Subject) == "" {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// classify traduce los errores de golang-jwt a los motivos propios.
func classify(err error) error {
	switch {
	case errors.Is(err, jwt.ErrTokenMalformed):
		return fmt.Errorf("%w: %v", ErrMalformedToken, err)
	case errors.Is(err, jwt.ErrTokenSignatureInvalid), errors.Is(err, jwt.ErrTokenUnverifiable):
		return fmt.Errorf("%w: %v", ErrBadSignature, err)
	case errors.Is(err, jwt.ErrTokenExpired):
		return fmt.Errorf("%w: %v", ErrExpiredToken, err)
	default:
		return fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
}

// Reason devuelve una etiqueta estable para logs y métricas.
func Reason(err error) string {
	switch {
	case errors.Is(err, ErrMissingToken):
		return "missing_token"
	case errors.Is(err, ErrMalformedToken):
		return "malformed_token"
	case errors.Is(err, ErrBadSignature):
		return "bad_signature"
	case errors.Is(err, ErrExpiredToken):
		return "expired_token"
	default:
		return "invalid_token"
	}
}
