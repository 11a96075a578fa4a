package password_test

import (
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/jhoicas/Clinica-api/pkg/password"
)

func TestHashVerify(t *testing.T) {
	h := password.NewHasher(bcrypt.MinCost)

	hash, err := h.Hash("pw1-secreta")
	require.NoError(t, err)
	assert.NotContains(t, hash, "pw1-secreta")

	assert.True(t, h.Verify("pw1-secreta", hash))
	assert.False(t, h.Verify("pw1-secretA", hash))
	assert.False(t, h.Verify("", hash))
}

func TestHash_ConSalt_NoDeterminista(t *testing.T) {
	h := password.NewHasher(bcrypt.MinCost)

	a, err := h.Hash("misma")
	require.NoError(t, err)
	b, err := h.Hash("misma")
	require.NoError(t, err)

	assert.NotEqual(t, a, b)
	assert.True(t, h.Verify("misma", a))
	assert.True(t, h.Verify("misma", b))
}

func TestVerify_HashCorrupto_FallaCerrado(t *testing.T) {
	h := password.NewHasher(bcrypt.MinCost)

	for _, stored := range []string{"", "no-es-bcrypt", "$2a$04$corto", "$2a$99$" + strings.Repeat("x", 53)} {
		assert.False(t, h.Verify("cualquiera", stored), "hash %q", stored)
	}
}

func TestHash_DemasiadoLarga(t *testing.T) {
	h := password.NewHasher(bcrypt.MinCost)
	_, err := h.Hash(strings.Repeat("a", password.MaxLength+1))
	assert.ErrorIs(t, err, password.ErrTooLong)
}

func TestNewHasher_CostoFueraDeRango(t *testing.T) {
	h := password.NewHasher(0)
	hash, err := h.Hash("x")
	require.NoError(t, err)

	cost, err := bcrypt.Cost([]byte(hash))
	require.NoError(t, err)
	assert.Equal(t, bcrypt.DefaultCost, cost)
}

func TestDecoyHash_ValidoYNoCoincide(t *testing.T) {
	h := password.NewHasher(bcrypt.MinCost)

	var wg sync.WaitGroup
	hashes := make([]string, 8)
	for i := range hashes {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			hashes[i] = h.DecoyHash()
		}(i)
	}
	wg.Wait()

	require.NotEmpty(t, hashes[0])
	for _, hs := range hashes {
		assert.Equal(t, hashes[0], hs, "el señuelo se calcula una sola vez")
	}
	assert.False(t, h.Verify("pw1", hashes[0]))
}
