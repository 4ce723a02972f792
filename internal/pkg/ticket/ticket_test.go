package ticket

import (
	"bytes"
	"math/rand"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNext_Format(t *testing.T) {
	g := NewGenerator()
	for i := 0; i < 200; i++ {
		id, err := g.Next()
		require.NoError(t, err)
		assert.True(t, Valid(id), "bad ticket id %q", id)
	}
}

func TestNext_ZeroPadsShortSuffix(t *testing.T) {
	// all-zero randomness yields the smallest suffix
	g := NewGeneratorFromSource(bytes.NewReader(make([]byte, 64)))
	id, err := g.Next()
	require.NoError(t, err)
	assert.Equal(t, "TICKET-000000000", id)
}

func TestNext_SameSeedSameSequence(t *testing.T) {
	a := NewGeneratorFromSource(rand.New(rand.NewSource(42)))
	b := NewGeneratorFromSource(rand.New(rand.NewSource(42)))
	for i := 0; i < 5; i++ {
		x, err := a.Next()
		require.NoError(t, err)
		y, err := b.Next()
		require.NoError(t, err)
		assert.Equal(t, x, y)
	}
}

func TestNext_ExhaustedSource(t *testing.T) {
	g := NewGeneratorFromSource(bytes.NewReader(nil))
	_, err := g.Next()
	assert.Error(t, err)
}

func TestNext_ConcurrentUse(t *testing.T) {
	g := NewGeneratorFromSource(rand.New(rand.NewSource(7)))
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			id, err := g.Next()
			assert.NoError(t, err)
			assert.True(t, Valid(id))
		}()
	}
	wg.Wait()
}

func TestTransactionID(t *testing.T) {
	assert.Equal(t, "TXN-DEF123", TransactionID("TICKET-ABCDEF123"))
	assert.Equal(t, "TXN-ABC", TransactionID("ABC"))
}

func TestValid(t *testing.T) {
	assert.True(t, Valid("TICKET-0A1B2C3D4"))
	assert.False(t, Valid("TICKET-0a1b2c3d4"))
	assert.False(t, Valid("TICKET-0A1B2C3D"))
	assert.False(t, Valid("TKT-0A1B2C3D4"))
}
