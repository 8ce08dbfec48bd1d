package session

import (
	"log/slog"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRegistry() *Registry {
	return NewRegistry(slog.New(slog.DiscardHandler))
}

func TestCreateGeneratesUnguessableID(t *testing.T) {
	r := newTestRegistry()

	a := r.Create("")
	b := r.Create("")
	require.NotEmpty(t, a.ID)
	assert.NotEqual(t, a.ID, b.ID)
	assert.Equal(t, StatusActive, a.Status)
	assert.False(t, a.CreatedAt.IsZero())
}

func TestCreateIsIdempotentPerID(t *testing.T) {
	r := newTestRegistry()

	a := r.Create("sess-1")
	b := r.Create("sess-1")
	assert.Same(t, a, b)
	assert.Equal(t, 1, r.Len())
}

func TestResolveKnownAndUnknown(t *testing.T) {
	r := newTestRegistry()
	s := r.Create("")

	got, ok := r.Resolve(s.ID)
	require.True(t, ok)
	assert.Same(t, s, got)

	_, ok = r.Resolve("no-such-token")
	assert.False(t, ok)
}

func TestDisposeIsIdempotentAndClosesSession(t *testing.T) {
	r := newTestRegistry()
	s := r.Create("")

	r.Dispose(s.ID)
	r.Dispose(s.ID)
	r.Dispose("never-existed")

	assert.Equal(t, StatusClosed, s.Status)
	_, ok := r.Resolve(s.ID)
	assert.False(t, ok, "a closed session must not resolve")
	assert.Equal(t, 0, r.Len())
}

func TestRegistryConcurrentCreateDispose(t *testing.T) {
	r := newTestRegistry()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s := r.Create("")
			_, ok := r.Resolve(s.ID)
			assert.True(t, ok)
			r.Dispose(s.ID)
		}()
	}
	wg.Wait()

	assert.Equal(t, 0, r.Len())
}
