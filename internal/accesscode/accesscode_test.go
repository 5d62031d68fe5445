package accesscode

import (
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerator_Format(t *testing.T) {
	g := NewGenerator("hst")
	code := g.Next()

	parts := strings.Split(code, "-")
	require.Len(t, parts, 3)
	assert.Equal(t, "HST", parts[0])
	assert.NotEmpty(t, parts[1])
	assert.Len(t, parts[2], 8)
	assert.Equal(t, strings.ToUpper(code), code)
}

func TestGenerator_DefaultPrefix(t *testing.T) {
	assert.True(t, strings.HasPrefix(NewGenerator("").Next(), "HST-"))
}

func TestGenerator_MonotonicWithFrozenClock(t *testing.T) {
	g := NewGenerator("HST")
	frozen := time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC)
	g.now = func() time.Time { return frozen }

	first := strings.Split(g.Next(), "-")[1]
	second := strings.Split(g.Next(), "-")[1]
	assert.NotEqual(t, first, second)
}

func TestGenerator_UniqueUnderConcurrency(t *testing.T) {
	g := NewGenerator("HST")

	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		seen = make(map[string]struct{})
	)
	for i := 0; i < 200; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			code := g.Next()
			mu.Lock()
			seen[code] = struct{}{}
			mu.Unlock()
		}()
	}
	wg.Wait()

	assert.Len(t, seen, 200)
}
