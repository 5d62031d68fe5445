// Package accesscode issues the room access codes handed out on final approval.
package accesscode

import (
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Generator produces PREFIX-<time>-<random> codes. The time component is
// strictly increasing per generator even when the clock stalls or repeats.
type Generator struct {
	prefix string
	now    func() time.Time

	mu   sync.Mutex
	last int64
}

func NewGenerator(prefix string) *Generator {
	if prefix == "" {
		prefix = "HST"
	}
	return &Generator{prefix: strings.ToUpper(prefix), now: time.Now}
}

func (g *Generator) Next() string {
	g.mu.Lock()
	tick := g.now().UnixNano()
	if tick <= g.last {
		tick = g.last + 1
	}
	g.last = tick
	g.mu.Unlock()

	random := strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
	return g.prefix + "-" + strings.ToUpper(strconv.FormatInt(tick, 36)) + "-" + strings.ToUpper(random)
}
