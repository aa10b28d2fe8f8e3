package booking

import (
	"fmt"
	"math/rand/v2"
	"regexp"
	"sync"
	"time"
)

// ReferencePrefix starts every booking reference.
const ReferencePrefix = "MV-"

// ReferencePattern matches a booking reference.
var ReferencePattern = regexp.MustCompile(`^MV-\d{6}$`)

// ReferenceGenerator issues booking references. References are random and
// not checked for collisions.
type ReferenceGenerator interface {
	NextReference() string
}

// RandomReferences draws six-digit references from 100000..999999.
type RandomReferences struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewRandomReferences builds a generator. A nil rng is time-seeded.
func NewRandomReferences(rng *rand.Rand) *RandomReferences {
	if rng == nil {
		seed := uint64(time.Now().UnixNano())
		rng = rand.New(rand.NewPCG(seed, ^seed))
	}
	return &RandomReferences{rng: rng}
}

func (g *RandomReferences) NextReference() string {
	g.mu.Lock()
	n := 100000 + g.rng.IntN(900000)
	g.mu.Unlock()
	return fmt.Sprintf("%s%06d", ReferencePrefix, n)
}
