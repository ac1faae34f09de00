// Package idgen generates the IDs of raised events.
package idgen

import (
	"log"
	"strconv"
	"sync"
	"sync/atomic"

	"github.com/rs/xid"
)

// Generator produces unique identifiers.
type Generator interface {
	Generate() string
}

var (
	defaultMutex        sync.Mutex
	defaultInstantiated bool
	defaultGenerator    Generator
)

// NewSequential returns a generator whose first emitted ID is "1".
func NewSequential() Generator {
	return &sequentialGenerator{}
}

// NewXID returns a generator that emits globally unique xid strings. The IDs
// are not deterministic.
func NewXID() Generator {
	return xidGenerator{}
}

// UseSequential makes the package-level generator sequential. It panics if the
// package-level generator has already been used.
func UseSequential() {
	use(NewSequential())
}

// UseXID makes the package-level generator emit xid strings. It panics if the
// package-level generator has already been used.
func UseXID() {
	use(NewXID())
}

func use(g Generator) {
	defaultMutex.Lock()
	defer defaultMutex.Unlock()

	if defaultInstantiated {
		log.Panic("cannot change id generator type after using it")
	}

	defaultGenerator = g
	defaultInstantiated = true
}

// Default returns the package-level generator. Without a prior call to
// UseSequential or UseXID, it is sequential.
func Default() Generator {
	defaultMutex.Lock()
	defer defaultMutex.Unlock()

	if !defaultInstantiated {
		defaultGenerator = NewSequential()
		defaultInstantiated = true
	}

	return defaultGenerator
}

// Generate returns the next ID of the package-level generator.
func Generate() string {
	return Default().Generate()
}

type sequentialGenerator struct {
	next uint64
}

func (g *sequentialGenerator) Generate() string {
	n := atomic.AddUint64(&g.next, 1)
	return strconv.FormatUint(n, 10)
}

type xidGenerator struct{}

func (xidGenerator) Generate() string {
	return xid.New().String()
}
