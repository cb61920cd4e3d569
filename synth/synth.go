// Package synth fabricates a plausible signal set from a fixed example pool
// when no live query is available.
package synth

import (
	"errors"
	"math/rand"
	"slices"
	"strings"
	"sync"
	"time"

	"horizon-scanner/models"
)

// DefaultTarget is the number of signals a scan produces.
const DefaultTarget = 20

var (
	ErrEmptyPool     = errors.New("simulation pool is empty")
	ErrInvalidTarget = errors.New("target signal count must be at least 1")
)

// Synthesize selects exactly target signals from pool for params.
//
// A pool entry is preferred when the domain appears in its title, description
// or relevance note, or the geography appears in its case study or evidence.
// When rng is non-nil every other entry is also included with probability 0.5,
// so membership varies between calls unless rng is seeded. Short selections are
// padded with unselected entries in pool order, then by cycling the pool.
// Every output entry gets a fresh id derived from generatedAt and its position.
func Synthesize(params models.SearchParams, pool []models.Signal, target int, rng *rand.Rand, generatedAt time.Time) ([]models.Signal, error) {
	if target < 1 {
		return nil, ErrInvalidTarget
	}
	if len(pool) == 0 {
		return nil, ErrEmptyPool
	}

	domain := strings.ToLower(params.Domain)
	geo := strings.ToLower(params.Geography)

	picked := make([]bool, len(pool))
	selected := make([]int, 0, target)
	for i, s := range pool {
		if matchesDomain(s, domain) || matchesGeography(s, geo) || (rng != nil && rng.Float64() > 0.5) {
			picked[i] = true
			selected = append(selected, i)
		}
	}

	if len(selected) >= target {
		selected = selected[:target]
	} else {
		for i := range pool {
			if len(selected) >= target {
				break
			}
			if !picked[i] {
				picked[i] = true
				selected = append(selected, i)
			}
		}
		for len(selected) < target {
			selected = append(selected, len(selected)%len(pool))
		}
	}

	out := make([]models.Signal, len(selected))
	for idx, poolIdx := range selected {
		s := pool[poolIdx]
		s.Sources = slices.Clone(s.Sources)
		s.ID = models.SignalID(generatedAt, idx)
		out[idx] = s
	}
	return out, nil
}

func matchesDomain(s models.Signal, domain string) bool {
	return strings.Contains(strings.ToLower(s.Title), domain) ||
		strings.Contains(strings.ToLower(s.Description), domain) ||
		strings.Contains(strings.ToLower(s.RelevanceNote), domain)
}

func matchesGeography(s models.Signal, geo string) bool {
	return strings.Contains(strings.ToLower(s.CaseStudy), geo) ||
		strings.Contains(strings.ToLower(s.Evidence), geo)
}

// Synthesizer binds a pool, a target size and a random source.
type Synthesizer struct {
	pool   []models.Signal
	target int
	now    func() time.Time

	mu  sync.Mutex
	rng *rand.Rand
}

type Option func(*Synthesizer)

// WithSeed makes random inclusion reproducible.
func WithSeed(seed int64) Option {
	return func(s *Synthesizer) { s.rng = rand.New(rand.NewSource(seed)) }
}

// WithoutRandomInclusion disables the coin-flip inclusion rule entirely.
func WithoutRandomInclusion() Option {
	return func(s *Synthesizer) { s.rng = nil }
}

func WithClock(now func() time.Time) Option {
	return func(s *Synthesizer) { s.now = now }
}

func New(pool []models.Signal, target int, opts ...Option) *Synthesizer {
	if target == 0 {
		target = DefaultTarget
	}
	s := &Synthesizer{
		pool:   pool,
		target: target,
		now:    time.Now,
		rng:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Synthesizer) Target() int { return s.target }

// Generate runs Synthesize against the bound pool.
func (s *Synthesizer) Generate(params models.SearchParams) ([]models.Signal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Synthesize(params, s.pool, s.target, s.rng, s.now())
}
