package store

import (
	"fmt"
	"sync"

	"github.com/trustedapp/site/internal/pricing"
)

// Listener is notified after every accepted update of a Quick store.
type Listener func(pricing.QuickInput, pricing.Result)

// Quick holds quick-estimator input and recomputes its result inside every
// setter, so Result never needs a derivation step.
type Quick struct {
	mu        sync.RWMutex
	rates     *pricing.Seniority
	input     pricing.QuickInput
	result    pricing.Result
	listeners map[int]Listener
	nextID    int
}

// NewQuick returns a store seeded with pricing.DefaultQuickInput.
func NewQuick(rates *pricing.Seniority) (*Quick, error) {
	in := pricing.DefaultQuickInput()
	result, err := pricing.DeriveQuick(in, rates)
	if err != nil {
		return nil, fmt.Errorf("derive default quick estimate: %w", err)
	}
	return &Quick{
		rates:     rates,
		input:     in,
		result:    result,
		listeners: make(map[int]Listener),
	}, nil
}

// Input returns a copy of the current input.
func (s *Quick) Input() pricing.QuickInput {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return copyQuick(s.input)
}

// Result returns the output cached by the last accepted update.
func (s *Quick) Result() pricing.Result {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.result
}

// Subscribe registers fn for update notifications and returns a func that
// removes it.
func (s *Quick) Subscribe(fn Listener) (cancel func()) {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.listeners[id] = fn
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.listeners, id)
		s.mu.Unlock()
	}
}

// Apply merges p over the current input and recomputes the result. A
// rejected update leaves both input and result unchanged.
func (s *Quick) Apply(p QuickPatch) error {
	return s.update(p.Merge)
}

// Reset restores the default input.
func (s *Quick) Reset() error {
	return s.update(func(pricing.QuickInput) pricing.QuickInput {
		return pricing.DefaultQuickInput()
	})
}

func (s *Quick) update(fn func(pricing.QuickInput) pricing.QuickInput) error {
	s.mu.Lock()
	next := fn(copyQuick(s.input))
	result, err := pricing.DeriveQuick(next, s.rates)
	if err != nil {
		s.mu.Unlock()
		return err
	}
	s.input = next
	s.result = result

	listeners := make([]Listener, 0, len(s.listeners))
	for _, l := range s.listeners {
		listeners = append(listeners, l)
	}
	s.mu.Unlock()

	for _, l := range listeners {
		l(copyQuick(next), result)
	}
	return nil
}

func (s *Quick) SetRole(r pricing.Role) error {
	return s.Apply(QuickPatch{Role: &r})
}

func (s *Quick) SetRarityLevel(level int) error {
	return s.Apply(QuickPatch{RarityLevel: &level})
}

func (s *Quick) SetSessionLength(l pricing.SessionLength) error {
	return s.Apply(QuickPatch{SessionLength: &l})
}

// ToggleAddOn selects or deselects a single add-on.
func (s *Quick) ToggleAddOn(a pricing.AddOn, on bool) error {
	return s.update(func(q pricing.QuickInput) pricing.QuickInput {
		q.AddOns = withAddOn(q.AddOns, a, on)
		return q
	})
}

func (s *Quick) SetRush(on bool) error {
	return s.Apply(QuickPatch{Rush: &on})
}

func (s *Quick) SetStage(st pricing.Stage) error {
	return s.Apply(QuickPatch{Stage: &st})
}

func (s *Quick) SetSessionsPerWeek(n int) error {
	return s.Apply(QuickPatch{SessionsPerWeek: &n})
}

func (s *Quick) SetWeeksPerYear(n int) error {
	return s.Apply(QuickPatch{WeeksPerYear: &n})
}

func (s *Quick) SetRevShare(v float64) error {
	return s.Apply(QuickPatch{RevShare: &v})
}

func (s *Quick) SetFillRate(v float64) error {
	return s.Apply(QuickPatch{FillRate: &v})
}

func copyQuick(q pricing.QuickInput) pricing.QuickInput {
	q.AddOns = append([]pricing.AddOn(nil), q.AddOns...)
	return q
}
