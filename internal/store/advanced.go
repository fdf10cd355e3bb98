// Package store holds calculator input state and keeps derived results in
// step with it. Stores are constructed per page session and passed to their
// consumers; there is no package-level instance.
package store

import (
	"sync"

	"github.com/trustedapp/site/internal/pricing"
)

// Advanced holds raw advanced-calculator input. Results are derived on every
// read rather than cached.
type Advanced struct {
	mu    sync.RWMutex
	rates pricing.RateSource
	input pricing.Input
}

// NewAdvanced returns a store seeded with pricing.DefaultInput.
func NewAdvanced(rates pricing.RateSource) *Advanced {
	return &Advanced{rates: rates, input: pricing.DefaultInput()}
}

// Input returns a copy of the current input.
func (s *Advanced) Input() pricing.Input {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return copyInput(s.input)
}

// Results derives the output of the current input.
func (s *Advanced) Results() (pricing.Result, error) {
	return pricing.Derive(s.Input(), s.rates)
}

// Apply merges p over the current input. An update that would produce an
// input outside its domain is rejected and leaves the store unchanged.
func (s *Advanced) Apply(p Patch) error {
	return s.update(p.Merge)
}

// Reset restores the default input.
func (s *Advanced) Reset() {
	s.mu.Lock()
	s.input = pricing.DefaultInput()
	s.mu.Unlock()
}

func (s *Advanced) update(fn func(pricing.Input) pricing.Input) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := fn(copyInput(s.input))
	if _, err := pricing.Derive(next, s.rates); err != nil {
		return err
	}
	s.input = next
	return nil
}

func (s *Advanced) SetContentType(c pricing.ContentType) error {
	return s.Apply(Patch{ContentType: &c})
}

func (s *Advanced) SetRole(r pricing.Role) error {
	return s.Apply(Patch{Role: &r})
}

func (s *Advanced) SetRarity(r pricing.Rarity) error {
	return s.Apply(Patch{Rarity: &r})
}

func (s *Advanced) SetSessionLength(l pricing.SessionLength) error {
	return s.Apply(Patch{SessionLength: &l})
}

// ToggleAddOn selects or deselects a single add-on.
func (s *Advanced) ToggleAddOn(a pricing.AddOn, on bool) error {
	return s.update(func(in pricing.Input) pricing.Input {
		in.AddOns = withAddOn(in.AddOns, a, on)
		return in
	})
}

func (s *Advanced) SetRush(on bool) error {
	return s.Apply(Patch{Rush: &on})
}

func (s *Advanced) SetStage(st pricing.Stage) error {
	return s.Apply(Patch{Stage: &st})
}

func (s *Advanced) SetSessionsPerWeek(n int) error {
	return s.Apply(Patch{SessionsPerWeek: &n})
}

func (s *Advanced) SetWeeksPerYear(n int) error {
	return s.Apply(Patch{WeeksPerYear: &n})
}

func (s *Advanced) SetRevShare(v float64) error {
	return s.Apply(Patch{RevShare: &v})
}

func (s *Advanced) SetFillRate(v float64) error {
	return s.Apply(Patch{FillRate: &v})
}

func (s *Advanced) SetAllowShare(on bool) error {
	return s.Apply(Patch{AllowShare: &on})
}

func (s *Advanced) SetShareRevPct(v float64) error {
	return s.Apply(Patch{ShareRevPct: &v})
}

func (s *Advanced) SetConversionsPerMonth(n int) error {
	return s.Apply(Patch{ConversionsPerMonth: &n})
}

func (s *Advanced) SetAvgDealSize(v float64) error {
	return s.Apply(Patch{AvgDealSize: &v})
}

func copyInput(in pricing.Input) pricing.Input {
	in.AddOns = append([]pricing.AddOn(nil), in.AddOns...)
	return in
}
