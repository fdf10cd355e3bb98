package store

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trustedapp/site/internal/pricing"
)

func newAdvanced() *Advanced {
	return NewAdvanced(pricing.DefaultTables().Matrix())
}

func newQuick(t *testing.T) *Quick {
	t.Helper()
	s, err := NewQuick(pricing.DefaultTables().Seniority())
	require.NoError(t, err)
	return s
}

func TestAdvanced_DefaultsDeriveBaselineScenario(t *testing.T) {
	s := newAdvanced()

	result, err := s.Results()
	require.NoError(t, err)
	assert.InDelta(t, 150, result.Breakdown.GrossPerSession, 1e-9)
	assert.InDelta(t, 9792, result.Totals.AnnualNet, 1e-9)
}

func TestAdvanced_SetterRecomputesOnRead(t *testing.T) {
	s := newAdvanced()

	require.NoError(t, s.SetStage(pricing.Enterprise))
	result, err := s.Results()
	require.NoError(t, err)
	assert.InDelta(t, 195, result.Breakdown.GrossPerSession, 1e-9)

	require.NoError(t, s.SetRush(true))
	result, err = s.Results()
	require.NoError(t, err)
	assert.InDelta(t, 195+22.5, result.Breakdown.GrossPerSession, 1e-9)
}

func TestAdvanced_RejectedUpdateLeavesStateUnchanged(t *testing.T) {
	s := newAdvanced()
	require.NoError(t, s.SetSessionsPerWeek(5))
	before := s.Input()

	err := s.SetSessionLength(50)
	require.ErrorIs(t, err, pricing.ErrDomain)
	assert.Equal(t, before, s.Input())

	err = s.Apply(Patch{SessionsPerWeek: ptr(7), FillRate: ptr(0.0)})
	require.ErrorIs(t, err, pricing.ErrDomain)
	assert.Equal(t, 5, s.Input().SessionsPerWeek)
}

func TestAdvanced_PatchMergesOnlyProvidedFields(t *testing.T) {
	s := newAdvanced()

	role := pricing.Director
	require.NoError(t, s.Apply(Patch{Role: &role, WeeksPerYear: ptr(40)}))

	in := s.Input()
	assert.Equal(t, pricing.Director, in.Role)
	assert.Equal(t, 40, in.WeeksPerYear)
	assert.Equal(t, pricing.DiscoveryCall, in.ContentType)
	assert.Equal(t, 2, in.SessionsPerWeek)
}

func TestAdvanced_ToggleAddOnKeepsCanonicalOrder(t *testing.T) {
	s := newAdvanced()

	require.NoError(t, s.ToggleAddOn(pricing.FollowUp, true))
	require.NoError(t, s.ToggleAddOn(pricing.Transcript, true))
	require.NoError(t, s.ToggleAddOn(pricing.Transcript, true))
	assert.Equal(t, []pricing.AddOn{pricing.Transcript, pricing.FollowUp}, s.Input().AddOns)

	require.NoError(t, s.ToggleAddOn(pricing.FollowUp, false))
	assert.Equal(t, []pricing.AddOn{pricing.Transcript}, s.Input().AddOns)

	assert.ErrorIs(t, s.ToggleAddOn("slides", true), pricing.ErrDomain)
	assert.Equal(t, []pricing.AddOn{pricing.Transcript}, s.Input().AddOns)
}

func TestAdvanced_SharingAndReset(t *testing.T) {
	s := newAdvanced()

	require.NoError(t, s.SetAllowShare(true))
	require.NoError(t, s.SetShareRevPct(0.05))
	require.NoError(t, s.SetConversionsPerMonth(2))
	require.NoError(t, s.SetAvgDealSize(2000))

	result, err := s.Results()
	require.NoError(t, err)
	assert.InDelta(t, 2040, result.Totals.RecurringNet, 1e-9)

	s.Reset()
	assert.Equal(t, pricing.DefaultInput(), s.Input())
}

func TestAdvanced_InputIsACopy(t *testing.T) {
	s := newAdvanced()
	require.NoError(t, s.ToggleAddOn(pricing.Memo, true))

	in := s.Input()
	in.AddOns[0] = "mutated"

	assert.Equal(t, []pricing.AddOn{pricing.Memo}, s.Input().AddOns)
}

func TestQuick_SetterPushesResult(t *testing.T) {
	s := newQuick(t)
	initial := s.Result()

	require.NoError(t, s.SetRole(pricing.CSuite))
	after := s.Result()

	assert.Greater(t, after.Breakdown.BaseRate, initial.Breakdown.BaseRate)

	want, err := pricing.DeriveQuick(s.Input(), pricing.DefaultTables().Seniority())
	require.NoError(t, err)
	assert.Equal(t, want, after)
}

func TestQuick_RejectedUpdateKeepsCachedResult(t *testing.T) {
	s := newQuick(t)
	before := s.Result()

	assert.ErrorIs(t, s.SetRarityLevel(9), pricing.ErrDomain)
	assert.ErrorIs(t, s.SetWeeksPerYear(53), pricing.ErrDomain)
	assert.ErrorIs(t, s.SetRevShare(0.5), pricing.ErrDomain)

	assert.Equal(t, before, s.Result())
	assert.Equal(t, 3, s.Input().RarityLevel)
}

func TestQuick_SubscribeAndCancel(t *testing.T) {
	s := newQuick(t)

	var calls int
	var last pricing.QuickInput
	cancel := s.Subscribe(func(in pricing.QuickInput, _ pricing.Result) {
		calls++
		last = in
	})

	require.NoError(t, s.SetSessionsPerWeek(5))
	require.Error(t, s.SetSessionsPerWeek(0))
	assert.Equal(t, 1, calls)
	assert.Equal(t, 5, last.SessionsPerWeek)

	cancel()
	require.NoError(t, s.SetFillRate(0.9))
	assert.Equal(t, 1, calls)
}

func TestQuick_ResetRestoresDefaults(t *testing.T) {
	s := newQuick(t)
	require.NoError(t, s.SetStage(pricing.Growth))
	require.NoError(t, s.ToggleAddOn(pricing.Memo, true))

	require.NoError(t, s.Reset())
	assert.Equal(t, pricing.DefaultQuickInput(), s.Input())
}

func TestQuick_RapidSettersEachProduceValidOutput(t *testing.T) {
	s := newQuick(t)

	var wg sync.WaitGroup
	for n := 1; n <= 20; n++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			assert.NoError(t, s.SetSessionsPerWeek(n))
		}(n)
	}
	wg.Wait()

	want, err := pricing.DeriveQuick(s.Input(), pricing.DefaultTables().Seniority())
	require.NoError(t, err)
	assert.Equal(t, want, s.Result())
}

func ptr[T any](v T) *T { return &v }
