package pricing

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func nearlyEqual(t *testing.T, name string, got, want float64) {
	t.Helper()
	if math.Abs(got-want) > 1e-9 {
		t.Fatalf("%s = %v, want %v", name, got, want)
	}
}

func matrix() *Matrix { return DefaultTables().Matrix() }

func baseline() Input {
	in := DefaultInput()
	in.Role = IndividualContributor
	in.Rarity = Common
	in.ContentType = DiscoveryCall
	in.SessionLength = 60
	in.Stage = Seed
	in.SessionsPerWeek = 2
	in.WeeksPerYear = 48
	in.RevShare = 0.15
	in.FillRate = 0.8
	return in
}

func TestDerive_Baseline(t *testing.T) {
	result, err := Derive(baseline(), matrix())
	require.NoError(t, err)

	nearlyEqual(t, "baseRate", result.Breakdown.BaseRate, 150)
	nearlyEqual(t, "lengthMultiplier", result.Breakdown.LengthMultiplier, 1)
	nearlyEqual(t, "grossPerSession", result.Breakdown.GrossPerSession, 150)
	nearlyEqual(t, "netPerSession", result.Breakdown.NetPerSession, 127.5)
	nearlyEqual(t, "platformFee", result.Breakdown.PlatformFee, 22.5)
	nearlyEqual(t, "weeklyNet", result.Totals.WeeklyNet, 204)
	nearlyEqual(t, "monthlyNet", result.Totals.MonthlyNet, 884)
	nearlyEqual(t, "annualNet", result.Totals.AnnualNet, 9792)
	assert.Equal(t, result.Totals.AnnualNet, result.Totals.TotalAnnualNet)
	assert.Zero(t, result.Totals.RecurringNet)
}

func TestDerive_RushBelowThresholdIsPercentage(t *testing.T) {
	in := baseline()
	in.Rush = true

	result, err := Derive(in, matrix())
	require.NoError(t, err)

	nearlyEqual(t, "rushFee", result.Breakdown.RushFee, 22.5)
	nearlyEqual(t, "grossPerSession", result.Breakdown.GrossPerSession, 172.5)
}

func TestDerive_RushAtThresholdIsFlat(t *testing.T) {
	in := baseline()
	in.Role = Manager
	in.Rarity = Rare
	in.Rush = true

	result, err := Derive(in, matrix())
	require.NoError(t, err)

	nearlyEqual(t, "baseRate", result.Breakdown.BaseRate, 350)
	nearlyEqual(t, "rushFee", result.Breakdown.RushFee, 50)
	nearlyEqual(t, "grossPerSession", result.Breakdown.GrossPerSession, 400)
}

func TestDerive_RushJustBelowThreshold(t *testing.T) {
	in := baseline()
	in.Role = Manager
	in.Rarity = Specialized
	in.Rush = true

	result, err := Derive(in, matrix())
	require.NoError(t, err)

	nearlyEqual(t, "rushFee", result.Breakdown.RushFee, 285*0.15)
}

func TestRushRule_Boundary(t *testing.T) {
	rule := RushRule{FlatFee: 50, Percentage: 0.15, Threshold: 350}

	nearlyEqual(t, "at threshold", rule.Fee(350), 50)
	nearlyEqual(t, "below threshold", rule.Fee(349.99), 349.99*0.15)
	nearlyEqual(t, "above threshold", rule.Fee(900), 50)
}

func TestDerive_AddOnsComposeAdditively(t *testing.T) {
	in := baseline()
	in.AddOns = []AddOn{Transcript, Memo}

	result, err := Derive(in, matrix())
	require.NoError(t, err)

	want := 1.0
	want += 0.05
	want += 0.10
	assert.Equal(t, want, result.Breakdown.AddOnMultiplier)
	assert.NotEqual(t, 1.05*1.10, result.Breakdown.AddOnMultiplier)
	nearlyEqual(t, "grossPerSession", result.Breakdown.GrossPerSession, 172.5)
}

func TestDerive_EnterpriseStage(t *testing.T) {
	in := baseline()
	in.Stage = Enterprise

	result, err := Derive(in, matrix())
	require.NoError(t, err)

	nearlyEqual(t, "grossPerSession", result.Breakdown.GrossPerSession, 195)
}

func TestDerive_RecurringRevenue(t *testing.T) {
	in := baseline()
	in.AllowShare = true
	in.ShareRevPct = 0.05
	in.ConversionsPerMonth = 2
	in.AvgDealSize = 2000

	result, err := Derive(in, matrix())
	require.NoError(t, err)

	nearlyEqual(t, "recurringGross", result.Totals.RecurringGross, 2400)
	nearlyEqual(t, "recurringNet", result.Totals.RecurringNet, 2040)
	nearlyEqual(t, "totalAnnualNet", result.Totals.TotalAnnualNet, result.Totals.AnnualNet+2040)
}

func TestDerive_RecurringWithZeroConversions(t *testing.T) {
	in := baseline()
	in.AllowShare = true
	in.ConversionsPerMonth = 0

	result, err := Derive(in, matrix())
	require.NoError(t, err)

	assert.Zero(t, result.Totals.RecurringNet)
	assert.Equal(t, result.Totals.AnnualNet, result.Totals.TotalAnnualNet)
}

func TestDerive_SharingDisabledIgnoresRecurringFields(t *testing.T) {
	in := baseline()
	in.AllowShare = false
	in.ConversionsPerMonth = 50
	in.AvgDealSize = 10000

	result, err := Derive(in, matrix())
	require.NoError(t, err)

	assert.Zero(t, result.Totals.RecurringGross)
	assert.Equal(t, result.Totals.AnnualNet, result.Totals.TotalAnnualNet)
}

func TestDerive_IsDeterministic(t *testing.T) {
	in := baseline()
	in.AddOns = []AddOn{FollowUp, Transcript}
	in.Rush = true
	in.Stage = Growth
	in.AllowShare = true

	first, err := Derive(in, matrix())
	require.NoError(t, err)
	second, err := Derive(in, matrix())
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestDerive_Monotonicity(t *testing.T) {
	annual := func(mutate func(*Input)) float64 {
		in := baseline()
		mutate(&in)
		result, err := Derive(in, matrix())
		require.NoError(t, err)
		return result.Totals.AnnualNet
	}

	prev := 0.0
	for n := 1; n <= MaxSessionsPerWeek; n++ {
		got := annual(func(in *Input) { in.SessionsPerWeek = n })
		assert.GreaterOrEqual(t, got, prev, "sessionsPerWeek=%d", n)
		prev = got
	}

	prev = 0
	for w := 1; w <= MaxWeeksPerYear; w++ {
		got := annual(func(in *Input) { in.WeeksPerYear = w })
		assert.GreaterOrEqual(t, got, prev, "weeksPerYear=%d", w)
		prev = got
	}

	prev = 0
	for f := 0.05; f <= 1.0; f += 0.05 {
		got := annual(func(in *Input) { in.FillRate = f })
		assert.GreaterOrEqual(t, got, prev, "fillRate=%v", f)
		prev = got
	}

	prevNet := math.Inf(1)
	for share := 0.0; share <= MaxRevShare; share += 0.01 {
		in := baseline()
		in.RevShare = share
		result, err := Derive(in, matrix())
		require.NoError(t, err)
		assert.LessOrEqual(t, result.Breakdown.NetPerSession, prevNet, "revShare=%v", share)
		prevNet = result.Breakdown.NetPerSession
	}
}

type domainCase struct {
	name   string
	mutate func(*Input)
	field  string
}

func TestDerive_RejectsOutOfDomainInput(t *testing.T) {
	tests := []domainCase{
		{"unsupported session length", func(in *Input) { in.SessionLength = 50 }, "session length"},
		{"zero sessions per week", func(in *Input) { in.SessionsPerWeek = 0 }, "sessions per week"},
		{"too many sessions per week", func(in *Input) { in.SessionsPerWeek = 21 }, "sessions per week"},
		{"zero weeks per year", func(in *Input) { in.WeeksPerYear = 0 }, "weeks per year"},
		{"negative weeks per year", func(in *Input) { in.WeeksPerYear = -4 }, "weeks per year"},
		{"zero fill rate", func(in *Input) { in.FillRate = 0 }, "fill rate"},
		{"fill rate above one", func(in *Input) { in.FillRate = 1.01 }, "fill rate"},
		{"rev share above cap", func(in *Input) { in.RevShare = 0.31 }, "revenue share"},
		{"negative rev share", func(in *Input) { in.RevShare = -0.01 }, "revenue share"},
		{"unknown role", func(in *Input) { in.Role = "intern" }, "role"},
		{"unknown rarity", func(in *Input) { in.Rarity = "legendary" }, "rarity"},
		{"unknown content type", func(in *Input) { in.ContentType = "podcast" }, "content type"},
		{"unknown stage", func(in *Input) { in.Stage = "pre-seed" }, "company stage"},
		{"unknown add-on", func(in *Input) { in.AddOns = []AddOn{"slides"} }, "add-on"},
		{"duplicate add-on", func(in *Input) { in.AddOns = []AddOn{Memo, Memo} }, "add-on"},
		{"negative deal size", func(in *Input) { in.AvgDealSize = -1 }, "average deal size"},
	}
	nonFinite := []struct {
		name string
		v    float64
	}{{"NaN", math.NaN()}, {"+Inf", math.Inf(1)}, {"-Inf", math.Inf(-1)}}
	for _, nf := range nonFinite {
		v := nf.v
		tests = append(tests,
			domainCase{"rev share " + nf.name, func(in *Input) { in.RevShare = v }, "revenue share"},
			domainCase{"fill rate " + nf.name, func(in *Input) { in.FillRate = v }, "fill rate"},
			domainCase{"share rev pct " + nf.name, func(in *Input) { in.AllowShare = true; in.ShareRevPct = v }, "share revenue percentage"},
			domainCase{"deal size " + nf.name, func(in *Input) { in.AllowShare = true; in.AvgDealSize = v }, "average deal size"},
		)
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := baseline()
			tt.mutate(&in)

			_, err := Derive(in, matrix())
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrDomain))

			var domainErr *DomainError
			require.True(t, errors.As(err, &domainErr))
			assert.Equal(t, tt.field, domainErr.Field)
		})
	}
}

func TestDeriveQuick_UsesSeniorityFormula(t *testing.T) {
	seniority := DefaultTables().Seniority()
	q := DefaultQuickInput()

	result, err := DeriveQuick(q, seniority)
	require.NoError(t, err)

	// 120 × 1.35 × (1 + 0.2 × 2)
	nearlyEqual(t, "baseRate", result.Breakdown.BaseRate, 226.8)
	nearlyEqual(t, "lengthMultiplier", result.Breakdown.LengthMultiplier, 1)
	nearlyEqual(t, "netPerSession", result.Breakdown.NetPerSession, 226.8*0.85)
	nearlyEqual(t, "annualNet", result.Totals.AnnualNet, 226.8*0.85*46*3*0.7)

	direct, err := Derive(q.Input(), seniority)
	require.NoError(t, err)
	assert.Equal(t, direct, result)
}

func TestSeniority_LinearLengthAndRarity(t *testing.T) {
	seniority := DefaultTables().Seniority()

	mult, err := seniority.LengthMultiplier(90)
	require.NoError(t, err)
	nearlyEqual(t, "90 minutes", mult, 1.5)

	mult, err = seniority.LengthMultiplier(30)
	require.NoError(t, err)
	nearlyEqual(t, "30 minutes", mult, 0.5)

	_, err = seniority.LengthMultiplier(75)
	assert.ErrorIs(t, err, ErrDomain)

	low, err := seniority.Rate(IndividualContributor, 1)
	require.NoError(t, err)
	high, err := seniority.Rate(IndividualContributor, 5)
	require.NoError(t, err)
	nearlyEqual(t, "level 1", low, 120)
	nearlyEqual(t, "level 5", high, 120*1.8)

	_, err = seniority.Rate(IndividualContributor, 6)
	assert.ErrorIs(t, err, ErrDomain)
	_, err = seniority.Rate(IndividualContributor, 0)
	assert.ErrorIs(t, err, ErrDomain)
}

func TestMatrix_AccessorsRejectUnknownValues(t *testing.T) {
	m := matrix()

	_, err := m.LengthMultiplier(120)
	assert.ErrorIs(t, err, ErrDomain)
	_, err = m.AddOnUplift("slides")
	assert.ErrorIs(t, err, ErrDomain)
	_, err = m.StageMultiplier("ipo")
	assert.ErrorIs(t, err, ErrDomain)
	_, err = m.Rate("podcast", Manager, Common)
	assert.ErrorIs(t, err, ErrDomain)
}
