package pricing

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultTables_EveryMatrixCellDefined(t *testing.T) {
	m := matrix()
	for _, c := range ContentTypes {
		for _, r := range Roles {
			for _, rarity := range Rarities {
				rate, err := m.Rate(c, r, rarity)
				require.NoError(t, err, "%s/%s/%s", c, r, rarity)
				assert.Positive(t, rate, "%s/%s/%s", c, r, rarity)
			}
		}
	}
}

func TestDefaultTables_MultipliersAreMonotonic(t *testing.T) {
	m := matrix()

	prev := 0.0
	for _, l := range SessionLengths {
		v, err := m.LengthMultiplier(l)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, v, prev)
		assert.LessOrEqual(t, v, 1.5)
		prev = v
	}

	prev = 1
	for _, s := range Stages {
		v, err := m.StageMultiplier(s)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, v, prev)
		prev = v
	}
}

func TestLoadTables_RejectsMissingCell(t *testing.T) {
	doc := strings.Replace(string(defaultRatesYAML),
		"manager:                {common: 225, specialized: 285, rare: 350}",
		"manager:                {common: 225, specialized: 285}", 1)

	_, err := LoadTables(strings.NewReader(doc))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrDomain)
	assert.Contains(t, err.Error(), "discovery-call/manager/rare")
}

func TestLoadTables_RejectsNegativeRate(t *testing.T) {
	doc := strings.Replace(string(defaultRatesYAML), "{common: 150,", "{common: -150,", 1)

	_, err := LoadTables(strings.NewReader(doc))
	assert.ErrorIs(t, err, ErrDomain)
}

func TestLoadTables_RejectsDecreasingLengthMultiplier(t *testing.T) {
	doc := strings.Replace(string(defaultRatesYAML), "45: 0.8", "45: 0.5", 1)

	_, err := LoadTables(strings.NewReader(doc))
	assert.ErrorIs(t, err, ErrDomain)
}

func TestLoadTables_RejectsStageBelowOne(t *testing.T) {
	doc := strings.Replace(string(defaultRatesYAML), "seed: 1.0", "seed: 0.9", 1)

	_, err := LoadTables(strings.NewReader(doc))
	assert.ErrorIs(t, err, ErrDomain)
}

func TestLoadTables_RejectsNonFiniteValues(t *testing.T) {
	tests := []struct {
		name, old, new string
	}{
		{"base rate NaN", "{common: 150,", "{common: .nan,"},
		{"base rate Inf", "{common: 150,", "{common: .inf,"},
		{"length multiplier NaN", "90: 1.4", "90: .nan"},
		{"add-on uplift NaN", "transcript: 0.05", "transcript: .nan"},
		{"stage multiplier Inf", "enterprise: 1.3", "enterprise: .inf"},
		{"rush flat fee NaN", "flat_fee: 50", "flat_fee: .nan"},
		{"seniority base NaN", "base_hourly: 120", "base_hourly: .nan"},
		{"seniority role Inf", "c-suite: 3.0", "c-suite: .inf"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := strings.Replace(string(defaultRatesYAML), tt.old, tt.new, 1)
			require.NotEqual(t, string(defaultRatesYAML), doc)

			_, err := LoadTables(strings.NewReader(doc))
			assert.ErrorIs(t, err, ErrDomain)
		})
	}
}

func TestLoadTables_RejectsUnknownMatrixEntries(t *testing.T) {
	manager := "    manager:                {common: 225, specialized: 285, rare: 350}"
	tests := []struct {
		name, old, new, want string
	}{
		{"rarity", manager, "    manager:                {common: 225, specialized: 285, rare: 350, legendary: 500}", "unexpected rarities"},
		{"role", manager, manager + "\n    intern:                 {common: 50, specialized: 60, rare: 70}", "unexpected roles"},
		{"seniority role", "c-suite: 3.0", "c-suite: 3.0\n    intern: 0.5", "unexpected role entries"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := strings.Replace(string(defaultRatesYAML), tt.old, tt.new, 1)
			require.NotEqual(t, string(defaultRatesYAML), doc)

			_, err := LoadTables(strings.NewReader(doc))
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrDomain)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestLoadTables_RejectsUnknownKeys(t *testing.T) {
	doc := append(bytes.Clone(defaultRatesYAML), []byte("\nsurge_pricing: true\n")...)

	_, err := LoadTables(bytes.NewReader(doc))
	assert.Error(t, err)
}

func TestWaterfall_SumsToGross(t *testing.T) {
	for _, c := range ContentTypes {
		for _, r := range Roles {
			for _, stage := range Stages {
				in := baseline()
				in.ContentType = c
				in.Role = r
				in.Rarity = Rare
				in.Stage = stage
				in.SessionLength = 90
				in.AddOns = []AddOn{Transcript, Memo, FollowUp}
				in.Rush = true

				result, err := Derive(in, matrix())
				require.NoError(t, err)

				steps := Waterfall(result.Breakdown)
				require.Len(t, steps, 4)

				sum, shares := 0.0, 0.0
				for _, s := range steps {
					sum += s.Amount
					shares += s.Share
				}
				gross := result.Breakdown.GrossPerSession
				assert.InEpsilon(t, gross, sum, 1e-6)
				assert.InDelta(t, 1, shares, 1e-6)
			}
		}
	}
}

func TestWaterfall_StepOrderAndZeroRush(t *testing.T) {
	result, err := Derive(baseline(), matrix())
	require.NoError(t, err)

	steps := Waterfall(result.Breakdown)
	names := make([]string, 0, len(steps))
	for _, s := range steps {
		names = append(names, s.Name)
	}
	assert.Equal(t, []string{StepBase, StepAddOns, StepStage, StepRush}, names)
	assert.InDelta(t, 1, steps[0].Share, 1e-12)
	assert.Zero(t, steps[3].Amount)
}
