package pricing

import (
	"fmt"
	"math"
)

// Bounds enforced on numeric inputs.
const (
	MaxSessionsPerWeek     = 20
	MaxWeeksPerYear        = 52
	MaxRevShare            = 0.30
	MaxShareRevPct         = 0.25
	MaxConversionsPerMonth = 100
	MaxAvgDealSize         = 1_000_000
)

// Input is the full parameter set of a revenue estimate.
type Input struct {
	ContentType   ContentType   `json:"content_type"`
	Role          Role          `json:"role"`
	Rarity        Rarity        `json:"rarity"`
	RarityLevel   int           `json:"rarity_level"`
	SessionLength SessionLength `json:"session_length"`
	AddOns        []AddOn       `json:"add_ons"`
	Rush          bool          `json:"rush"`
	Stage         Stage         `json:"stage"`

	SessionsPerWeek int     `json:"sessions_per_week"`
	WeeksPerYear    int     `json:"weeks_per_year"`
	RevShare        float64 `json:"rev_share"`
	FillRate        float64 `json:"fill_rate"`

	AllowShare          bool    `json:"allow_share"`
	ShareRevPct         float64 `json:"share_rev_pct"`
	ConversionsPerMonth int     `json:"conversions_per_month"`
	AvgDealSize         float64 `json:"avg_deal_size"`
}

// DefaultInput returns the advanced calculator's starting parameters.
func DefaultInput() Input {
	return Input{
		ContentType:         DiscoveryCall,
		Role:                IndividualContributor,
		Rarity:              Common,
		RarityLevel:         1,
		SessionLength:       60,
		Stage:               Seed,
		SessionsPerWeek:     2,
		WeeksPerYear:        48,
		RevShare:            0.15,
		FillRate:            0.8,
		ShareRevPct:         0.05,
		ConversionsPerMonth: 2,
		AvgDealSize:         2000,
	}
}

// HasAddOn reports whether a is selected.
func (in Input) HasAddOn(a AddOn) bool {
	for _, selected := range in.AddOns {
		if selected == a {
			return true
		}
	}
	return false
}

// Validate checks the numeric domains and add-on set. Enumerations are
// checked by the RateSource during Derive, since each source prices on
// different axes.
func (in Input) Validate() error {
	if in.SessionsPerWeek < 1 || in.SessionsPerWeek > MaxSessionsPerWeek {
		return domainErr("sessions per week", in.SessionsPerWeek, fmt.Sprintf("must be between 1 and %d", MaxSessionsPerWeek))
	}
	if in.WeeksPerYear < 1 || in.WeeksPerYear > MaxWeeksPerYear {
		return domainErr("weeks per year", in.WeeksPerYear, fmt.Sprintf("must be between 1 and %d", MaxWeeksPerYear))
	}
	for _, f := range []struct {
		field string
		v     float64
	}{
		{"revenue share", in.RevShare},
		{"fill rate", in.FillRate},
		{"share revenue percentage", in.ShareRevPct},
		{"average deal size", in.AvgDealSize},
	} {
		if err := finite(f.field, f.v); err != nil {
			return err
		}
	}
	if in.RevShare < 0 || in.RevShare > MaxRevShare {
		return domainErr("revenue share", in.RevShare, fmt.Sprintf("must be between 0 and %.2f", MaxRevShare))
	}
	if in.FillRate <= 0 || in.FillRate > 1 {
		return domainErr("fill rate", in.FillRate, "must be in (0, 1]")
	}
	if in.ShareRevPct < 0 || in.ShareRevPct > MaxShareRevPct {
		return domainErr("share revenue percentage", in.ShareRevPct, fmt.Sprintf("must be between 0 and %.2f", MaxShareRevPct))
	}
	if in.ConversionsPerMonth < 0 || in.ConversionsPerMonth > MaxConversionsPerMonth {
		return domainErr("conversions per month", in.ConversionsPerMonth, fmt.Sprintf("must be between 0 and %d", MaxConversionsPerMonth))
	}
	if in.AvgDealSize < 0 || in.AvgDealSize > MaxAvgDealSize {
		return domainErr("average deal size", in.AvgDealSize, fmt.Sprintf("must be between 0 and %d", MaxAvgDealSize))
	}

	seen := make(map[AddOn]bool, len(in.AddOns))
	for _, a := range in.AddOns {
		if _, err := ParseAddOn(string(a)); err != nil {
			return err
		}
		if seen[a] {
			return domainErr("add-on", string(a), "selected more than once")
		}
		seen[a] = true
	}
	return nil
}

func (in Input) profile() Profile {
	return Profile{
		ContentType: in.ContentType,
		Role:        in.Role,
		Rarity:      in.Rarity,
		RarityLevel: in.RarityLevel,
	}
}

// Breakdown contains the per-session intermediate values of a derivation.
type Breakdown struct {
	BaseRate         float64 `json:"base_rate"`
	LengthMultiplier float64 `json:"length_multiplier"`
	LengthAdjusted   float64 `json:"length_adjusted"`
	AddOnMultiplier  float64 `json:"add_on_multiplier"`
	StageMultiplier  float64 `json:"stage_multiplier"`
	StageAdjusted    float64 `json:"stage_adjusted"`
	RushFee          float64 `json:"rush_fee"`
	GrossPerSession  float64 `json:"gross_per_session"`
	PlatformFee      float64 `json:"platform_fee"`
	NetPerSession    float64 `json:"net_per_session"`
}

// Totals contains the projected earnings of a derivation. Recurring fields
// are zero when sharing is disabled.
type Totals struct {
	EffectiveSessionsPerWeek float64 `json:"effective_sessions_per_week"`
	WeeklyNet                float64 `json:"weekly_net"`
	MonthlyNet               float64 `json:"monthly_net"`
	AnnualNet                float64 `json:"annual_net"`
	RecurringGross           float64 `json:"recurring_gross"`
	RecurringNet             float64 `json:"recurring_net"`
	TotalAnnualNet           float64 `json:"total_annual_net"`
}

// Result groups the full derivation output.
type Result struct {
	Breakdown Breakdown `json:"breakdown"`
	Totals    Totals    `json:"totals"`
}

// Derive computes every output metric from in using rates. It has no side
// effects: the same input and source always produce the same Result.
func Derive(in Input, rates RateSource) (Result, error) {
	if err := in.Validate(); err != nil {
		return Result{}, err
	}

	base, err := rates.BaseRate(in.profile())
	if err != nil {
		return Result{}, err
	}
	if !(base > 0) || math.IsInf(base, 0) {
		return Result{}, domainErr("base rate", base, "must be positive and finite")
	}
	lengthMult, err := rates.LengthMultiplier(in.SessionLength)
	if err != nil {
		return Result{}, err
	}
	lengthAdjusted := base * lengthMult

	addOnMult := 1.0
	for _, a := range in.AddOns {
		uplift, err := rates.AddOnUplift(a)
		if err != nil {
			return Result{}, err
		}
		addOnMult += uplift
	}

	stageMult, err := rates.StageMultiplier(in.Stage)
	if err != nil {
		return Result{}, err
	}
	stageAdjusted := lengthAdjusted * addOnMult * stageMult

	rushFee := 0.0
	if in.Rush {
		rushFee = rates.Rush().Fee(base)
	}

	gross := stageAdjusted + rushFee
	net := gross * (1 - in.RevShare)

	effective := float64(in.SessionsPerWeek) * in.FillRate
	weekly := net * effective
	monthly := weekly * 52 / 12
	annual := net * float64(in.WeeksPerYear) * effective

	totals := Totals{
		EffectiveSessionsPerWeek: effective,
		WeeklyNet:                weekly,
		MonthlyNet:               monthly,
		AnnualNet:                annual,
		TotalAnnualNet:           annual,
	}
	if in.AllowShare {
		totals.RecurringGross = in.AvgDealSize * float64(in.ConversionsPerMonth) * 12 * in.ShareRevPct
		totals.RecurringNet = totals.RecurringGross * (1 - in.RevShare)
		totals.TotalAnnualNet = annual + totals.RecurringNet
	}

	return Result{
		Breakdown: Breakdown{
			BaseRate:         base,
			LengthMultiplier: lengthMult,
			LengthAdjusted:   lengthAdjusted,
			AddOnMultiplier:  addOnMult,
			StageMultiplier:  stageMult,
			StageAdjusted:    stageAdjusted,
			RushFee:          rushFee,
			GrossPerSession:  gross,
			PlatformFee:      gross - net,
			NetPerSession:    net,
		},
		Totals: totals,
	}, nil
}
