package store

import "github.com/trustedapp/site/internal/pricing"

// Patch is a partial update of an advanced input. Nil fields keep their
// current value.
type Patch struct {
	ContentType   *pricing.ContentType   `json:"content_type,omitempty"`
	Role          *pricing.Role          `json:"role,omitempty"`
	Rarity        *pricing.Rarity        `json:"rarity,omitempty"`
	SessionLength *pricing.SessionLength `json:"session_length,omitempty"`
	AddOns        *[]pricing.AddOn       `json:"add_ons,omitempty"`
	Rush          *bool                  `json:"rush,omitempty"`
	Stage         *pricing.Stage         `json:"stage,omitempty"`

	SessionsPerWeek *int     `json:"sessions_per_week,omitempty"`
	WeeksPerYear    *int     `json:"weeks_per_year,omitempty"`
	RevShare        *float64 `json:"rev_share,omitempty"`
	FillRate        *float64 `json:"fill_rate,omitempty"`

	AllowShare          *bool    `json:"allow_share,omitempty"`
	ShareRevPct         *float64 `json:"share_rev_pct,omitempty"`
	ConversionsPerMonth *int     `json:"conversions_per_month,omitempty"`
	AvgDealSize         *float64 `json:"avg_deal_size,omitempty"`
}

// Merge returns in with every non-nil field of p applied.
func (p Patch) Merge(in pricing.Input) pricing.Input {
	setIf(&in.ContentType, p.ContentType)
	setIf(&in.Role, p.Role)
	setIf(&in.Rarity, p.Rarity)
	setIf(&in.SessionLength, p.SessionLength)
	if p.AddOns != nil {
		in.AddOns = append([]pricing.AddOn(nil), (*p.AddOns)...)
	}
	setIf(&in.Rush, p.Rush)
	setIf(&in.Stage, p.Stage)
	setIf(&in.SessionsPerWeek, p.SessionsPerWeek)
	setIf(&in.WeeksPerYear, p.WeeksPerYear)
	setIf(&in.RevShare, p.RevShare)
	setIf(&in.FillRate, p.FillRate)
	setIf(&in.AllowShare, p.AllowShare)
	setIf(&in.ShareRevPct, p.ShareRevPct)
	setIf(&in.ConversionsPerMonth, p.ConversionsPerMonth)
	setIf(&in.AvgDealSize, p.AvgDealSize)
	return in
}

// QuickPatch is a partial update of a quick-estimator input.
type QuickPatch struct {
	Role            *pricing.Role          `json:"role,omitempty"`
	RarityLevel     *int                   `json:"rarity_level,omitempty"`
	SessionLength   *pricing.SessionLength `json:"session_length,omitempty"`
	AddOns          *[]pricing.AddOn       `json:"add_ons,omitempty"`
	Rush            *bool                  `json:"rush,omitempty"`
	Stage           *pricing.Stage         `json:"stage,omitempty"`
	SessionsPerWeek *int                   `json:"sessions_per_week,omitempty"`
	WeeksPerYear    *int                   `json:"weeks_per_year,omitempty"`
	RevShare        *float64               `json:"rev_share,omitempty"`
	FillRate        *float64               `json:"fill_rate,omitempty"`
}

// Merge returns q with every non-nil field of p applied.
func (p QuickPatch) Merge(q pricing.QuickInput) pricing.QuickInput {
	setIf(&q.Role, p.Role)
	setIf(&q.RarityLevel, p.RarityLevel)
	setIf(&q.SessionLength, p.SessionLength)
	if p.AddOns != nil {
		q.AddOns = append([]pricing.AddOn(nil), (*p.AddOns)...)
	}
	setIf(&q.Rush, p.Rush)
	setIf(&q.Stage, p.Stage)
	setIf(&q.SessionsPerWeek, p.SessionsPerWeek)
	setIf(&q.WeeksPerYear, p.WeeksPerYear)
	setIf(&q.RevShare, p.RevShare)
	setIf(&q.FillRate, p.FillRate)
	return q
}

func setIf[T any](dst *T, src *T) {
	if src != nil {
		*dst = *src
	}
}

// withAddOn returns a copy of selected with a added or removed, in the
// canonical pricing.AddOns order.
func withAddOn(selected []pricing.AddOn, a pricing.AddOn, on bool) []pricing.AddOn {
	want := make(map[pricing.AddOn]bool, len(selected)+1)
	for _, s := range selected {
		want[s] = true
	}
	want[a] = on

	out := make([]pricing.AddOn, 0, len(want))
	for _, known := range pricing.AddOns {
		if want[known] {
			out = append(out, known)
		}
	}
	if on && !isKnownAddOn(a) {
		out = append(out, a)
	}
	return out
}

func isKnownAddOn(a pricing.AddOn) bool {
	for _, known := range pricing.AddOns {
		if known == a {
			return true
		}
	}
	return false
}
