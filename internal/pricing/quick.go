package pricing

// QuickInput is the parameter set of the top-of-page quick estimator, priced
// by the Seniority source. It has no content type, rarity tier or sharing.
type QuickInput struct {
	Role            Role          `json:"role"`
	RarityLevel     int           `json:"rarity_level"`
	SessionLength   SessionLength `json:"session_length"`
	AddOns          []AddOn       `json:"add_ons"`
	Rush            bool          `json:"rush"`
	Stage           Stage         `json:"stage"`
	SessionsPerWeek int           `json:"sessions_per_week"`
	WeeksPerYear    int           `json:"weeks_per_year"`
	RevShare        float64       `json:"rev_share"`
	FillRate        float64       `json:"fill_rate"`
}

// DefaultQuickInput returns the quick estimator's starting parameters.
func DefaultQuickInput() QuickInput {
	return QuickInput{
		Role:            Manager,
		RarityLevel:     3,
		SessionLength:   60,
		Stage:           Seed,
		SessionsPerWeek: 3,
		WeeksPerYear:    46,
		RevShare:        0.15,
		FillRate:        0.7,
	}
}

// Input maps q onto the shared pipeline input.
func (q QuickInput) Input() Input {
	return Input{
		Role:            q.Role,
		RarityLevel:     q.RarityLevel,
		SessionLength:   q.SessionLength,
		AddOns:          append([]AddOn(nil), q.AddOns...),
		Rush:            q.Rush,
		Stage:           q.Stage,
		SessionsPerWeek: q.SessionsPerWeek,
		WeeksPerYear:    q.WeeksPerYear,
		RevShare:        q.RevShare,
		FillRate:        q.FillRate,
	}
}

// DeriveQuick runs the shared pipeline over a quick-estimator input.
func DeriveQuick(q QuickInput, rates *Seniority) (Result, error) {
	return Derive(q.Input(), rates)
}
