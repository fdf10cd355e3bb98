package pricing

// Waterfall step names, in display order.
const (
	StepBase   = "base"
	StepAddOns = "add-ons"
	StepStage  = "stage"
	StepRush   = "rush"
)

// WaterfallStep is one contribution to the gross per-session fee.
type WaterfallStep struct {
	Name   string  `json:"name"`
	Amount float64 `json:"amount"`
	Share  float64 `json:"share"`
}

// Waterfall splits GrossPerSession into the length-adjusted base, the add-on
// delta, the stage delta and the rush fee. Amounts sum to GrossPerSession.
func Waterfall(b Breakdown) []WaterfallStep {
	addOnDelta := b.LengthAdjusted * (b.AddOnMultiplier - 1)
	stageDelta := b.LengthAdjusted * b.AddOnMultiplier * (b.StageMultiplier - 1)

	steps := []WaterfallStep{
		{Name: StepBase, Amount: b.LengthAdjusted},
		{Name: StepAddOns, Amount: addOnDelta},
		{Name: StepStage, Amount: stageDelta},
		{Name: StepRush, Amount: b.RushFee},
	}
	if b.GrossPerSession > 0 {
		for i := range steps {
			steps[i].Share = steps[i].Amount / b.GrossPerSession
		}
	}
	return steps
}
