package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/trustedapp/site/internal/money"
	"github.com/trustedapp/site/internal/pricing"
)

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

type row struct {
	label, value string
}

func writeTable(w io.Writer, result pricing.Result, recurring bool) error {
	b := result.Breakdown
	t := result.Totals

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', tabwriter.AlignRight)
	rows := []row{
		{"Base rate", money.Format(b.BaseRate)},
		{"Session length", money.Multiplier(b.LengthMultiplier)},
		{"Add-ons", money.Multiplier(b.AddOnMultiplier)},
		{"Company stage", money.Multiplier(b.StageMultiplier)},
		{"Rush fee", money.Format(b.RushFee)},
		{"Gross per session", money.Format(b.GrossPerSession)},
		{"Platform fee", money.Format(b.PlatformFee)},
		{"Net per session", money.Format(b.NetPerSession)},
		{"", ""},
		{"Booked sessions per week", fmt.Sprintf("%.2f", t.EffectiveSessionsPerWeek)},
		{"Weekly", money.Format(t.WeeklyNet)},
		{"Monthly", money.Format(t.MonthlyNet)},
		{"Annual", money.Whole(t.AnnualNet)},
	}
	if recurring {
		rows = append(rows,
			row{"Recurring (content sharing)", money.Whole(t.RecurringNet)},
			row{"Total annual", money.Whole(t.TotalAnnualNet)},
		)
	}
	for _, r := range rows {
		if _, err := fmt.Fprintf(tw, "%s\t%s\t\n", r.label, r.value); err != nil {
			return err
		}
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	if _, err := fmt.Fprintln(w, "\nWhere each session fee comes from:"); err != nil {
		return err
	}
	tw = tabwriter.NewWriter(w, 0, 0, 2, ' ', tabwriter.AlignRight)
	for _, step := range pricing.Waterfall(b) {
		if _, err := fmt.Fprintf(tw, "  %s\t%s\t%s\t\n", step.Name, money.Format(step.Amount), money.Percent(step.Share)); err != nil {
			return err
		}
	}
	return tw.Flush()
}
