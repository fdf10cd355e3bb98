package cmd

import (
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/trustedapp/site/internal/pricing"
	"github.com/trustedapp/site/internal/store"
)

type advancedFlags struct {
	contentType         string
	role                string
	rarity              string
	sessionLength       int
	addOns              []string
	rush                bool
	stage               string
	sessionsPerWeek     int
	weeksPerYear        int
	revShare            float64
	fillRate            float64
	allowShare          bool
	shareRevPct         float64
	conversionsPerMonth int
	avgDealSize         float64
}

func newAdvancedCommand(opts *options) *cobra.Command {
	def := pricing.DefaultInput()
	f := &advancedFlags{}

	cmd := &cobra.Command{
		Use:   "advanced",
		Short: "Estimate with the full rate matrix",
		Long: `Price a session from content type, role and rarity, then project earnings
from cadence, fill rate and optional content sharing. Unset flags keep the
calculator defaults.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			patch, err := f.patch(cmd.Flags())
			if err != nil {
				return err
			}

			calc := store.NewAdvanced(opts.tables.Matrix())
			if err := calc.Apply(patch); err != nil {
				return err
			}
			result, err := calc.Results()
			if err != nil {
				return err
			}

			in := calc.Input()
			opts.logger.Debug("derived advanced estimate",
				zap.String("content_type", string(in.ContentType)),
				zap.String("role", string(in.Role)),
				zap.String("rarity", string(in.Rarity)),
				zap.Float64("net_per_session", result.Breakdown.NetPerSession),
			)
			return opts.print(cmd.OutOrStdout(), in, result, in.AllowShare)
		},
	}

	fl := cmd.Flags()
	fl.StringVar(&f.contentType, "content-type", string(def.ContentType), "content type (discovery-call, usability-test, concept-review, async-survey, workshop)")
	fl.StringVar(&f.role, "role", string(def.Role), "role (individual-contributor, manager, director, vp, c-suite)")
	fl.StringVar(&f.rarity, "rarity", string(def.Rarity), "rarity (common, specialized, rare)")
	fl.IntVar(&f.sessionLength, "length", int(def.SessionLength), "session length in minutes (30, 45, 60, 90)")
	fl.StringSliceVar(&f.addOns, "add-on", nil, "add-on to include, repeatable (transcript, memo, follow-up)")
	fl.BoolVar(&f.rush, "rush", def.Rush, "rush delivery")
	fl.StringVar(&f.stage, "stage", string(def.Stage), "company stage (seed, series-ab, growth, enterprise)")
	fl.IntVar(&f.sessionsPerWeek, "sessions-per-week", def.SessionsPerWeek, "sessions offered per week")
	fl.IntVar(&f.weeksPerYear, "weeks-per-year", def.WeeksPerYear, "weeks available per year")
	fl.Float64Var(&f.revShare, "rev-share", def.RevShare, "platform fee as a fraction of gross")
	fl.Float64Var(&f.fillRate, "fill-rate", def.FillRate, "fraction of offered sessions that get booked")
	fl.BoolVar(&f.allowShare, "allow-share", def.AllowShare, "allow buyers to reuse session content")
	fl.Float64Var(&f.shareRevPct, "share-rev-pct", def.ShareRevPct, "royalty on attributed deals as a fraction")
	fl.IntVar(&f.conversionsPerMonth, "conversions-per-month", def.ConversionsPerMonth, "attributed deals per month")
	fl.Float64Var(&f.avgDealSize, "avg-deal-size", def.AvgDealSize, "average attributed deal size in dollars")

	return cmd
}

// patch collects the flags that were set explicitly.
func (f *advancedFlags) patch(fl *pflag.FlagSet) (store.Patch, error) {
	var p store.Patch

	if fl.Changed("content-type") {
		c, err := pricing.ParseContentType(f.contentType)
		if err != nil {
			return p, err
		}
		p.ContentType = &c
	}
	if fl.Changed("role") {
		r, err := pricing.ParseRole(f.role)
		if err != nil {
			return p, err
		}
		p.Role = &r
	}
	if fl.Changed("rarity") {
		r, err := pricing.ParseRarity(f.rarity)
		if err != nil {
			return p, err
		}
		p.Rarity = &r
	}
	if fl.Changed("length") {
		l, err := pricing.ParseSessionLength(f.sessionLength)
		if err != nil {
			return p, err
		}
		p.SessionLength = &l
	}
	if fl.Changed("add-on") {
		addOns, err := parseAddOns(f.addOns)
		if err != nil {
			return p, err
		}
		p.AddOns = &addOns
	}
	if fl.Changed("stage") {
		st, err := pricing.ParseStage(f.stage)
		if err != nil {
			return p, err
		}
		p.Stage = &st
	}
	if fl.Changed("rush") {
		p.Rush = &f.rush
	}
	if fl.Changed("sessions-per-week") {
		p.SessionsPerWeek = &f.sessionsPerWeek
	}
	if fl.Changed("weeks-per-year") {
		p.WeeksPerYear = &f.weeksPerYear
	}
	if fl.Changed("rev-share") {
		p.RevShare = &f.revShare
	}
	if fl.Changed("fill-rate") {
		p.FillRate = &f.fillRate
	}
	if fl.Changed("allow-share") {
		p.AllowShare = &f.allowShare
	}
	if fl.Changed("share-rev-pct") {
		p.ShareRevPct = &f.shareRevPct
	}
	if fl.Changed("conversions-per-month") {
		p.ConversionsPerMonth = &f.conversionsPerMonth
	}
	if fl.Changed("avg-deal-size") {
		p.AvgDealSize = &f.avgDealSize
	}
	return p, nil
}

func parseAddOns(raw []string) ([]pricing.AddOn, error) {
	addOns := make([]pricing.AddOn, 0, len(raw))
	for _, r := range raw {
		a, err := pricing.ParseAddOn(r)
		if err != nil {
			return nil, err
		}
		addOns = append(addOns, a)
	}
	return addOns, nil
}
