package cmd

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/trustedapp/site/internal/pricing"
	"github.com/trustedapp/site/internal/store"
)

func newQuickCommand(opts *options) *cobra.Command {
	def := pricing.DefaultQuickInput()
	var (
		role            string
		rarityLevel     int
		sessionLength   int
		addOns          []string
		rush            bool
		stage           string
		sessionsPerWeek int
		weeksPerYear    int
		revShare        float64
		fillRate        float64
	)

	cmd := &cobra.Command{
		Use:   "quick",
		Short: "Estimate from seniority and a rarity level",
		Long: `Price a session from role seniority and a 1-5 rarity level, the way the
homepage estimator does.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			quick, err := store.NewQuick(opts.tables.Seniority())
			if err != nil {
				return err
			}
			cancel := quick.Subscribe(func(in pricing.QuickInput, result pricing.Result) {
				opts.logger.Debug("quick estimate updated",
					zap.String("role", string(in.Role)),
					zap.Int("rarity_level", in.RarityLevel),
					zap.Float64("net_per_session", result.Breakdown.NetPerSession),
				)
			})
			defer cancel()

			fl := cmd.Flags()
			var p store.QuickPatch
			if fl.Changed("role") {
				r, err := pricing.ParseRole(role)
				if err != nil {
					return err
				}
				p.Role = &r
			}
			if fl.Changed("stage") {
				st, err := pricing.ParseStage(stage)
				if err != nil {
					return err
				}
				p.Stage = &st
			}
			if fl.Changed("length") {
				l, err := pricing.ParseSessionLength(sessionLength)
				if err != nil {
					return err
				}
				p.SessionLength = &l
			}
			if fl.Changed("add-on") {
				parsed, err := parseAddOns(addOns)
				if err != nil {
					return err
				}
				p.AddOns = &parsed
			}
			if fl.Changed("rarity-level") {
				p.RarityLevel = &rarityLevel
			}
			if fl.Changed("rush") {
				p.Rush = &rush
			}
			if fl.Changed("sessions-per-week") {
				p.SessionsPerWeek = &sessionsPerWeek
			}
			if fl.Changed("weeks-per-year") {
				p.WeeksPerYear = &weeksPerYear
			}
			if fl.Changed("rev-share") {
				p.RevShare = &revShare
			}
			if fl.Changed("fill-rate") {
				p.FillRate = &fillRate
			}

			if err := quick.Apply(p); err != nil {
				return err
			}
			return opts.print(cmd.OutOrStdout(), quick.Input(), quick.Result(), false)
		},
	}

	fl := cmd.Flags()
	fl.StringVar(&role, "role", string(def.Role), "role (individual-contributor, manager, director, vp, c-suite)")
	fl.IntVar(&rarityLevel, "rarity-level", def.RarityLevel, "how rare the expertise is, from 1 upward")
	fl.IntVar(&sessionLength, "length", int(def.SessionLength), "session length in minutes (30, 45, 60, 90)")
	fl.StringSliceVar(&addOns, "add-on", nil, "add-on to include, repeatable (transcript, memo, follow-up)")
	fl.BoolVar(&rush, "rush", def.Rush, "rush delivery")
	fl.StringVar(&stage, "stage", string(def.Stage), "company stage (seed, series-ab, growth, enterprise)")
	fl.IntVar(&sessionsPerWeek, "sessions-per-week", def.SessionsPerWeek, "sessions offered per week")
	fl.IntVar(&weeksPerYear, "weeks-per-year", def.WeeksPerYear, "weeks available per year")
	fl.Float64Var(&revShare, "rev-share", def.RevShare, "platform fee as a fraction of gross")
	fl.Float64Var(&fillRate, "fill-rate", def.FillRate, "fraction of offered sessions that get booked")

	return cmd
}
