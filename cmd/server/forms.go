package main

import (
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/trustedapp/site/internal/money"
	"github.com/trustedapp/site/internal/pricing"
	"github.com/trustedapp/site/internal/store"
)

// submittedField marks a full form submission. Checkboxes missing from a
// submitted form are read as unchecked; otherwise they are left unchanged.
const submittedField = "submitted"

func parseCalculatorForm(values url.Values) (store.Patch, error) {
	var p store.Patch
	var err error

	if raw := values.Get("content_type"); raw != "" {
		c, err := pricing.ParseContentType(raw)
		if err != nil {
			return p, err
		}
		p.ContentType = &c
	}
	if raw := values.Get("role"); raw != "" {
		r, err := pricing.ParseRole(raw)
		if err != nil {
			return p, err
		}
		p.Role = &r
	}
	if raw := values.Get("rarity"); raw != "" {
		r, err := pricing.ParseRarity(raw)
		if err != nil {
			return p, err
		}
		p.Rarity = &r
	}
	if raw := values.Get("stage"); raw != "" {
		st, err := pricing.ParseStage(raw)
		if err != nil {
			return p, err
		}
		p.Stage = &st
	}
	if p.SessionLength, err = parseSessionLengthField(values); err != nil {
		return p, err
	}
	if p.SessionsPerWeek, err = parseIntField(values, "sessions_per_week", "sessions per week"); err != nil {
		return p, err
	}
	if p.WeeksPerYear, err = parseIntField(values, "weeks_per_year", "weeks per year"); err != nil {
		return p, err
	}
	if p.RevShare, err = parsePercentField(values, "rev_share", "revenue share"); err != nil {
		return p, err
	}
	if p.FillRate, err = parsePercentField(values, "fill_rate", "fill rate"); err != nil {
		return p, err
	}
	if p.ShareRevPct, err = parsePercentField(values, "share_rev_pct", "share revenue percentage"); err != nil {
		return p, err
	}
	if p.ConversionsPerMonth, err = parseIntField(values, "conversions_per_month", "conversions per month"); err != nil {
		return p, err
	}
	if p.AvgDealSize, err = parseFloatField(values, "avg_deal_size", "average deal size"); err != nil {
		return p, err
	}
	if p.AddOns, err = parseAddOnsField(values); err != nil {
		return p, err
	}
	p.Rush = parseCheckbox(values, "rush")
	p.AllowShare = parseCheckbox(values, "allow_share")

	return p, nil
}

func parseQuickForm(values url.Values) (store.QuickPatch, error) {
	var p store.QuickPatch
	var err error

	if raw := values.Get("role"); raw != "" {
		r, err := pricing.ParseRole(raw)
		if err != nil {
			return p, err
		}
		p.Role = &r
	}
	if raw := values.Get("stage"); raw != "" {
		st, err := pricing.ParseStage(raw)
		if err != nil {
			return p, err
		}
		p.Stage = &st
	}
	if p.RarityLevel, err = parseIntField(values, "rarity_level", "rarity level"); err != nil {
		return p, err
	}
	if p.SessionLength, err = parseSessionLengthField(values); err != nil {
		return p, err
	}
	if p.SessionsPerWeek, err = parseIntField(values, "sessions_per_week", "sessions per week"); err != nil {
		return p, err
	}
	if p.WeeksPerYear, err = parseIntField(values, "weeks_per_year", "weeks per year"); err != nil {
		return p, err
	}
	if p.RevShare, err = parsePercentField(values, "rev_share", "revenue share"); err != nil {
		return p, err
	}
	if p.FillRate, err = parsePercentField(values, "fill_rate", "fill rate"); err != nil {
		return p, err
	}
	if p.AddOns, err = parseAddOnsField(values); err != nil {
		return p, err
	}
	p.Rush = parseCheckbox(values, "rush")

	return p, nil
}

// calculatorQuery encodes in as calculator form values; parseCalculatorForm
// reverses it.
func calculatorQuery(in pricing.Input) url.Values {
	v := url.Values{}
	v.Set(submittedField, "1")
	v.Set("content_type", string(in.ContentType))
	v.Set("role", string(in.Role))
	v.Set("rarity", string(in.Rarity))
	v.Set("session_length", strconv.Itoa(int(in.SessionLength)))
	for _, a := range in.AddOns {
		v.Add("add_on", string(a))
	}
	if in.Rush {
		v.Set("rush", "1")
	}
	v.Set("stage", string(in.Stage))
	v.Set("sessions_per_week", strconv.Itoa(in.SessionsPerWeek))
	v.Set("weeks_per_year", strconv.Itoa(in.WeeksPerYear))
	v.Set("rev_share", money.Points(in.RevShare))
	v.Set("fill_rate", money.Points(in.FillRate))
	if in.AllowShare {
		v.Set("allow_share", "1")
	}
	v.Set("share_rev_pct", money.Points(in.ShareRevPct))
	v.Set("conversions_per_month", strconv.Itoa(in.ConversionsPerMonth))
	v.Set("avg_deal_size", strconv.FormatFloat(in.AvgDealSize, 'f', -1, 64))
	return v
}

func parseSessionLengthField(values url.Values) (*pricing.SessionLength, error) {
	minutes, err := parseIntField(values, "session_length", "session length")
	if err != nil || minutes == nil {
		return nil, err
	}
	l, err := pricing.ParseSessionLength(*minutes)
	if err != nil {
		return nil, err
	}
	return &l, nil
}

func parseIntField(values url.Values, key, field string) (*int, error) {
	raw := strings.TrimSpace(values.Get(key))
	if raw == "" {
		return nil, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return nil, &pricing.DomainError{Field: field, Value: raw, Reason: "must be a whole number"}
	}
	return &n, nil
}

func parseFloatField(values url.Values, key, field string) (*float64, error) {
	raw := strings.TrimSpace(values.Get(key))
	if raw == "" {
		return nil, nil
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil, &pricing.DomainError{Field: field, Value: raw, Reason: "must be numeric"}
	}
	return &f, nil
}

// parsePercentField reads a 0-100 form value as a fraction.
func parsePercentField(values url.Values, key, field string) (*float64, error) {
	f, err := parseFloatField(values, key, field)
	if err != nil || f == nil {
		return nil, err
	}
	fraction := *f / 100
	return &fraction, nil
}

func parseAddOnsField(values url.Values) (*[]pricing.AddOn, error) {
	raw, present := values["add_on"]
	if !present && !values.Has(submittedField) {
		return nil, nil
	}
	addOns := make([]pricing.AddOn, 0, len(raw))
	for _, r := range raw {
		a, err := pricing.ParseAddOn(r)
		if err != nil {
			return nil, err
		}
		addOns = append(addOns, a)
	}
	return &addOns, nil
}

func parseCheckbox(values url.Values, key string) *bool {
	if !values.Has(key) && !values.Has(submittedField) {
		return nil
	}
	on := values.Get(key) == "1"
	return &on
}

// userMessage renders err for display next to the form.
func userMessage(err error) string {
	var de *pricing.DomainError
	if errors.As(err, &de) {
		if de.Reason == "" {
			return fmt.Sprintf("Invalid %s.", de.Field)
		}
		return fmt.Sprintf("Invalid %s: %s.", de.Field, de.Reason)
	}
	return "Something went wrong. Please try again."
}
