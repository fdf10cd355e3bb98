package pricing

import (
	"bytes"
	_ "embed"
	"fmt"
	"io"
	"math"
	"sync"

	"gopkg.in/yaml.v3"
)

//go:embed rates.yaml
var defaultRatesYAML []byte

// Profile identifies the expert being priced. Each RateSource reads only the
// axes it prices on: Matrix uses ContentType, Role and Rarity; Seniority uses
// Role and RarityLevel.
type Profile struct {
	ContentType ContentType
	Role        Role
	Rarity      Rarity
	RarityLevel int
}

// RateSource supplies the base rate and multipliers consumed by Derive.
type RateSource interface {
	BaseRate(p Profile) (float64, error)
	LengthMultiplier(l SessionLength) (float64, error)
	AddOnUplift(a AddOn) (float64, error)
	StageMultiplier(s Stage) (float64, error)
	Rush() RushRule
}

// RushRule charges a percentage of the base rate below Threshold and a flat
// fee at or above it.
type RushRule struct {
	FlatFee    float64 `yaml:"flat_fee"`
	Percentage float64 `yaml:"percentage"`
	Threshold  float64 `yaml:"threshold"`
}

// Fee returns the rush surcharge for a session priced at base.
func (r RushRule) Fee(base float64) float64 {
	if base >= r.Threshold {
		return r.FlatFee
	}
	return base * r.Percentage
}

// Multipliers holds the tables shared by every rate source.
type Multipliers struct {
	length map[SessionLength]float64
	addOns map[AddOn]float64
	stages map[Stage]float64
	rush   RushRule
}

func (m *Multipliers) LengthMultiplier(l SessionLength) (float64, error) {
	v, ok := m.length[l]
	if !ok {
		return 0, domainErr("session length", int(l), "no multiplier defined")
	}
	return v, nil
}

func (m *Multipliers) AddOnUplift(a AddOn) (float64, error) {
	v, ok := m.addOns[a]
	if !ok {
		return 0, domainErr("add-on", string(a), "unknown add-on")
	}
	return v, nil
}

func (m *Multipliers) StageMultiplier(s Stage) (float64, error) {
	v, ok := m.stages[s]
	if !ok {
		return 0, domainErr("company stage", string(s), "unknown company stage")
	}
	return v, nil
}

func (m *Multipliers) Rush() RushRule { return m.rush }

// Matrix prices sessions from the ContentType × Role × Rarity table.
type Matrix struct {
	*Multipliers
	rates map[ContentType]map[Role]map[Rarity]float64
}

// Rate looks up a single matrix cell.
func (m *Matrix) Rate(c ContentType, r Role, rarity Rarity) (float64, error) {
	byRole, ok := m.rates[c]
	if !ok {
		return 0, domainErr("content type", string(c), "unknown content type")
	}
	byRarity, ok := byRole[r]
	if !ok {
		return 0, domainErr("role", string(r), "unknown role")
	}
	v, ok := byRarity[rarity]
	if !ok {
		return 0, domainErr("rarity", string(rarity), "unknown rarity")
	}
	return v, nil
}

func (m *Matrix) BaseRate(p Profile) (float64, error) {
	return m.Rate(p.ContentType, p.Role, p.Rarity)
}

// Seniority prices sessions from a continuous formula over role seniority and
// a 1..MaxRarityLevel rarity level. Session length scales linearly.
type Seniority struct {
	*Multipliers
	BaseHourly     float64
	RarityStep     float64
	MaxRarityLevel int
	roles          map[Role]float64
}

// Rate returns BaseHourly × seniority(role) × (1 + RarityStep × (level − 1)).
func (s *Seniority) Rate(r Role, level int) (float64, error) {
	mult, ok := s.roles[r]
	if !ok {
		return 0, domainErr("role", string(r), "unknown role")
	}
	if level < 1 || level > s.MaxRarityLevel {
		return 0, domainErr("rarity level", level, fmt.Sprintf("must be between 1 and %d", s.MaxRarityLevel))
	}
	return s.BaseHourly * mult * (1 + s.RarityStep*float64(level-1)), nil
}

func (s *Seniority) BaseRate(p Profile) (float64, error) {
	return s.Rate(p.Role, p.RarityLevel)
}

// LengthMultiplier is minutes / 60 over the offered durations.
func (s *Seniority) LengthMultiplier(l SessionLength) (float64, error) {
	if _, err := ParseSessionLength(int(l)); err != nil {
		return 0, err
	}
	return float64(l) / 60, nil
}

// Tables is a validated set of rate tables.
type Tables struct {
	multipliers *Multipliers
	matrix      *Matrix
	seniority   *Seniority
}

// Matrix returns the rate-matrix source used by the advanced calculator.
func (t *Tables) Matrix() *Matrix { return t.matrix }

// Seniority returns the formula source used by the quick estimator.
func (t *Tables) Seniority() *Seniority { return t.seniority }

type tablesFile struct {
	BaseRates     map[string]map[string]map[string]float64 `yaml:"base_rates"`
	SessionLength map[int]float64                          `yaml:"session_length"`
	AddOns        map[string]float64                       `yaml:"add_ons"`
	CompanyStage  map[string]float64                       `yaml:"company_stage"`
	Rush          RushRule                                 `yaml:"rush"`
	Seniority     struct {
		BaseHourly     float64            `yaml:"base_hourly"`
		RarityStep     float64            `yaml:"rarity_step"`
		MaxRarityLevel int                `yaml:"max_rarity_level"`
		Roles          map[string]float64 `yaml:"roles"`
	} `yaml:"seniority"`
}

var (
	defaultTablesOnce sync.Once
	defaultTables     *Tables
)

// DefaultTables returns the embedded rate tables. It panics if the embedded
// document is invalid, which only a broken build can cause.
func DefaultTables() *Tables {
	defaultTablesOnce.Do(func() {
		t, err := LoadTables(bytes.NewReader(defaultRatesYAML))
		if err != nil {
			panic(fmt.Sprintf("pricing: embedded rate tables: %v", err))
		}
		defaultTables = t
	})
	return defaultTables
}

// LoadTables parses a YAML rate document and checks every table invariant.
func LoadTables(r io.Reader) (*Tables, error) {
	var f tablesFile
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil {
		return nil, fmt.Errorf("decode rate tables: %w", err)
	}

	m, err := buildMultipliers(f)
	if err != nil {
		return nil, err
	}
	matrix, err := buildMatrix(f, m)
	if err != nil {
		return nil, err
	}
	seniority, err := buildSeniority(f, m)
	if err != nil {
		return nil, err
	}

	return &Tables{multipliers: m, matrix: matrix, seniority: seniority}, nil
}

func buildMultipliers(f tablesFile) (*Multipliers, error) {
	m := &Multipliers{
		length: make(map[SessionLength]float64, len(SessionLengths)),
		addOns: make(map[AddOn]float64, len(AddOns)),
		stages: make(map[Stage]float64, len(Stages)),
		rush:   f.Rush,
	}

	prev := 0.0
	for _, l := range SessionLengths {
		v, ok := f.SessionLength[int(l)]
		if !ok {
			return nil, domainErr("session length", int(l), "missing multiplier")
		}
		if err := finite("session length multiplier", v); err != nil {
			return nil, err
		}
		if v <= 0 || v > 1.5 {
			return nil, domainErr("session length multiplier", v, "must be in (0, 1.5]")
		}
		if v < prev {
			return nil, domainErr("session length multiplier", v, "must not decrease with length")
		}
		m.length[l] = v
		prev = v
	}
	if len(f.SessionLength) != len(SessionLengths) {
		return nil, domainErr("session length table", len(f.SessionLength), "unexpected entries")
	}

	for _, a := range AddOns {
		v, ok := f.AddOns[string(a)]
		if !ok {
			return nil, domainErr("add-on", string(a), "missing uplift")
		}
		if err := finite("add-on uplift", v); err != nil {
			return nil, err
		}
		if v < 0 || v >= 1 {
			return nil, domainErr("add-on uplift", v, "must be in [0, 1)")
		}
		m.addOns[a] = v
	}
	if len(f.AddOns) != len(AddOns) {
		return nil, domainErr("add-on table", len(f.AddOns), "unexpected entries")
	}

	prev = 1
	for _, s := range Stages {
		v, ok := f.CompanyStage[string(s)]
		if !ok {
			return nil, domainErr("company stage", string(s), "missing multiplier")
		}
		if err := finite("company stage multiplier", v); err != nil {
			return nil, err
		}
		if v < prev {
			return nil, domainErr("company stage multiplier", v, "must be >= 1 and not decrease with maturity")
		}
		m.stages[s] = v
		prev = v
	}
	if len(f.CompanyStage) != len(Stages) {
		return nil, domainErr("company stage table", len(f.CompanyStage), "unexpected entries")
	}

	for _, v := range []float64{f.Rush.FlatFee, f.Rush.Percentage, f.Rush.Threshold} {
		if err := finite("rush rule", v); err != nil {
			return nil, err
		}
	}
	if f.Rush.FlatFee <= 0 || f.Rush.Percentage <= 0 || f.Rush.Threshold <= 0 {
		return nil, domainErr("rush rule", f.Rush, "flat fee, percentage and threshold must be positive")
	}

	return m, nil
}

func buildMatrix(f tablesFile, m *Multipliers) (*Matrix, error) {
	if len(f.BaseRates) != len(ContentTypes) {
		return nil, domainErr("rate matrix", len(f.BaseRates), "unexpected content types")
	}

	rates := make(map[ContentType]map[Role]map[Rarity]float64, len(ContentTypes))
	for _, c := range ContentTypes {
		byRole, ok := f.BaseRates[string(c)]
		if !ok {
			return nil, domainErr("rate matrix", string(c), "missing content type")
		}
		rates[c] = make(map[Role]map[Rarity]float64, len(Roles))
		for _, r := range Roles {
			byRarity, ok := byRole[string(r)]
			if !ok {
				return nil, domainErr("rate matrix", fmt.Sprintf("%s/%s", c, r), "missing role")
			}
			rates[c][r] = make(map[Rarity]float64, len(Rarities))
			for _, rarity := range Rarities {
				v, ok := byRarity[string(rarity)]
				if !ok {
					return nil, domainErr("rate matrix", fmt.Sprintf("%s/%s/%s", c, r, rarity), "missing rate")
				}
				if !(v > 0) || math.IsInf(v, 0) {
					return nil, domainErr("rate matrix", fmt.Sprintf("%s/%s/%s", c, r, rarity), "rate must be positive and finite")
				}
				rates[c][r][rarity] = v
			}
			if len(byRarity) != len(Rarities) {
				return nil, domainErr("rate matrix", fmt.Sprintf("%s/%s", c, r), "unexpected rarities")
			}
		}
		if len(byRole) != len(Roles) {
			return nil, domainErr("rate matrix", string(c), "unexpected roles")
		}
	}

	return &Matrix{Multipliers: m, rates: rates}, nil
}

func buildSeniority(f tablesFile, m *Multipliers) (*Seniority, error) {
	cfg := f.Seniority
	if err := finite("seniority base hourly", cfg.BaseHourly); err != nil {
		return nil, err
	}
	if err := finite("seniority rarity step", cfg.RarityStep); err != nil {
		return nil, err
	}
	if cfg.BaseHourly <= 0 {
		return nil, domainErr("seniority base hourly", cfg.BaseHourly, "must be positive")
	}
	if cfg.RarityStep < 0 {
		return nil, domainErr("seniority rarity step", cfg.RarityStep, "must not be negative")
	}
	if cfg.MaxRarityLevel < 1 {
		return nil, domainErr("seniority max rarity level", cfg.MaxRarityLevel, "must be at least 1")
	}

	roles := make(map[Role]float64, len(Roles))
	for _, r := range Roles {
		v, ok := cfg.Roles[string(r)]
		if !ok {
			return nil, domainErr("seniority", string(r), "missing role multiplier")
		}
		if !(v > 0) || math.IsInf(v, 0) {
			return nil, domainErr("seniority", string(r), "multiplier must be positive and finite")
		}
		roles[r] = v
	}
	if len(cfg.Roles) != len(Roles) {
		return nil, domainErr("seniority", len(cfg.Roles), "unexpected role entries")
	}

	return &Seniority{
		Multipliers:    m,
		BaseHourly:     cfg.BaseHourly,
		RarityStep:     cfg.RarityStep,
		MaxRarityLevel: cfg.MaxRarityLevel,
		roles:          roles,
	}, nil
}
