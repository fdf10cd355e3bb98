package pricing

import (
	"errors"
	"fmt"
	"math"
)

// ErrDomain is matched by every DomainError via errors.Is.
var ErrDomain = errors.New("value outside declared domain")

// DomainError reports an enumeration value or numeric parameter that falls
// outside its declared domain. It signals a caller bug, not a runtime condition.
type DomainError struct {
	Field  string
	Value  any
	Reason string
}

func (e *DomainError) Error() string {
	if e.Reason == "" {
		return fmt.Sprintf("pricing: invalid %s %v", e.Field, e.Value)
	}
	return fmt.Sprintf("pricing: invalid %s %v: %s", e.Field, e.Value, e.Reason)
}

func (e *DomainError) Unwrap() error { return ErrDomain }

func domainErr(field string, value any, reason string) error {
	return &DomainError{Field: field, Value: value, Reason: reason}
}

// finite rejects NaN and infinities, which slip past ordered comparisons.
func finite(field string, v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return domainErr(field, v, "must be a finite number")
	}
	return nil
}

// ContentType is the feedback-delivery format axis of the rate matrix.
type ContentType string

const (
	DiscoveryCall ContentType = "discovery-call"
	UsabilityTest ContentType = "usability-test"
	ConceptReview ContentType = "concept-review"
	AsyncSurvey   ContentType = "async-survey"
	Workshop      ContentType = "workshop"
)

// ContentTypes lists every content type in display order.
var ContentTypes = []ContentType{DiscoveryCall, UsabilityTest, ConceptReview, AsyncSurvey, Workshop}

var contentTypeLabels = map[ContentType]string{
	DiscoveryCall: "Discovery call",
	UsabilityTest: "Usability test",
	ConceptReview: "Concept review",
	AsyncSurvey:   "Async survey",
	Workshop:      "Workshop",
}

func (c ContentType) Label() string { return contentTypeLabels[c] }

// ParseContentType validates raw against the closed ContentType set.
func ParseContentType(raw string) (ContentType, error) {
	c := ContentType(raw)
	if _, ok := contentTypeLabels[c]; !ok {
		return "", domainErr("content type", raw, "unknown content type")
	}
	return c, nil
}

// Role is the seniority of the expert giving feedback.
type Role string

const (
	IndividualContributor Role = "individual-contributor"
	Manager               Role = "manager"
	Director              Role = "director"
	VP                    Role = "vp"
	CSuite                Role = "c-suite"
)

// Roles lists every role from least to most senior.
var Roles = []Role{IndividualContributor, Manager, Director, VP, CSuite}

var roleLabels = map[Role]string{
	IndividualContributor: "Individual Contributor",
	Manager:               "Manager",
	Director:              "Director",
	VP:                    "VP",
	CSuite:                "C-Suite",
}

func (r Role) Label() string { return roleLabels[r] }

// ParseRole validates raw against the closed Role set.
func ParseRole(raw string) (Role, error) {
	r := Role(raw)
	if _, ok := roleLabels[r]; !ok {
		return "", domainErr("role", raw, "unknown role")
	}
	return r, nil
}

// Rarity describes how uncommon the expert's domain knowledge is.
type Rarity string

const (
	Common      Rarity = "common"
	Specialized Rarity = "specialized"
	Rare        Rarity = "rare"
)

// Rarities lists every rarity tier from least to most scarce.
var Rarities = []Rarity{Common, Specialized, Rare}

var rarityLabels = map[Rarity]string{
	Common:      "Common",
	Specialized: "Specialized",
	Rare:        "Rare",
}

func (r Rarity) Label() string { return rarityLabels[r] }

// ParseRarity validates raw against the closed Rarity set.
func ParseRarity(raw string) (Rarity, error) {
	r := Rarity(raw)
	if _, ok := rarityLabels[r]; !ok {
		return "", domainErr("rarity", raw, "unknown rarity")
	}
	return r, nil
}

// SessionLength is a session duration in minutes.
type SessionLength int

// SessionLengths lists the offered durations in ascending order.
var SessionLengths = []SessionLength{30, 45, 60, 90}

// ParseSessionLength validates minutes against the offered durations.
func ParseSessionLength(minutes int) (SessionLength, error) {
	for _, l := range SessionLengths {
		if int(l) == minutes {
			return l, nil
		}
	}
	return 0, domainErr("session length", minutes, "must be one of 30, 45, 60, 90")
}

// AddOn is an optional deliverable that uplifts the session fee.
type AddOn string

const (
	Transcript AddOn = "transcript"
	Memo       AddOn = "memo"
	FollowUp   AddOn = "follow-up"
)

// AddOns lists every add-on in display order.
var AddOns = []AddOn{Transcript, Memo, FollowUp}

var addOnLabels = map[AddOn]string{
	Transcript: "Transcript",
	Memo:       "Written memo",
	FollowUp:   "Follow-up call",
}

func (a AddOn) Label() string { return addOnLabels[a] }

// ParseAddOn validates raw against the closed AddOn set.
func ParseAddOn(raw string) (AddOn, error) {
	a := AddOn(raw)
	if _, ok := addOnLabels[a]; !ok {
		return "", domainErr("add-on", raw, "unknown add-on")
	}
	return a, nil
}

// Stage is the maturity of the company buying feedback.
type Stage string

const (
	Seed       Stage = "seed"
	SeriesAB   Stage = "series-ab"
	Growth     Stage = "growth"
	Enterprise Stage = "enterprise"
)

// Stages lists every company stage from youngest to most mature.
var Stages = []Stage{Seed, SeriesAB, Growth, Enterprise}

var stageLabels = map[Stage]string{
	Seed:       "Seed",
	SeriesAB:   "Series A/B",
	Growth:     "Growth",
	Enterprise: "Enterprise",
}

func (s Stage) Label() string { return stageLabels[s] }

// ParseStage validates raw against the closed Stage set.
func ParseStage(raw string) (Stage, error) {
	s := Stage(raw)
	if _, ok := stageLabels[s]; !ok {
		return "", domainErr("company stage", raw, "unknown company stage")
	}
	return s, nil
}
