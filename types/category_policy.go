package types

import (
	"errors"
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"
)

type Category string

const (
	TreePlantation          Category = "Tree Plantation"
	SustainableCommute      Category = "Sustainable Commute"
	PublicTransport         Category = "Public Transport"
	CleanUpDrive            Category = "Clean-up Drive"
	WateringPlants          Category = "Watering Plants"
	RecyclingReuse          Category = "Recycling & Reuse"
	PlasticWasteReduction   Category = "Plastic Waste Reduction"
	EnergySaving            Category = "Energy Saving"
	WaterConservation       Category = "Water Conservation"
	SustainabilityAwareness Category = "Sustainability Awareness"
	UrbanGardening          Category = "Urban Gardening"
	Others                  Category = "others"
)

// VerifierKind names the evidence adapter bound to a category.
type VerifierKind string

const (
	VerifierNone      VerifierKind = "none"
	VerifierFixedGeo  VerifierKind = "fixed_geo"
	VerifierWalk      VerifierKind = "walk"
	VerifierPlanting  VerifierKind = "planting"
	VerifierTransport VerifierKind = "transport"
	VerifierCleanup   VerifierKind = "cleanup"
)

// DecisionRule selects how a verdict is turned into a disposition.
type DecisionRule string

const (
	// DecisionCatchAll sends the record straight to manual review without calling any adapter.
	DecisionCatchAll DecisionRule = "catch_all"
	// DecisionFixed approves with full points and ValidConfidence without calling any adapter.
	DecisionFixed DecisionRule = "fixed"
	// DecisionBinary approves or rejects on the verdict's validity flag alone.
	DecisionBinary DecisionRule = "binary"
	// DecisionBanded approves, defers or rejects on the verdict's confidence.
	DecisionBanded DecisionRule = "banded"
)

type EvidenceShape struct {
	MinImages      int `yaml:"min_images" json:"minImages"`
	MinVideos      int `yaml:"min_videos" json:"minVideos"`
	MaxVideos      int `yaml:"max_videos" json:"maxVideos"` // 0 means unbounded
	MinCoordinates int `yaml:"min_coordinates" json:"minCoordinates"`
}

type CategoryPolicy struct {
	Category          Category      `yaml:"category" json:"category"`
	MaxPoints         int           `yaml:"max_points" json:"maxPoints"`
	Verifier          VerifierKind  `yaml:"verifier" json:"verifier"`
	Decision          DecisionRule  `yaml:"decision" json:"decision"`
	Evidence          EvidenceShape `yaml:"evidence" json:"evidence"`
	ApproveAt         float64       `yaml:"approve_at" json:"approveAt,omitempty"`
	ReviewAt          float64       `yaml:"review_at" json:"reviewAt,omitempty"`
	ValidConfidence   float64       `yaml:"valid_confidence" json:"validConfidence,omitempty"`
	InvalidConfidence float64       `yaml:"invalid_confidence" json:"invalidConfidence,omitempty"`
	RejectClasses     []string      `yaml:"reject_classes" json:"rejectClasses,omitempty"`
}

var ErrUnknownCategory = errors.New("unknown category")

// PolicyTable is immutable after construction and safe for concurrent reads.
type PolicyTable struct {
	byCategory map[Category]CategoryPolicy
	order      []Category
}

func DefaultPolicies() []CategoryPolicy {
	return []CategoryPolicy{
		{
			Category:  TreePlantation,
			MaxPoints: 20,
			Verifier:  VerifierPlanting,
			Decision:  DecisionBanded,
			Evidence:  EvidenceShape{MinVideos: 1, MaxVideos: 1},
			ApproveAt: 0.6,
			ReviewAt:  0.4,
		},
		{
			Category:          SustainableCommute,
			MaxPoints:         10,
			Verifier:          VerifierWalk,
			Decision:          DecisionBinary,
			Evidence:          EvidenceShape{MinCoordinates: 2},
			ValidConfidence:   0.9,
			InvalidConfidence: 0.4,
		},
		{
			Category:      PublicTransport,
			MaxPoints:     10,
			Verifier:      VerifierTransport,
			Decision:      DecisionBanded,
			Evidence:      EvidenceShape{MinImages: 1},
			ApproveAt:     0.7,
			ReviewAt:      0.4,
			RejectClasses: []string{"not_transport"},
		},
		{
			Category:  CleanUpDrive,
			MaxPoints: 25,
			Verifier:  VerifierCleanup,
			Decision:  DecisionBanded,
			Evidence:  EvidenceShape{MinImages: 2},
			ApproveAt: 0.6,
			ReviewAt:  0.4,
		},
		{
			Category:        WateringPlants,
			MaxPoints:       2,
			Verifier:        VerifierFixedGeo,
			Decision:        DecisionFixed,
			ValidConfidence: 0.9,
		},
		{Category: RecyclingReuse, MaxPoints: 15, Verifier: VerifierNone, Decision: DecisionBanded, ApproveAt: 0.6, ReviewAt: 0.4},
		{Category: PlasticWasteReduction, MaxPoints: 5, Verifier: VerifierNone, Decision: DecisionBanded, ApproveAt: 0.6, ReviewAt: 0.4},
		{Category: EnergySaving, MaxPoints: 8, Verifier: VerifierNone, Decision: DecisionBanded, ApproveAt: 0.6, ReviewAt: 0.4},
		{Category: WaterConservation, MaxPoints: 10, Verifier: VerifierNone, Decision: DecisionBanded, ApproveAt: 0.6, ReviewAt: 0.4},
		{Category: SustainabilityAwareness, MaxPoints: 30, Verifier: VerifierNone, Decision: DecisionBanded, ApproveAt: 0.6, ReviewAt: 0.4},
		{Category: UrbanGardening, MaxPoints: 15, Verifier: VerifierNone, Decision: DecisionBanded, ApproveAt: 0.6, ReviewAt: 0.4},
		{Category: Others, MaxPoints: 10, Verifier: VerifierNone, Decision: DecisionCatchAll},
	}
}

func NewPolicyTable(policies []CategoryPolicy) (*PolicyTable, error) {
	t := &PolicyTable{byCategory: make(map[Category]CategoryPolicy, len(policies))}
	for _, p := range policies {
		if err := p.validate(); err != nil {
			return nil, fmt.Errorf("policy %q: %w", p.Category, err)
		}
		if _, dup := t.byCategory[p.Category]; dup {
			return nil, fmt.Errorf("policy %q: duplicate category", p.Category)
		}
		p.RejectClasses = append([]string(nil), p.RejectClasses...)
		t.byCategory[p.Category] = p
		t.order = append(t.order, p.Category)
	}
	fallback, ok := t.byCategory[Others]
	if !ok || fallback.Decision != DecisionCatchAll {
		return nil, fmt.Errorf("policy table needs a %q catch-all entry", Others)
	}
	return t, nil
}

// DefaultPolicyTable panics only if the built-in table is inconsistent.
func DefaultPolicyTable() *PolicyTable {
	t, err := NewPolicyTable(DefaultPolicies())
	if err != nil {
		panic(err)
	}
	return t
}

type policyFile struct {
	Policies []CategoryPolicy `yaml:"policies"`
}

// LoadPolicyTable returns the built-in table with entries from the YAML file at path
// replacing (or adding) categories. An empty path yields the defaults.
func LoadPolicyTable(path string) (*PolicyTable, error) {
	if path == "" {
		return NewPolicyTable(DefaultPolicies())
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read policy file: %w", err)
	}
	return ParsePolicyTable(raw)
}

func ParsePolicyTable(raw []byte) (*PolicyTable, error) {
	var file policyFile
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return nil, fmt.Errorf("parse policy file: %w", err)
	}

	merged := DefaultPolicies()
	index := make(map[Category]int, len(merged))
	for i, p := range merged {
		index[p.Category] = i
	}
	for _, p := range file.Policies {
		if i, ok := index[p.Category]; ok {
			merged[i] = p
			continue
		}
		index[p.Category] = len(merged)
		merged = append(merged, p)
	}
	return NewPolicyTable(merged)
}

// Lookup resolves a category. Unknown categories return the catch-all policy together
// with ErrUnknownCategory so callers can still route the record to manual review.
func (t *PolicyTable) Lookup(category string) (CategoryPolicy, error) {
	if p, ok := t.byCategory[Category(category)]; ok {
		return p, nil
	}
	return t.byCategory[Others], fmt.Errorf("%w: %q", ErrUnknownCategory, category)
}

func (t *PolicyTable) Policies() []CategoryPolicy {
	out := make([]CategoryPolicy, 0, len(t.order))
	for _, c := range t.order {
		out = append(out, t.byCategory[c])
	}
	return out
}

func (t *PolicyTable) Categories() []Category {
	return append([]Category(nil), t.order...)
}

// VerifierKinds lists the distinct adapters the table needs, sorted.
func (t *PolicyTable) VerifierKinds() []VerifierKind {
	seen := map[VerifierKind]bool{}
	var kinds []VerifierKind
	for _, p := range t.byCategory {
		if p.Decision == DecisionCatchAll || p.Decision == DecisionFixed {
			continue
		}
		if !seen[p.Verifier] {
			seen[p.Verifier] = true
			kinds = append(kinds, p.Verifier)
		}
	}
	sort.Slice(kinds, func(i, j int) bool { return kinds[i] < kinds[j] })
	return kinds
}

func (p CategoryPolicy) validate() error {
	if p.Category == "" {
		return errors.New("category name is required")
	}
	if p.MaxPoints < 0 {
		return errors.New("max_points must not be negative")
	}
	switch p.Verifier {
	case VerifierNone, VerifierFixedGeo, VerifierWalk, VerifierPlanting, VerifierTransport, VerifierCleanup:
	default:
		return fmt.Errorf("unknown verifier %q", p.Verifier)
	}
	if p.Evidence.MinImages < 0 || p.Evidence.MinVideos < 0 || p.Evidence.MaxVideos < 0 || p.Evidence.MinCoordinates < 0 {
		return errors.New("evidence counts must not be negative")
	}
	if p.Evidence.MaxVideos > 0 && p.Evidence.MaxVideos < p.Evidence.MinVideos {
		return errors.New("max_videos is below min_videos")
	}

	switch p.Decision {
	case DecisionCatchAll:
		if p.Verifier != VerifierNone {
			return errors.New("catch_all policies cannot bind a verifier")
		}
	case DecisionFixed:
		if p.Verifier != VerifierFixedGeo {
			return errors.New("fixed decisions need the fixed_geo verifier")
		}
		if !inUnit(p.ValidConfidence) {
			return errors.New("valid_confidence must be within [0,1]")
		}
	case DecisionBinary:
		if p.Verifier == VerifierNone || p.Verifier == VerifierFixedGeo {
			return errors.New("binary decisions need an evidence verifier")
		}
		if !inUnit(p.ValidConfidence) || !inUnit(p.InvalidConfidence) {
			return errors.New("valid_confidence and invalid_confidence must be within [0,1]")
		}
	case DecisionBanded:
		if p.Verifier == VerifierFixedGeo {
			return errors.New("banded decisions cannot use the fixed_geo verifier")
		}
		if !inUnit(p.ReviewAt) || !inUnit(p.ApproveAt) || p.ReviewAt > p.ApproveAt {
			return errors.New("thresholds must satisfy 0 <= review_at <= approve_at <= 1")
		}
	default:
		return fmt.Errorf("unknown decision rule %q", p.Decision)
	}
	return nil
}

func inUnit(v float64) bool {
	return v >= 0 && v <= 1
}
