package types

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultPolicyTableLookup(t *testing.T) {
	table := DefaultPolicyTable()

	tests := []struct {
		category  Category
		maxPoints int
		verifier  VerifierKind
		decision  DecisionRule
	}{
		{TreePlantation, 20, VerifierPlanting, DecisionBanded},
		{SustainableCommute, 10, VerifierWalk, DecisionBinary},
		{PublicTransport, 10, VerifierTransport, DecisionBanded},
		{CleanUpDrive, 25, VerifierCleanup, DecisionBanded},
		{WateringPlants, 2, VerifierFixedGeo, DecisionFixed},
		{RecyclingReuse, 15, VerifierNone, DecisionBanded},
		{SustainabilityAwareness, 30, VerifierNone, DecisionBanded},
		{Others, 10, VerifierNone, DecisionCatchAll},
	}

	for _, tt := range tests {
		t.Run(string(tt.category), func(t *testing.T) {
			p, err := table.Lookup(string(tt.category))
			require.NoError(t, err)
			assert.Equal(t, tt.maxPoints, p.MaxPoints)
			assert.Equal(t, tt.verifier, p.Verifier)
			assert.Equal(t, tt.decision, p.Decision)
		})
	}
}

func TestLookupUnknownCategoryFallsBackToCatchAll(t *testing.T) {
	table := DefaultPolicyTable()

	p, err := table.Lookup("Bird Watching")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnknownCategory))
	assert.Equal(t, Others, p.Category)
	assert.Equal(t, DecisionCatchAll, p.Decision)
	assert.Equal(t, 10, p.MaxPoints)
}

func TestPoliciesKeepsDeclarationOrder(t *testing.T) {
	policies := DefaultPolicyTable().Policies()
	require.Len(t, policies, len(DefaultPolicies()))
	assert.Equal(t, TreePlantation, policies[0].Category)
	assert.Equal(t, Others, policies[len(policies)-1].Category)

	categories := DefaultPolicyTable().Categories()
	require.Len(t, categories, len(policies))
	for i, p := range policies {
		assert.Equal(t, p.Category, categories[i])
	}
}

func TestVerifierKinds(t *testing.T) {
	kinds := DefaultPolicyTable().VerifierKinds()
	assert.Equal(t, []VerifierKind{VerifierCleanup, VerifierNone, VerifierPlanting, VerifierTransport, VerifierWalk}, kinds)
}

func TestNewPolicyTableRejectsInvalidPolicies(t *testing.T) {
	catchAll := CategoryPolicy{Category: Others, MaxPoints: 10, Verifier: VerifierNone, Decision: DecisionCatchAll}

	tests := []struct {
		name   string
		policy CategoryPolicy
	}{
		{"negative points", CategoryPolicy{Category: "A", MaxPoints: -1, Verifier: VerifierNone, Decision: DecisionBanded}},
		{"unknown verifier", CategoryPolicy{Category: "A", Verifier: "sonar", Decision: DecisionBanded}},
		{"inverted thresholds", CategoryPolicy{Category: "A", Verifier: VerifierCleanup, Decision: DecisionBanded, ApproveAt: 0.3, ReviewAt: 0.5}},
		{"threshold above one", CategoryPolicy{Category: "A", Verifier: VerifierCleanup, Decision: DecisionBanded, ApproveAt: 1.2, ReviewAt: 0.5}},
		{"binary without verifier", CategoryPolicy{Category: "A", Verifier: VerifierNone, Decision: DecisionBinary, ValidConfidence: 0.9}},
		{"fixed with ml verifier", CategoryPolicy{Category: "A", Verifier: VerifierPlanting, Decision: DecisionFixed, ValidConfidence: 0.9}},
		{"unknown decision", CategoryPolicy{Category: "A", Verifier: VerifierNone, Decision: "coinflip"}},
		{"max below min videos", CategoryPolicy{Category: "A", Verifier: VerifierPlanting, Decision: DecisionBanded, Evidence: EvidenceShape{MinVideos: 2, MaxVideos: 1}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewPolicyTable([]CategoryPolicy{tt.policy, catchAll})
			assert.Error(t, err)
		})
	}
}

func TestNewPolicyTableRequiresCatchAll(t *testing.T) {
	_, err := NewPolicyTable([]CategoryPolicy{
		{Category: WateringPlants, MaxPoints: 2, Verifier: VerifierFixedGeo, Decision: DecisionFixed, ValidConfidence: 0.9},
	})
	assert.Error(t, err)
}

func TestNewPolicyTableRejectsDuplicates(t *testing.T) {
	p := CategoryPolicy{Category: Others, MaxPoints: 10, Verifier: VerifierNone, Decision: DecisionCatchAll}
	_, err := NewPolicyTable([]CategoryPolicy{p, p})
	assert.Error(t, err)
}

func TestParsePolicyTableOverridesAndAdds(t *testing.T) {
	raw := []byte(`
policies:
  - category: Tree Plantation
    max_points: 40
    verifier: planting
    decision: banded
    approve_at: 0.75
    review_at: 0.5
    evidence:
      min_videos: 1
      max_videos: 1
  - category: Composting
    max_points: 6
    verifier: none
    decision: banded
    approve_at: 0.6
    review_at: 0.4
`)
	table, err := ParsePolicyTable(raw)
	require.NoError(t, err)

	p, err := table.Lookup(string(TreePlantation))
	require.NoError(t, err)
	assert.Equal(t, 40, p.MaxPoints)
	assert.Equal(t, 0.75, p.ApproveAt)

	p, err = table.Lookup("Composting")
	require.NoError(t, err)
	assert.Equal(t, 6, p.MaxPoints)

	p, err = table.Lookup(string(SustainableCommute))
	require.NoError(t, err)
	assert.Equal(t, 10, p.MaxPoints)
}

func TestLoadPolicyTable(t *testing.T) {
	t.Run("empty path uses defaults", func(t *testing.T) {
		table, err := LoadPolicyTable("")
		require.NoError(t, err)
		assert.Len(t, table.Policies(), len(DefaultPolicies()))
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := LoadPolicyTable(filepath.Join(t.TempDir(), "missing.yaml"))
		assert.Error(t, err)
	})

	t.Run("invalid override fails", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "policies.yaml")
		require.NoError(t, os.WriteFile(path, []byte("policies:\n  - category: others\n    verifier: walk\n    decision: catch_all\n"), 0o600))
		_, err := LoadPolicyTable(path)
		assert.Error(t, err)
	})
}

func TestEvidenceShapeCheck(t *testing.T) {
	planting := EvidenceShape{MinVideos: 1, MaxVideos: 1}
	assert.NoError(t, planting.Check(2, 1, 0))
	assert.ErrorIs(t, planting.Check(2, 0, 0), ErrEvidenceShape)
	assert.ErrorIs(t, planting.Check(0, 2, 0), ErrEvidenceShape)

	cleanup := EvidenceShape{MinImages: 2}
	assert.NoError(t, cleanup.Check(2, 0, 0))
	assert.ErrorIs(t, cleanup.Check(1, 0, 0), ErrEvidenceShape)

	commute := EvidenceShape{MinCoordinates: 2}
	assert.NoError(t, commute.Check(0, 0, 5))
	assert.ErrorIs(t, commute.Check(0, 0, 1), ErrEvidenceShape)
}

func TestCalculateDistance(t *testing.T) {
	assert.InDelta(t, 0.0, CalculateDistance(28.6, 77.2, 28.6, 77.2), 1e-9)
	// One degree of latitude is roughly 111.19 km.
	assert.InDelta(t, 111.19, CalculateDistance(0, 0, 1, 0), 0.01)
	assert.InDelta(t, 222.39, TraceDistance([]float64{0, 1, 2}, []float64{0, 0, 0}), 0.02)
	assert.True(t, ValidCoordinate(45, 120))
	assert.False(t, ValidCoordinate(91, 0))
	assert.False(t, ValidCoordinate(0, -181))
}
