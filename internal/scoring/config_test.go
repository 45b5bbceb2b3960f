package scoring

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/UnitedWeRise-org/UnitedWeRise-sub011/internal/geo"
)

// TestDefaultWeights verifies the documented default calibration.
func TestDefaultWeights(t *testing.T) {
	w := DefaultWeights()

	if w.Relationship.Subscribed != 2.0 {
		t.Errorf("subscribed weight = %f, want 2.0", w.Relationship.Subscribed)
	}
	if w.Relationship.Friend != 1.5 {
		t.Errorf("friend weight = %f, want 1.5", w.Relationship.Friend)
	}
	if w.Relationship.Followed != 1.0 {
		t.Errorf("followed weight = %f, want 1.0", w.Relationship.Followed)
	}
	if w.Decay.HalfLifeHours != 24 {
		t.Errorf("half life = %f, want 24", w.Decay.HalfLifeHours)
	}
	if !w.Geo.Valid() {
		t.Error("default geo table is not valid")
	}
}

// TestMergeCalibration tests partial override merging.
func TestMergeCalibration(t *testing.T) {
	tests := []struct {
		name     string
		override *Weights
		check    func(t *testing.T, w *Weights)
	}{
		{
			name:     "nil override returns base copy",
			override: nil,
			check: func(t *testing.T, w *Weights) {
				if w.Relationship.Subscribed != 2.0 {
					t.Errorf("subscribed = %f, want 2.0", w.Relationship.Subscribed)
				}
			},
		},
		{
			name:     "partial relationship override",
			override: &Weights{Relationship: RelationshipWeights{Friend: 1.8}},
			check: func(t *testing.T, w *Weights) {
				if w.Relationship.Friend != 1.8 {
					t.Errorf("friend = %f, want 1.8", w.Relationship.Friend)
				}
				if w.Relationship.Subscribed != 2.0 {
					t.Errorf("subscribed = %f, want unchanged 2.0", w.Relationship.Subscribed)
				}
			},
		},
		{
			name:     "decay override",
			override: &Weights{Decay: DecayWeights{HalfLifeHours: 48}},
			check: func(t *testing.T, w *Weights) {
				if w.Decay.HalfLifeHours != 48 {
					t.Errorf("half life = %f, want 48", w.Decay.HalfLifeHours)
				}
			},
		},
		{
			name:     "geo override keeps unset buckets",
			override: &Weights{Geo: geo.BoostTable{SameCell: 2.0}},
			check: func(t *testing.T, w *Weights) {
				if w.Geo.SameCell != 2.0 {
					t.Errorf("same cell = %f, want 2.0", w.Geo.SameCell)
				}
				if w.Geo.OneLevel != 1.3 {
					t.Errorf("one level = %f, want unchanged 1.3", w.Geo.OneLevel)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			merged := MergeCalibration(DefaultWeights(), tt.override)
			tt.check(t, merged)
		})
	}
}

// TestMergeCalibrationNilBase verifies the nil-base guard.
func TestMergeCalibrationNilBase(t *testing.T) {
	merged := MergeCalibration(nil, &Weights{Decay: DecayWeights{HalfLifeHours: 6}})
	if merged == nil {
		t.Fatal("expected non-nil weights")
	}
	if merged.Decay.HalfLifeHours != 24 {
		t.Errorf("half life = %f, want default 24", merged.Decay.HalfLifeHours)
	}
}

// TestLoadCalibration tests loading from a JSON file with partial overrides.
func TestLoadCalibration(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "calibration.json")
	content := `{
		"version": "1",
		"weights": {
			"relationship": {"subscribed": 3.0},
			"decay": {"half_life_hours": 12}
		}
	}`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("failed to write calibration file: %v", err)
	}

	w, err := LoadCalibration(path)
	if err != nil {
		t.Fatalf("LoadCalibration returned error: %v", err)
	}
	if w.Relationship.Subscribed != 3.0 {
		t.Errorf("subscribed = %f, want 3.0", w.Relationship.Subscribed)
	}
	if w.Decay.HalfLifeHours != 12 {
		t.Errorf("half life = %f, want 12", w.Decay.HalfLifeHours)
	}
	// Untouched values keep defaults.
	if w.Relationship.Friend != 1.5 {
		t.Errorf("friend = %f, want default 1.5", w.Relationship.Friend)
	}
	if math.Abs(w.Geo.SameCell-1.5) > tolerance {
		t.Errorf("geo same cell = %f, want default 1.5", w.Geo.SameCell)
	}
}

// TestLoadCalibrationMissingFile verifies graceful degradation to defaults.
func TestLoadCalibrationMissingFile(t *testing.T) {
	w, err := LoadCalibration("/nonexistent/calibration.json")
	if err == nil {
		t.Error("expected error for missing file")
	}
	if w == nil {
		t.Fatal("expected default weights despite error")
	}
	if w.Relationship.Subscribed != 2.0 {
		t.Errorf("subscribed = %f, want default 2.0", w.Relationship.Subscribed)
	}
}

// TestLoadCalibrationInvalidJSON verifies graceful degradation on parse failure.
func TestLoadCalibrationInvalidJSON(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bad.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o600); err != nil {
		t.Fatalf("failed to write file: %v", err)
	}

	w, err := LoadCalibration(path)
	if err == nil {
		t.Error("expected error for invalid JSON")
	}
	if w == nil || w.Decay.HalfLifeHours != 24 {
		t.Error("expected default weights despite error")
	}
}

// TestLoadCalibrationRejectsNonMonotonicGeo verifies the geo table guard.
func TestLoadCalibrationRejectsNonMonotonicGeo(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "geo.json")
	content := `{"weights": {"geo": {"same_cell": 1.1, "one_level": 1.4, "two_levels": 1.2, "three_levels": 1.05}}}`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("failed to write file: %v", err)
	}

	w, err := LoadCalibration(path)
	if err != nil {
		t.Fatalf("LoadCalibration returned error: %v", err)
	}
	if w.Geo != geo.DefaultBoostTable() {
		t.Errorf("geo table = %+v, want default after rejecting non-monotonic override", w.Geo)
	}
}
