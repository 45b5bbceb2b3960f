package geo

import "testing"

// TestEncode tests geohash encoding against known reference values.
func TestEncode(t *testing.T) {
	tests := []struct {
		name      string
		lat       float64
		lng       float64
		precision int
		expected  string
	}{
		{
			name:      "san francisco",
			lat:       37.7749,
			lng:       -122.4194,
			precision: 6,
			expected:  "9q8yyk",
		},
		{
			name:      "london",
			lat:       51.5074,
			lng:       -0.1278,
			precision: 6,
			expected:  "gcpvj0",
		},
		{
			name:      "new york",
			lat:       40.7128,
			lng:       -74.0060,
			precision: 6,
			expected:  "dr5reg",
		},
		{
			name:      "high precision",
			lat:       37.7749,
			lng:       -122.4194,
			precision: 9,
			expected:  "9q8yyk8yt",
		},
		{
			name:      "invalid precision falls back to default",
			lat:       37.7749,
			lng:       -122.4194,
			precision: 0,
			expected:  "9q8yyk",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Encode(tt.lat, tt.lng, tt.precision)
			if got != tt.expected {
				t.Errorf("Encode(%f, %f, %d) = %q, want %q", tt.lat, tt.lng, tt.precision, got, tt.expected)
			}
		})
	}
}

// TestEncodeCell tests the fixed-precision cell encoder used for feed
// proximity boosting.
func TestEncodeCell(t *testing.T) {
	tests := []struct {
		name     string
		lat      float64
		lng      float64
		expected string
	}{
		{"san francisco", 37.7749, -122.4194, "9q8yyk"},
		{"london", 51.5074, -0.1278, "gcpvj0"},
		{"new york", 40.7128, -74.0060, "dr5reg"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := EncodeCell(tt.lat, tt.lng)
			if got != tt.expected {
				t.Errorf("EncodeCell(%f, %f) = %q, want %q", tt.lat, tt.lng, got, tt.expected)
			}
			if len(got) != CellPrecision {
				t.Errorf("EncodeCell(%f, %f) produced %d characters, want %d",
					tt.lat, tt.lng, len(got), CellPrecision)
			}
			// A cell at native precision normalizes to itself
			if normalized := NormalizeCell(got); normalized != got {
				t.Errorf("NormalizeCell(%q) = %q, want identity", got, normalized)
			}
		})
	}
}

// TestNormalizeCell tests validation and truncation of cell identifiers.
func TestNormalizeCell(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{name: "already normalized", input: "9q8yyk", expected: "9q8yyk"},
		{name: "uppercase normalized to lowercase", input: "9Q8YYK", expected: "9q8yyk"},
		{name: "longer input truncated", input: "9q8yyk8yu", expected: "9q8yyk"},
		{name: "shorter input kept", input: "9q8", expected: "9q8"},
		{name: "empty input", input: "", expected: ""},
		{name: "invalid character rejected", input: "9q8yyi", expected: ""},
		{name: "whitespace rejected", input: "9q8 yk", expected: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NormalizeCell(tt.input)
			if got != tt.expected {
				t.Errorf("NormalizeCell(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}

// TestParentCell tests single-level containment.
func TestParentCell(t *testing.T) {
	if got := ParentCell("9q8yyk"); got != "9q8yy" {
		t.Errorf("ParentCell(9q8yyk) = %q, want 9q8yy", got)
	}
	if got := ParentCell("9"); got != "" {
		t.Errorf("ParentCell(9) = %q, want empty", got)
	}
	if got := ParentCell(""); got != "" {
		t.Errorf("ParentCell(empty) = %q, want empty", got)
	}
}

// TestContainmentDistance tests hierarchical cell distance buckets.
func TestContainmentDistance(t *testing.T) {
	tests := []struct {
		name     string
		a        string
		b        string
		expected int
	}{
		{name: "same cell", a: "9q8yyk", b: "9q8yyk", expected: 0},
		{name: "one level apart", a: "9q8yyk", b: "9q8yym", expected: 1},
		{name: "two levels apart", a: "9q8yyk", b: "9q8ytk", expected: 2},
		{name: "three levels apart", a: "9q8yyk", b: "9q8qqq", expected: 3},
		{name: "nothing shared", a: "9q8yyk", b: "u4pruy", expected: 6},
		{name: "uppercase tolerated", a: "9Q8YYK", b: "9q8yyk", expected: 0},
		{name: "unknown when first empty", a: "", b: "9q8yyk", expected: -1},
		{name: "unknown when second empty", a: "9q8yyk", b: "", expected: -1},
		{name: "unknown when invalid", a: "9q8yyi", b: "9q8yyk", expected: -1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ContainmentDistance(tt.a, tt.b)
			if got != tt.expected {
				t.Errorf("ContainmentDistance(%q, %q) = %d, want %d", tt.a, tt.b, got, tt.expected)
			}
		})
	}
}
