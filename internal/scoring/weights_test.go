package scoring

import (
	"math"
	"testing"
	"time"
)

const tolerance = 0.0001

// TestTimeDecay tests the exponential age decay factor.
func TestTimeDecay(t *testing.T) {
	halfLife := 24 * time.Hour

	tests := []struct {
		name     string
		age      time.Duration
		expected float64
	}{
		{name: "brand new content", age: 0, expected: 1.0},
		{name: "future-dated content clamps", age: -time.Hour, expected: 1.0},
		{name: "one half-life", age: 24 * time.Hour, expected: 0.5},
		{name: "two half-lives", age: 48 * time.Hour, expected: 0.25},
		{name: "half of a half-life", age: 12 * time.Hour, expected: math.Pow(0.5, 0.5)},
		{name: "week-old content", age: 7 * 24 * time.Hour, expected: math.Pow(0.5, 7)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := TimeDecay(tt.age, halfLife)
			if math.Abs(got-tt.expected) > tolerance {
				t.Errorf("TimeDecay(%v) = %f, want %f", tt.age, got, tt.expected)
			}
		})
	}
}

// TestTimeDecayMonotonic verifies older content never outscores newer content.
func TestTimeDecayMonotonic(t *testing.T) {
	halfLife := 24 * time.Hour
	prev := math.Inf(1)
	for age := time.Duration(0); age <= 96*time.Hour; age += time.Hour {
		d := TimeDecay(age, halfLife)
		if d > prev {
			t.Fatalf("decay increased at age %v: %f > %f", age, d, prev)
		}
		if d <= 0 || d > 1 {
			t.Fatalf("decay out of (0,1] at age %v: %f", age, d)
		}
		prev = d
	}
}

// TestReputationFactor tests the light reputation multiplier.
func TestReputationFactor(t *testing.T) {
	tests := []struct {
		name       string
		reputation float64
		maxBoost   float64
		expected   float64
	}{
		{name: "zero reputation is neutral", reputation: 0, maxBoost: 0.5, expected: 1.0},
		{name: "full reputation", reputation: 1.0, maxBoost: 0.5, expected: 1.5},
		{name: "half reputation", reputation: 0.5, maxBoost: 0.5, expected: 1.25},
		{name: "negative reputation clamps", reputation: -0.3, maxBoost: 0.5, expected: 1.0},
		{name: "overshoot clamps", reputation: 2.0, maxBoost: 0.5, expected: 1.5},
		{name: "zero boost disables", reputation: 1.0, maxBoost: 0, expected: 1.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ReputationFactor(tt.reputation, tt.maxBoost)
			if math.Abs(got-tt.expected) > tolerance {
				t.Errorf("ReputationFactor(%f, %f) = %f, want %f", tt.reputation, tt.maxBoost, got, tt.expected)
			}
		})
	}
}

// TestCosineSimilarity tests embedding similarity including degenerate inputs.
func TestCosineSimilarity(t *testing.T) {
	tests := []struct {
		name     string
		a        []float64
		b        []float64
		expected float64
	}{
		{name: "identical vectors", a: []float64{1, 2, 3}, b: []float64{1, 2, 3}, expected: 1.0},
		{name: "opposite vectors", a: []float64{1, 0}, b: []float64{-1, 0}, expected: -1.0},
		{name: "orthogonal vectors", a: []float64{1, 0}, b: []float64{0, 1}, expected: 0.0},
		{name: "scaled vectors", a: []float64{1, 1}, b: []float64{5, 5}, expected: 1.0},
		{name: "empty first vector", a: nil, b: []float64{1, 2}, expected: 0.0},
		{name: "empty second vector", a: []float64{1, 2}, b: nil, expected: 0.0},
		{name: "dimension mismatch", a: []float64{1, 2}, b: []float64{1, 2, 3}, expected: 0.0},
		{name: "zero magnitude", a: []float64{0, 0}, b: []float64{1, 2}, expected: 0.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CosineSimilarity(tt.a, tt.b)
			if math.Abs(got-tt.expected) > tolerance {
				t.Errorf("CosineSimilarity = %f, want %f", got, tt.expected)
			}
		})
	}
}

// TestEngagement tests engagement score derivation from interaction counts.
func TestEngagement(t *testing.T) {
	tests := []struct {
		name     string
		likes    int
		comments int
		shares   int
		expected float64
	}{
		{name: "no interactions", likes: 0, comments: 0, shares: 0, expected: 0},
		{name: "likes only", likes: 10, comments: 0, shares: 0, expected: 10},
		{name: "weighted mix", likes: 5, comments: 3, shares: 2, expected: 17},
		{name: "negative counts clamp", likes: -1, comments: -2, shares: -3, expected: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Engagement(tt.likes, tt.comments, tt.shares)
			if math.Abs(got-tt.expected) > tolerance {
				t.Errorf("Engagement(%d, %d, %d) = %f, want %f", tt.likes, tt.comments, tt.shares, got, tt.expected)
			}
		})
	}
}
