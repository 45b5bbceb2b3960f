package geo

// BoostTable maps containment distance buckets to multiplicative score boosts.
// Values must be monotonically non-increasing from SameCell to ThreeLevels,
// and none may drop below 1.0: proximity boosts, it never penalizes.
type BoostTable struct {
	SameCell    float64 `json:"same_cell"`
	OneLevel    float64 `json:"one_level"`
	TwoLevels   float64 `json:"two_levels"`
	ThreeLevels float64 `json:"three_levels"`
}

// DefaultBoostTable returns the standard proximity boost table:
// same cell 1.5x, one level out 1.3x, two out 1.15x, three out 1.05x,
// anything farther (or unknown) 1.0x.
func DefaultBoostTable() BoostTable {
	return BoostTable{
		SameCell:    1.5,
		OneLevel:    1.3,
		TwoLevels:   1.15,
		ThreeLevels: 1.05,
	}
}

// Valid reports whether the table is monotonically non-increasing with
// distance and never penalizes (all entries >= 1.0).
func (t BoostTable) Valid() bool {
	return t.SameCell >= t.OneLevel &&
		t.OneLevel >= t.TwoLevels &&
		t.TwoLevels >= t.ThreeLevels &&
		t.ThreeLevels >= 1.0
}

// ProximityBoost computes the multiplicative geo boost between a requester
// cell and a content cell. Missing or invalid geo data on either side yields
// a neutral 1.0 (no boost, no penalty).
func ProximityBoost(requesterCell, contentCell string, table BoostTable) float64 {
	switch ContainmentDistance(requesterCell, contentCell) {
	case 0:
		return table.SameCell
	case 1:
		return table.OneLevel
	case 2:
		return table.TwoLevels
	case 3:
		return table.ThreeLevels
	default:
		// Farther than three levels, or unknown on either side.
		return 1.0
	}
}
