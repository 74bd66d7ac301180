package rank

// Tier is a customer loyalty class driven by the cumulative sale-price total
// of the customer's sold items.
type Tier string

const (
	Bronze   Tier = "bronze"
	Silver   Tier = "silver"
	Gold     Tier = "gold"
	Platinum Tier = "platinum"
)

type tierInfo struct {
	threshold float64
	name      string
	color     string
}

// Table is the immutable tier configuration: inclusive lower bounds plus the
// fixed display name and color per tier. Build it once at startup with
// Default and inject it where rank decisions are made.
type Table struct {
	// descending threshold order; Classify depends on it
	order []Tier
	info  map[Tier]tierInfo
}

// Default returns the standard four-tier table.
func Default() Table {
	return Table{
		order: []Tier{Platinum, Gold, Silver, Bronze},
		info: map[Tier]tierInfo{
			Platinum: {threshold: 100000, name: "プラチナ", color: "#E5E4E2"},
			Gold:     {threshold: 50000, name: "ゴールド", color: "#FFD700"},
			Silver:   {threshold: 10000, name: "シルバー", color: "#C0C0C0"},
			Bronze:   {threshold: 0, name: "ブロンズ", color: "#CD7F32"},
		},
	}
}

// Classify maps a cumulative total to a tier, evaluating thresholds highest
// first. Totals below every positive threshold (including negative ones)
// land on the lowest tier.
func (t Table) Classify(total float64) Tier {
	for _, tier := range t.order {
		if total >= t.info[tier].threshold {
			return tier
		}
	}
	return t.order[len(t.order)-1]
}

// Next returns the tier above cur and its threshold. ok is false when cur is
// the terminal tier.
func (t Table) Next(cur Tier) (next Tier, threshold float64, ok bool) {
	for i, tier := range t.order {
		if tier == cur && i > 0 {
			up := t.order[i-1]
			return up, t.info[up].threshold, true
		}
	}
	return "", 0, false
}

// Tiers lists all tiers from highest to lowest.
func (t Table) Tiers() []Tier {
	out := make([]Tier, len(t.order))
	copy(out, t.order)
	return out
}

// Name returns the display name for a tier.
func (t Table) Name(tier Tier) string { return t.info[tier].name }

// Color returns the display color for a tier.
func (t Table) Color(tier Tier) string { return t.info[tier].color }

// Threshold returns the inclusive lower bound for a tier.
func (t Table) Threshold(tier Tier) float64 { return t.info[tier].threshold }

// Valid reports whether tier is one of the configured tiers.
func (t Table) Valid(tier Tier) bool {
	_, ok := t.info[tier]
	return ok
}
