package restaurant

// PriceTier is the raw price symbol from the dataset. The empty tier means absent.
type PriceTier string

// Recognised price tiers.
const (
	TierAbsent PriceTier = ""
	TierLow    PriceTier = "$"
	TierMid    PriceTier = "$$"
	TierHigh   PriceTier = "$$$"
)

// IsAbsent reports whether the dataset carried no price for the row.
func (t PriceTier) IsAbsent() bool { return t == TierAbsent }

// PriceLabel is the display bucket derived from a PriceTier.
type PriceLabel string

// Price label buckets. Unlabeled is what an unrecognised tier keeps.
const (
	LabelUnder10 PriceLabel = "Under $10"
	Label11To30  PriceLabel = "$11-30"
	LabelOver31  PriceLabel = "Over $31"
	LabelOther   PriceLabel = "Other"
	Unlabeled    PriceLabel = ""
)

// LegendOrder is the fixed category order for legends and traces.
func LegendOrder() []PriceLabel {
	return []PriceLabel{LabelUnder10, Label11To30, LabelOver31, LabelOther}
}

// IsKnown reports whether l is one of the four buckets.
func (l PriceLabel) IsKnown() bool {
	switch l {
	case LabelUnder10, Label11To30, LabelOver31, LabelOther:
		return true
	}
	return false
}

// Color returns the marker color of the bucket. Unlabeled rows get the first
// default qualitative color, matching how an unmapped category is drawn.
func (l PriceLabel) Color() string {
	switch l {
	case LabelUnder10:
		return "yellow"
	case Label11To30:
		return "orange"
	case LabelOver31:
		return "red"
	case LabelOther:
		return "grey"
	}
	return DefaultColor
}

// DefaultColor is used for rows whose tier maps to no bucket.
const DefaultColor = "#636efa"

// LabelFor maps a tier to its bucket. Unrecognised non-absent tiers yield Unlabeled.
func LabelFor(t PriceTier) PriceLabel {
	switch t {
	case TierLow:
		return LabelUnder10
	case TierMid:
		return Label11To30
	case TierHigh:
		return LabelOver31
	case TierAbsent:
		return LabelOther
	}
	return Unlabeled
}

// Annotate returns a copy of rs with every label derived from its tier.
// The input slice is not modified.
func Annotate(rs []Restaurant) []Restaurant {
	out := make([]Restaurant, len(rs))
	for i, r := range rs {
		r.label = LabelFor(r.tier)
		out[i] = r
	}
	return out
}

// GroupByLabel buckets restaurants in LegendOrder, with Unlabeled last when present.
// Order inside a bucket follows the input order.
func GroupByLabel(rs []Restaurant) []Group {
	byLabel := make(map[PriceLabel][]Restaurant, 5)
	for _, r := range rs {
		byLabel[r.label] = append(byLabel[r.label], r)
	}

	groups := make([]Group, 0, 5)
	for _, l := range LegendOrder() {
		groups = append(groups, Group{Label: l, Restaurants: byLabel[l]})
	}
	if extra := byLabel[Unlabeled]; len(extra) > 0 {
		groups = append(groups, Group{Label: Unlabeled, Restaurants: extra})
	}
	return groups
}

// Group is one legend bucket with its restaurants.
type Group struct {
	Label       PriceLabel
	Restaurants []Restaurant
}
