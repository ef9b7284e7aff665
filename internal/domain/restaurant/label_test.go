package restaurant

import (
	"reflect"
	"testing"
)

func TestLabelFor(t *testing.T) {
	tests := []struct {
		tier PriceTier
		want PriceLabel
	}{
		{"$", "Under $10"},
		{"$$", "$11-30"},
		{"$$$", "Over $31"},
		{"", "Other"},
		{"$$$$", ""},
		{"cheap", ""},
		{" $", ""},
	}
	for _, tc := range tests {
		t.Run(string(tc.tier), func(t *testing.T) {
			if got := LabelFor(tc.tier); got != tc.want {
				t.Errorf("LabelFor(%q) = %q, want %q", tc.tier, got, tc.want)
			}
		})
	}
}

func sample(t *testing.T) []Restaurant {
	t.Helper()
	tiers := []PriceTier{TierHigh, TierAbsent, TierLow, "$$$$", TierMid, TierLow}
	rs := make([]Restaurant, len(tiers))
	for i, tier := range tiers {
		r, err := New(41+float64(i)/100, -72, "addr", tier, float64(i), "")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		rs[i] = r
	}
	return rs
}

func TestAnnotate_SetsEveryLabel(t *testing.T) {
	got := Annotate(sample(t))
	want := []PriceLabel{LabelOver31, LabelOther, LabelUnder10, Unlabeled, Label11To30, LabelUnder10}
	for i, r := range got {
		if r.Label() != want[i] {
			t.Errorf("row %d: label %q, want %q", i, r.Label(), want[i])
		}
	}
}

func TestAnnotate_DoesNotMutateInput(t *testing.T) {
	in := sample(t)
	_ = Annotate(in)
	for i, r := range in {
		if r.Label() != Unlabeled {
			t.Errorf("input row %d mutated: %q", i, r.Label())
		}
	}
}

func TestAnnotate_Idempotent(t *testing.T) {
	once := Annotate(sample(t))
	twice := Annotate(once)
	if !reflect.DeepEqual(once, twice) {
		t.Error("annotating twice must yield identical rows")
	}
}

func TestAnnotate_OrderIndependent(t *testing.T) {
	in := sample(t)
	reversed := make([]Restaurant, len(in))
	for i, r := range in {
		reversed[len(in)-1-i] = r
	}

	byID := make(map[string]PriceLabel)
	for _, r := range Annotate(in) {
		byID[r.ID().String()+string(r.Tier())] = r.Label()
	}
	for _, r := range Annotate(reversed) {
		if byID[r.ID().String()+string(r.Tier())] != r.Label() {
			t.Errorf("label for %s differs with row order", r.ID())
		}
	}
}

func TestLegendOrder(t *testing.T) {
	want := []PriceLabel{"Under $10", "$11-30", "Over $31", "Other"}
	if got := LegendOrder(); !reflect.DeepEqual(got, want) {
		t.Errorf("LegendOrder() = %v, want %v", got, want)
	}
}

func TestColor(t *testing.T) {
	tests := map[PriceLabel]string{
		LabelUnder10: "yellow",
		Label11To30:  "orange",
		LabelOver31:  "red",
		LabelOther:   "grey",
		Unlabeled:    DefaultColor,
	}
	for l, want := range tests {
		if got := l.Color(); got != want {
			t.Errorf("%q.Color() = %q, want %q", l, got, want)
		}
	}
}

func TestGroupByLabel_LegendOrderRegardlessOfRows(t *testing.T) {
	groups := GroupByLabel(Annotate(sample(t)))

	var labels []PriceLabel
	for _, g := range groups {
		labels = append(labels, g.Label)
	}
	want := []PriceLabel{LabelUnder10, Label11To30, LabelOver31, LabelOther, Unlabeled}
	if !reflect.DeepEqual(labels, want) {
		t.Errorf("group labels = %v, want %v", labels, want)
	}
	if len(groups[0].Restaurants) != 2 {
		t.Errorf("expected 2 rows under %q, got %d", LabelUnder10, len(groups[0].Restaurants))
	}
}

func TestGroupByLabel_NoUnlabeledGroupWhenAllKnown(t *testing.T) {
	r, _ := New(41, -72, "a", TierLow, 3, "")
	groups := GroupByLabel(Annotate([]Restaurant{r}))
	if len(groups) != 4 {
		t.Fatalf("expected 4 groups, got %d", len(groups))
	}
	if len(groups[1].Restaurants) != 0 {
		t.Error("empty bucket must still be present with no rows")
	}
}

func TestIsKnown(t *testing.T) {
	for _, l := range LegendOrder() {
		if !l.IsKnown() {
			t.Errorf("%q should be known", l)
		}
	}
	if Unlabeled.IsKnown() || PriceLabel("Cheap").IsKnown() {
		t.Error("unlabeled and arbitrary labels must not be known")
	}
}
