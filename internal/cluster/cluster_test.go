package cluster

import (
	"math/rand/v2"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/ironsheep/pigment-mcp/internal/colormodel"
	"github.com/ironsheep/pigment-mcp/internal/metric"
	"github.com/ironsheep/pigment-mcp/internal/quantize"
)

func hexes(t *testing.T, in ...string) []colormodel.Color {
	t.Helper()
	out := make([]colormodel.Color, len(in))
	for i, h := range in {
		c, err := colormodel.FromHex(h)
		if err != nil {
			t.Fatalf("bad hex %q: %v", h, err)
		}
		out[i] = c
	}
	return out
}

func TestExclude(t *testing.T) {
	tests := []struct {
		hex      string
		excluded bool
	}{
		{"#FFFFFF", true},
		{"#F0F0F0", true},  // lightness above 94
		{"#D0D0D0", true},  // light and gray
		{"#FFC0C0", false}, // light but saturated
		{"#000000", true},
		{"#0F0F0F", true},  // lightness under 6
		{"#202020", true},  // dark and gray
		{"#300000", false}, // dark but saturated
		{"#2E2E2E", false},
		{"#808080", false},
	}

	for _, tt := range tests {
		t.Run(tt.hex, func(t *testing.T) {
			got := Exclude(hexes(t, tt.hex))
			if (len(got) == 0) != tt.excluded {
				t.Errorf("excluded = %v, want %v", len(got) == 0, tt.excluded)
			}
		})
	}
}

func TestGroup_SimilarColorsTogether(t *testing.T) {
	groups := Group(hexes(t, "#FF0000", "#0000FF", "#FA0505"), 20)
	if len(groups) != 2 {
		t.Fatalf("got %d groups, want 2", len(groups))
	}
	if diff := cmp.Diff([]string{"#FF0000", "#FA0505"}, Hexes(groups[0])); diff != "" {
		t.Errorf("first group (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"#0000FF"}, Hexes(groups[1])); diff != "" {
		t.Errorf("second group (-want +got):\n%s", diff)
	}
}

func TestGroup_MembersCloseToEarlierMember(t *testing.T) {
	const threshold = 20.0
	r := rand.New(rand.NewPCG(11, 17))
	colors := make([]colormodel.Color, 200)
	for i := range colors {
		c, err := colormodel.FromRGB(colormodel.RGB{R: r.IntN(256), G: r.IntN(256), B: r.IntN(256)})
		if err != nil {
			t.Fatalf("FromRGB failed: %v", err)
		}
		colors[i] = c
	}

	groups := Group(colors, threshold)

	total := 0
	for gi, g := range groups {
		total += len(g)
		for j := 1; j < len(g); j++ {
			near := false
			for i := 0; i < j; i++ {
				if metric.DeltaE2000(g[j].LAB, g[i].LAB) < threshold {
					near = true
					break
				}
			}
			if !near {
				t.Errorf("group %d member %s has no earlier member within %v", gi, g[j].Hex, threshold)
			}
		}
	}
	if total != len(colors) {
		t.Errorf("groups hold %d colors, want %d", total, len(colors))
	}
}

func TestSelectRepresentative(t *testing.T) {
	single := hexes(t, "#336699")
	if got := Hexes(SelectRepresentative(single)); !cmp.Equal(got, []string{"#336699"}) {
		t.Errorf("single member = %v", got)
	}
	if got := SelectRepresentative(nil); got != nil {
		t.Errorf("empty group = %v", got)
	}

	pair := hexes(t, "#FF8080", "#800000")
	if diff := cmp.Diff([]string{"#800000", "#FF8080"}, Hexes(SelectRepresentative(pair))); diff != "" {
		t.Errorf("pair (-want +got):\n%s", diff)
	}

	// Darkest, lightest, most saturated, then the coolest. The warmest and
	// the least saturated are the lightest, already picked.
	group := hexes(t, "#FF0000", "#800000", "#FF00FF", "#8080C0", "#E0D0D0")
	want := []string{"#800000", "#E0D0D0", "#FF0000", "#8080C0"}
	if diff := cmp.Diff(want, Hexes(SelectRepresentative(group))); diff != "" {
		t.Errorf("large group (-want +got):\n%s", diff)
	}
}

func TestSelectRepresentative_LeastSaturated(t *testing.T) {
	// All warm reds with equal temperature score; the grayish one is picked
	// as the least saturated.
	group := hexes(t, "#FF0000", "#C00000", "#FF4040", "#A07070")
	got := Hexes(SelectRepresentative(group))
	found := false
	for _, h := range got {
		if h == "#A07070" {
			found = true
		}
	}
	if !found {
		t.Errorf("least saturated member missing: %v", got)
	}
	seen := map[string]bool{}
	for _, h := range got {
		if seen[h] {
			t.Errorf("duplicate pick %s in %v", h, got)
		}
		seen[h] = true
	}
}

func TestSelectDominant(t *testing.T) {
	group := []colormodel.Color{
		colormodel.MustHex("#111111", colormodel.WithPopulation(3)),
		colormodel.MustHex("#222222", colormodel.WithPopulation(7)),
		colormodel.MustHex("#333333", colormodel.WithPopulation(7)),
	}
	if got := SelectDominant(group); got.Hex != "#222222" {
		t.Errorf("dominant = %s, want #222222", got.Hex)
	}
}

func TestSortForPresentation(t *testing.T) {
	in := hexes(t, "#808080", "#C0C0C0", "#0000FF", "#FF0000", "#FF8080", "#FF8000")
	got := Hexes(SortForPresentation(in, 10))
	want := []string{"#FF8080", "#FF0000", "#FF8000", "#0000FF", "#C0C0C0", "#808080"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("order (-want +got):\n%s", diff)
	}
	if in[0].Hex != "#808080" {
		t.Error("input was reordered")
	}
}

func TestProcess(t *testing.T) {
	swatches := []quantize.Swatch{
		{Hex: "#FF0000", Population: 10},
		{Hex: "#FA0505", Population: 30},
		{Hex: "#0000FF", Population: 5},
		{Hex: "#FFFFFF", Population: 100},
		{Hex: "#000000", Population: 50},
		{Hex: "zzz", Population: 1},
	}

	tests := []struct {
		method Method
		want   []string
	}{
		{Dominant, []string{"#FA0505", "#0000FF"}},
		{Representative, []string{"#FF0000", "#FA0505", "#0000FF"}},
	}
	for _, tt := range tests {
		t.Run(string(tt.method), func(t *testing.T) {
			opts := DefaultOptions()
			opts.Method = tt.method
			if diff := cmp.Diff(tt.want, Hexes(Process(swatches, opts))); diff != "" {
				t.Errorf("colors (-want +got):\n%s", diff)
			}
		})
	}
}

func TestProcess_AllExcluded(t *testing.T) {
	got := Process([]quantize.Swatch{{Hex: "#FFFFFF", Population: 1}, {Hex: "#000000", Population: 1}}, Options{})
	if len(got) != 0 {
		t.Errorf("got %v, want nothing", Hexes(got))
	}
}

func TestParseMethod(t *testing.T) {
	tests := []struct {
		in      string
		want    Method
		wantErr bool
	}{
		{"", Representative, false},
		{"representative", Representative, false},
		{" Dominant ", Dominant, false},
		{"median", "", true},
	}
	for _, tt := range tests {
		got, err := ParseMethod(tt.in)
		if (err != nil) != tt.wantErr || got != tt.want {
			t.Errorf("ParseMethod(%q) = %q, %v", tt.in, got, err)
		}
	}
}
