package palette

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/ironsheep/pigment-mcp/internal/colormodel"
)

func TestDefault(t *testing.T) {
	p := Default()
	ids := make([]string, 0, p.Len())
	for _, c := range p.Colors {
		ids = append(ids, c.ID)
	}
	want := []string{"red-1", "blue-1", "yellow-1", "magenta-1", "white-1", "black-1"}
	if diff := cmp.Diff(want, ids); diff != "" {
		t.Errorf("default palette ids mismatch (-want +got):\n%s", diff)
	}

	black, ok := p.ColorByID("black-1")
	if !ok || !colormodel.IsBlackPigment(black) {
		t.Errorf("black-1 should be a black pigment: %+v", black)
	}
	if r := p.Validate(); !r.IsValid || len(r.Warnings) != 0 {
		t.Errorf("default palette should validate cleanly: %+v", r)
	}
}

func TestAddRemove_DoNotMutate(t *testing.T) {
	base := Default()
	extra := colormodel.MustHex("#00FFFF", colormodel.WithID("cyan-1"))

	added, err := base.Add(extra)
	if err != nil {
		t.Fatalf("Add failed: %v", err)
	}
	if base.Len() != 6 || added.Len() != 7 {
		t.Errorf("Add mutated receiver: base=%d added=%d", base.Len(), added.Len())
	}
	if _, err := added.Add(extra); err == nil {
		t.Error("adding a duplicate id should fail")
	}

	removed, ok := added.Remove("red-1")
	if !ok {
		t.Fatal("Remove(red-1) reported missing")
	}
	if _, found := removed.ColorByID("red-1"); found {
		t.Error("red-1 still present after Remove")
	}
	if _, found := added.ColorByID("red-1"); !found {
		t.Error("Remove mutated receiver")
	}
	if _, ok := removed.Remove("nope"); ok {
		t.Error("Remove(nope) should report false")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name         string
		colors       []colormodel.Color
		wantValid    bool
		wantWarnings int
	}{
		{"empty", nil, false, 0},
		{"single", []colormodel.Color{colormodel.MustHex("#FF0000")}, false, 0},
		{"two distinct", []colormodel.Color{colormodel.MustHex("#FF0000"), colormodel.MustHex("#0000FF")}, true, 0},
		{"near duplicate", []colormodel.Color{
			colormodel.MustHex("#FF0000"),
			colormodel.MustHex("#FD0201"),
			colormodel.MustHex("#0000FF"),
		}, true, 1},
		{"exactly at threshold is distinct", []colormodel.Color{
			colormodel.MustHex("#000000"),
			colormodel.MustHex("#030400"),
		}, true, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := New(tt.colors...).Validate()
			if r.IsValid != tt.wantValid {
				t.Errorf("IsValid = %v, want %v (errors %v)", r.IsValid, tt.wantValid, r.Errors)
			}
			if len(r.Warnings) != tt.wantWarnings || len(r.Duplicates) != tt.wantWarnings {
				t.Errorf("warnings = %v, want %d", r.Warnings, tt.wantWarnings)
			}
		})
	}
}
