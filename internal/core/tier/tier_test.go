package tier

import "testing"

func TestResolve(t *testing.T) {
	tests := []struct {
		raw  string
		want Tier
	}{
		{"", None},
		{"none", None},
		{"FREE", None},
		{"basic", Basic},
		{" Starter ", Basic},
		{"STANDARD", Basic},
		{"complete", Complete},
		{"Complete", Complete},
		{"premium", None},
		{"enterprise", None},
		{"complete-plus", None},
	}

	for _, tt := range tests {
		if got := Resolve(tt.raw); got != tt.want {
			t.Errorf("Resolve(%q) = %q, want %q", tt.raw, got, tt.want)
		}
	}
}

func TestAllows(t *testing.T) {
	if None.Allows(true) {
		t.Error("none tier should not allow gated services")
	}
	if !None.Allows(false) {
		t.Error("none tier should allow ungated services")
	}
	if !Basic.Allows(true) {
		t.Error("basic tier should allow gated services")
	}
	if !Complete.Allows(true) {
		t.Error("complete tier should allow gated services")
	}
}
