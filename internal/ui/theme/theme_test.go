package theme

import "testing"

func TestNextCycles(t *testing.T) {
	seen := map[string]bool{}
	name := Nord.Name
	for range Available() {
		next := Next(name)
		if seen[next.Name] {
			t.Fatalf("theme %s visited twice", next.Name)
		}
		seen[next.Name] = true
		name = next.Name
	}
	if name != Nord.Name {
		t.Errorf("cycle ended on %s, want %s", name, Nord.Name)
	}
	if Next("solarized").Name != Nord.Name {
		t.Error("unknown theme should restart at nord")
	}
}

func TestByName(t *testing.T) {
	for _, th := range Available() {
		got, ok := ByName(th.Name)
		if !ok || got.Name != th.Name {
			t.Errorf("ByName(%q) = %q, %v", th.Name, got.Name, ok)
		}
	}
	if _, ok := ByName("nope"); ok {
		t.Error("ByName found an unknown theme")
	}
}

func TestPriorityColor(t *testing.T) {
	tests := []struct {
		priority int
		want     string
	}{
		{5, string(Nord.PriorityHigh)},
		{4, string(Nord.PriorityHigh)},
		{3, string(Nord.PriorityMedium)},
		{2, string(Nord.PriorityLow)},
		{0, string(Nord.PriorityLow)},
	}
	for _, tt := range tests {
		if got := string(Nord.PriorityColor(tt.priority)); got != tt.want {
			t.Errorf("PriorityColor(%d) = %s, want %s", tt.priority, got, tt.want)
		}
	}
}
