package theme

import "testing"

func TestResolveFallsBackToDefault(t *testing.T) {
	t.Parallel()

	if got := Resolve("  ATELIER_IVORY "); got.Key != "atelier_ivory" {
		t.Fatalf("expected atelier_ivory, got %q", got.Key)
	}
	if got := Resolve("neon"); got.Key != DefaultKey {
		t.Fatalf("expected fallback to %q, got %q", DefaultKey, got.Key)
	}
}

func TestOptionsResolve(t *testing.T) {
	t.Parallel()

	for i, option := range Options() {
		if Resolve(option.Value).Key != option.Value {
			t.Fatalf("option %q does not resolve to itself", option.Value)
		}
		if i > 0 && Options()[i-1].Label > option.Label {
			t.Fatalf("expected options sorted by label: %v", Options())
		}
	}
}
