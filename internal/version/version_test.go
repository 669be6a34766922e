// ABOUTME: Tests for build identity constants
// ABOUTME: Pins the product identity and the version format the CLIs print
package version

import (
	"strconv"
	"strings"
	"testing"
)

func TestProductIdentity(t *testing.T) {
	if Product != "chipsynth" {
		t.Errorf("expected product chipsynth, got %q", Product)
	}
	if !strings.Contains(strings.ToLower(Manufacturer), Product) {
		t.Errorf("expected manufacturer %q to name the product", Manufacturer)
	}
}

func TestVersionIsSemver(t *testing.T) {
	parts := strings.Split(Version, ".")
	if len(parts) != 3 {
		t.Fatalf("expected major.minor.patch, got %q", Version)
	}
	for i, p := range parts {
		if _, err := strconv.Atoi(p); err != nil {
			t.Errorf("version component %d is not numeric: %q", i, p)
		}
	}
}
