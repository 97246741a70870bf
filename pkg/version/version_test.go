package version

import (
	"strings"
	"testing"
)

func TestInfoString(t *testing.T) {
	info := Info()
	if info.Version != Version {
		t.Errorf("expected version %s, got %s", Version, info.Version)
	}
	s := info.String()
	for _, want := range []string{"version", "commit", "built"} {
		if !strings.Contains(s, want) {
			t.Errorf("expected %q in %q", want, s)
		}
	}
}
