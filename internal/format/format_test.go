package format_test

import (
	"testing"

	"github.com/sinclairtarget/git-tagstats/internal/format"
)

func TestNumber(t *testing.T) {
	tests := map[int]string{
		0:       "0",
		999:     "999",
		1000:    "1,000",
		1234567: "1,234,567",
	}

	for n, expected := range tests {
		if got := format.Number(n); got != expected {
			t.Errorf("Number(%d): expected %q but got %q", n, expected, got)
		}
	}
}

func TestAbbrev(t *testing.T) {
	if got := format.Abbrev("short", 10); got != "short" {
		t.Errorf("expected \"short\" but got %q", got)
	}

	if got := format.Abbrev("naïve-author@x.com", 6); got != "naïve…" {
		t.Errorf("expected \"naïve…\" but got %q", got)
	}
}

func TestPlural(t *testing.T) {
	if got := format.Plural(1, "commit"); got != "1 commit" {
		t.Errorf("expected \"1 commit\" but got %q", got)
	}

	if got := format.Plural(1200, "file"); got != "1,200 files" {
		t.Errorf("expected \"1,200 files\" but got %q", got)
	}
}
