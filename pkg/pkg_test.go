package pkg

import (
	"os"
	"regexp"
	"strings"
	"testing"
)

func TestIdentity(t *testing.T) {
	t.Parallel()

	if Name != "jinja" {
		t.Errorf("Name = %q, want %q", Name, "jinja")
	}

	if Description == "" {
		t.Error("Description is empty")
	}

	for i, author := range Author {
		if author.Name == "" && author.Email == "" {
			t.Errorf("Author[%d] must define at least Name or Email", i)
		}
	}
}

func TestVersion(t *testing.T) {
	t.Parallel()

	buf, err := os.ReadFile("VERSION")
	if err != nil {
		t.Fatalf("read VERSION: %v", err)
	}

	if want := strings.TrimSpace(string(buf)); Version() != want {
		t.Errorf("Version() = %q, want %q", Version(), want)
	}

	if !regexp.MustCompile(`^\d+\.\d+\.\d+`).MatchString(Version()) {
		t.Errorf("Version() = %q is not a semantic version", Version())
	}
}
