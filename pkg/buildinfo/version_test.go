package buildinfo

import (
	"strings"
	"testing"
)

func TestString(t *testing.T) {
	old := Version
	defer func() { Version = old }()
	Version = "v1.2.3"

	if s := String(); !strings.Contains(s, "version: v1.2.3") {
		t.Errorf("String() = %q, want version line", s)
	}
	if s := Template(); !strings.HasPrefix(s, "{{.Name}} version v1.2.3") {
		t.Errorf("Template() = %q", s)
	}
	if ua := UserAgent(); ua != "localitree/v1.2.3" {
		t.Errorf("UserAgent() = %q", ua)
	}
	if info := Get(); info.Version != "v1.2.3" || info.Commit != Commit {
		t.Errorf("Get() = %+v", info)
	}
}
