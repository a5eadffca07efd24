package version

import (
	"runtime"
	"strings"
	"testing"
)

func TestGet(t *testing.T) {
	info := Get()

	if info.Version == "" || info.Commit == "" || info.Date == "" {
		t.Errorf("Get() = %+v, want populated build fields", info)
	}
	if info.GoVersion != runtime.Version() {
		t.Errorf("GoVersion = %q, want %q", info.GoVersion, runtime.Version())
	}
	if want := runtime.GOOS + "/" + runtime.GOARCH; info.Platform != want {
		t.Errorf("Platform = %q, want %q", info.Platform, want)
	}
}

func TestInfo_String(t *testing.T) {
	info := Info{Version: "1.2.0", Commit: "abc1234", Date: "2026-01-02", Platform: "linux/amd64"}

	got := info.String()
	for _, want := range []string{"refyne-catalog", "1.2.0", "abc1234", "2026-01-02", "linux/amd64"} {
		if !strings.Contains(got, want) {
			t.Errorf("String() = %q, missing %q", got, want)
		}
	}
	if info.Short() != "1.2.0" {
		t.Errorf("Short() = %q, want 1.2.0", info.Short())
	}
}
