package config

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/seyud/gpugov/internal/file"
)

const policyTOML = `
[global]
mode = "performance"
idle_threshold = 7

[performance]
margin = 25
aggressive_down = false
sampling_interval = 12
adaptive_sampling = true
min_adaptive_interval = 8
max_adaptive_interval = 40
up_rate_delay = 25
down_rate_delay = 120
`

func TestReadPolicy(t *testing.T) {
	cfg, err := Read(strings.NewReader(policyTOML))
	if err != nil {
		t.Fatal(err)
	}
	if want, got := "performance", cfg.Global.Mode; got != want {
		t.Errorf("Mode: want %q, got %q", want, got)
	}
	if want, got := 7, cfg.Global.IdleThreshold; got != want {
		t.Errorf("IdleThreshold: want %v, got %v", want, got)
	}

	p := cfg.Policy("performance")
	if want, got := int64(25), p.Margin; got != want {
		t.Errorf("Margin: want %v, got %v", want, got)
	}
	if want, got := 25*time.Millisecond, p.UpDebounce; got != want {
		t.Errorf("UpDebounce: want %v, got %v", want, got)
	}
	if want, got := 120*time.Millisecond, p.DownDebounce; got != want {
		t.Errorf("DownDebounce: want %v, got %v", want, got)
	}
	if !p.Adaptive || p.MinInterval != 8*time.Millisecond || p.MaxInterval != 40*time.Millisecond {
		t.Errorf("adaptive bounds: got %+v", p)
	}
	if p.AggressiveDown {
		t.Error("AggressiveDown: want false")
	}
}

func TestReadPolicyKeepsDefaults(t *testing.T) {
	cfg, err := Read(strings.NewReader("[global]\nmode = \"balance\"\n"))
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(cfg.Balance, Default().Balance) {
		t.Errorf("Balance block: want defaults, got %+v", cfg.Balance)
	}
}

func TestUnknownModeFallsBackToBalance(t *testing.T) {
	cfg := Default()
	if !reflect.DeepEqual(cfg.Policy("turbo"), cfg.Policy("balance")) {
		t.Error("Policy(unknown): want the balance bundle")
	}
}

func TestReloadIdempotence(t *testing.T) {
	a, err := Read(strings.NewReader(policyTOML))
	if err != nil {
		t.Fatal(err)
	}
	b, err := Read(strings.NewReader(policyTOML))
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(a.Policy(a.Global.Mode), b.Policy(b.Global.Mode)) {
		t.Error("Read: identical input produced different policy bundles")
	}
}

func TestDeltaForGamingOverride(t *testing.T) {
	cfg := Default()
	d := cfg.DeltaFor("balance", true)
	if !d.Policy.Gaming || !d.Gaming {
		t.Error("DeltaFor: want gaming forced on")
	}
	if want, got := "balance", d.Mode; got != want {
		t.Errorf("Mode: want %q, got %q", want, got)
	}
}

func testRoot(t *testing.T, nodes map[string]string) string {
	t.Helper()

	dir := t.TempDir()
	for name, content := range nodes {
		p := filepath.Join(dir, name)
		if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	if err := file.SetRoot(dir); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { file.SetRoot("/") })

	return dir
}

func TestLoadTable(t *testing.T) {
	testRoot(t, map[string]string{
		"data/gpu_freq_table.conf": `
[[freq_table]]
freq = 219000
volt = 45000
ddr_opp = 999

[[freq_table]]
freq = 853000
volt = 60000
ddr_opp = 3

[[freq_table]]
freq = 614000
volt = 55001
ddr_opp = 3
`,
	})

	tab, err := LoadTable("/data/gpu_freq_table.conf")
	if err != nil {
		t.Fatal(err)
	}
	// The 55001 µV entry is invalid and dropped.
	if want, got := 2, tab.Len(); got != want {
		t.Errorf("Len: want %v, got %v", want, got)
	}
	if want, got := int64(853000), tab.MaxFreq(); got != want {
		t.Errorf("MaxFreq: want %v, got %v", want, got)
	}
}

func TestLoadTableEmptyIsError(t *testing.T) {
	testRoot(t, map[string]string{
		"data/gpu_freq_table.conf": "",
	})
	if _, err := LoadTable("/data/gpu_freq_table.conf"); err == nil {
		t.Error("LoadTable: want error for empty table")
	}
}

func TestLoadGames(t *testing.T) {
	testRoot(t, map[string]string{
		"data/adb/gpu_governor/games.conf": `
[[games]]
package = "com.miHoYo.Yuanshen"
mode = "fast"

[[games]]
package = "com.tencent.tmgp.sgame"
mode = "performance"
`,
	})

	games, err := LoadGames("/data/adb/gpu_governor/games.conf")
	if err != nil {
		t.Fatal(err)
	}
	if want, got := 2, len(games); got != want {
		t.Fatalf("len: want %v, got %v", want, got)
	}
	if want, got := "fast", games["com.miHoYo.Yuanshen"]; got != want {
		t.Errorf("mode: want %q, got %q", want, got)
	}
}

func TestLoadGamesMissingFile(t *testing.T) {
	testRoot(t, nil)
	games, err := LoadGames("/data/adb/gpu_governor/games.conf")
	if err != nil {
		t.Fatal(err)
	}
	if len(games) != 0 {
		t.Errorf("games: want empty, got %v", games)
	}
}
