package sampler

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/seyud/gpugov/internal/file"
)

func fixtureRoot(t *testing.T, nodes map[string]string) string {
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

func writeNode(t *testing.T, dir, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestNewWithoutSources(t *testing.T) {
	fixtureRoot(t, nil)
	if _, err := New(); !errors.Is(err, ErrNoLoadSource) {
		t.Errorf("New: want ErrNoLoadSource, got %v", err)
	}
}

func TestLoadFromMTKNode(t *testing.T) {
	fixtureRoot(t, map[string]string{
		"proc/mtk_mali/utilization": "ACTIVE=32 IDLE=68\n",
	})
	s, err := New()
	if err != nil {
		t.Fatal(err)
	}
	if s.Precise() {
		t.Error("Precise: want false without delta counters")
	}
	if want, got := 32, s.Load(); got != want {
		t.Errorf("Load: want %v, got %v", want, got)
	}
}

func TestLoadZeroFallsThrough(t *testing.T) {
	fixtureRoot(t, map[string]string{
		"proc/mtk_mali/utilization": "ACTIVE=0\n",
		"proc/mali/utilization":     "gpu/cljs0/cljs1=45\n",
	})
	s, err := New()
	if err != nil {
		t.Fatal(err)
	}
	if want, got := 45, s.Load(); got != want {
		t.Errorf("Load: want %v, got %v", want, got)
	}
}

func TestLoadAllZero(t *testing.T) {
	fixtureRoot(t, map[string]string{
		"proc/mtk_mali/utilization": "ACTIVE=0\n",
	})
	s, err := New()
	if err != nil {
		t.Fatal(err)
	}
	if want, got := 0, s.Load(); got != want {
		t.Errorf("Load: want %v, got %v", want, got)
	}
}

func TestLoadPreciseDeltas(t *testing.T) {
	dir := fixtureRoot(t, map[string]string{
		"sys/kernel/debug/mali0/dvfs_utilization": "busy_time idle_time protm_time\n100 0 0\n",
	})
	s, err := New()
	if err != nil {
		t.Fatal(err)
	}
	if !s.Precise() {
		t.Fatal("Precise: want true")
	}

	// First sample measures against zeroed counters: fully busy.
	if want, got := 100, s.Load(); got != want {
		t.Errorf("Load: want %v, got %v", want, got)
	}

	// Next window: +100 busy, +300 idle.
	writeNode(t, dir, "sys/kernel/debug/mali0/dvfs_utilization",
		"busy_time idle_time protm_time\n200 300 0\n")
	if want, got := 25, s.Load(); got != want {
		t.Errorf("Load: want %v, got %v", want, got)
	}
}

func TestLoadFromVarDump(t *testing.T) {
	fixtureRoot(t, map[string]string{
		"proc/gpufreq/gpufreq_var_dump": "g_aging_enable = 0\ngpu_loading = 57\nidle = 0\n",
	})
	s, err := New()
	if err != nil {
		t.Fatal(err)
	}
	if want, got := 57, s.Load(); got != want {
		t.Errorf("Load: want %v, got %v", want, got)
	}
}

func TestLoadFromGEDUtilization(t *testing.T) {
	fixtureRoot(t, map[string]string{
		"sys/kernel/ged/hal/gpu_utilization": "55 15 30\n",
	})
	s, err := New()
	if err != nil {
		t.Fatal(err)
	}
	// Third column is idle; load is its complement.
	if want, got := 70, s.Load(); got != want {
		t.Errorf("Load: want %v, got %v", want, got)
	}
}

func TestLoadFromModuleIdle(t *testing.T) {
	fixtureRoot(t, map[string]string{
		"sys/module/ged/parameters/gpu_idle": "80\n",
	})
	s, err := New()
	if err != nil {
		t.Fatal(err)
	}
	if want, got := 20, s.Load(); got != want {
		t.Errorf("Load: want %v, got %v", want, got)
	}
}

func TestCurrentFreq(t *testing.T) {
	fixtureRoot(t, map[string]string{
		"proc/mtk_mali/utilization":           "ACTIVE=10\n",
		"sys/kernel/ged/hal/current_freqency": "2 614000\n",
	})
	s, err := New()
	if err != nil {
		t.Fatal(err)
	}
	got, err := s.CurrentFreq()
	if err != nil {
		t.Fatal(err)
	}
	if want := int64(614000); got != want {
		t.Errorf("CurrentFreq: want %v, got %v", want, got)
	}
}

func TestCurrentFreqFromVarDump(t *testing.T) {
	fixtureRoot(t, map[string]string{
		"proc/gpufreq/gpufreq_var_dump": "gpu_loading = 12\nreal freq: 800000, real volt: 65000\n",
	})
	s, err := New()
	if err != nil {
		t.Fatal(err)
	}
	got, err := s.CurrentFreq()
	if err != nil {
		t.Fatal(err)
	}
	if want := int64(800000); got != want {
		t.Errorf("CurrentFreq: want %v, got %v", want, got)
	}
}

func TestCurrentFreqUnavailable(t *testing.T) {
	fixtureRoot(t, map[string]string{
		"proc/mtk_mali/utilization": "ACTIVE=10\n",
	})
	s, err := New()
	if err != nil {
		t.Fatal(err)
	}
	got, err := s.CurrentFreq()
	if err != nil {
		t.Errorf("CurrentFreq: want nil error, got %v", err)
	}
	if got != 0 {
		t.Errorf("CurrentFreq: want 0, got %v", got)
	}
}
