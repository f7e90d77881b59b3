package gpu

import (
	"testing"
	"time"
)

func TestDriverV1Write(t *testing.T) {
	dir := fixtureRoot(t, map[string]string{
		"proc/gpufreq/gpufreq_fixed_freq_volt": "",
		"proc/gpufreq/gpufreq_opp_freq":        "",
	})

	d := NewDriver(V1)
	if err := d.Write(614000, 55000); err != nil {
		t.Fatal(err)
	}
	if want, got := "0", readNode(t, dir, "proc/gpufreq/gpufreq_opp_freq"); got != want {
		t.Errorf("opp node: want %q, got %q", want, got)
	}
	if want, got := "614000 55000", readNode(t, dir, "proc/gpufreq/gpufreq_fixed_freq_volt"); got != want {
		t.Errorf("volt node: want %q, got %q", want, got)
	}
}

func TestDriverV1PolicyOverrideOnce(t *testing.T) {
	dir := fixtureRoot(t, map[string]string{
		"proc/gpufreq/gpufreq_fixed_freq_volt":     "",
		"proc/gpufreq/gpufreq_opp_freq":            "",
		"sys/class/misc/mali0/device/power_policy": "coarse_demand",
	})

	d := NewDriver(V1)
	if err := d.Write(614000, 55000); err != nil {
		t.Fatal(err)
	}
	if want, got := "always_on", readNode(t, dir, "sys/class/misc/mali0/device/power_policy"); got != want {
		t.Errorf("power policy after write: want %q, got %q", want, got)
	}
	if !d.policyOverridden {
		t.Error("policyOverridden: want true")
	}

	if err := d.Release(); err != nil {
		t.Fatal(err)
	}
	if want, got := "coarse_demand", readNode(t, dir, "sys/class/misc/mali0/device/power_policy"); got != want {
		t.Errorf("power policy after release: want %q, got %q", want, got)
	}
	if want, got := "0 0", readNode(t, dir, "proc/gpufreq/gpufreq_fixed_freq_volt"); got != want {
		t.Errorf("volt node after release: want %q, got %q", want, got)
	}
	if want, got := "0", readNode(t, dir, "proc/gpufreq/gpufreq_opp_freq"); got != want {
		t.Errorf("opp node after release: want %q, got %q", want, got)
	}
}

func TestDriverV2Write(t *testing.T) {
	dir := fixtureRoot(t, map[string]string{
		"proc/gpufreqv2/fix_custom_freq_volt": "",
		"proc/gpufreqv2/fix_target_opp_index": "",
	})

	var slept time.Duration
	d := NewDriver(V2)
	d.sleep = func(dur time.Duration) { slept += dur }

	if err := d.Write(852000, 60000); err != nil {
		t.Fatal(err)
	}
	if want, got := "-1", readNode(t, dir, "proc/gpufreqv2/fix_target_opp_index"); got != want {
		t.Errorf("opp node: want %q, got %q", want, got)
	}
	if want, got := "852000 60000", readNode(t, dir, "proc/gpufreqv2/fix_custom_freq_volt"); got != want {
		t.Errorf("volt node: want %q, got %q", want, got)
	}
	if slept != v2Settle {
		t.Errorf("settle: want %v, got %v", v2Settle, slept)
	}
}

func TestDriverV2Release(t *testing.T) {
	dir := fixtureRoot(t, map[string]string{
		"proc/gpufreqv2/fix_custom_freq_volt": "852000 60000",
		"proc/gpufreqv2/fix_target_opp_index": "5",
	})

	d := NewDriver(V2)
	d.sleep = func(time.Duration) {}

	if err := d.Release(); err != nil {
		t.Fatal(err)
	}
	if want, got := "0 0", readNode(t, dir, "proc/gpufreqv2/fix_custom_freq_volt"); got != want {
		t.Errorf("volt node: want %q, got %q", want, got)
	}
	if want, got := "-1", readNode(t, dir, "proc/gpufreqv2/fix_target_opp_index"); got != want {
		t.Errorf("opp node: want %q, got %q", want, got)
	}
}

func TestDriverZeroVoltPinsFreqOnly(t *testing.T) {
	dir := fixtureRoot(t, map[string]string{
		"proc/gpufreq/gpufreq_fixed_freq_volt": "x",
		"proc/gpufreq/gpufreq_opp_freq":        "x",
	})

	d := NewDriver(V1)
	if err := d.Write(614000, 0); err != nil {
		t.Fatal(err)
	}
	if want, got := "0 0", readNode(t, dir, "proc/gpufreq/gpufreq_fixed_freq_volt"); got != want {
		t.Errorf("volt node: want %q, got %q", want, got)
	}
	if want, got := "614000", readNode(t, dir, "proc/gpufreq/gpufreq_opp_freq"); got != want {
		t.Errorf("opp node: want %q, got %q", want, got)
	}
}

func TestDriverMissingNodesNoOp(t *testing.T) {
	fixtureRoot(t, nil)

	d := NewDriver(V2)
	d.sleep = func(time.Duration) {}
	if err := d.Write(852000, 60000); err != nil {
		t.Errorf("Write without control files: want nil, got %v", err)
	}
	if err := d.Release(); err != nil {
		t.Errorf("Release without control files: want nil, got %v", err)
	}
}

func TestDetect(t *testing.T) {
	fixtureRoot(t, map[string]string{
		"proc/gpufreqv2/fix_custom_freq_volt": "",
		"proc/gpufreqv2/fix_target_opp_index": "",
	})
	if v, dcs := Detect(); v != V2 || !dcs {
		t.Errorf("Detect: want (V2, true), got (%v, %v)", v, dcs)
	}
}

func TestDetectDefaultsToV1(t *testing.T) {
	fixtureRoot(t, nil)
	if v, dcs := Detect(); v != V1 || dcs {
		t.Errorf("Detect: want (V1, false), got (%v, %v)", v, dcs)
	}
}

func TestSupportedFreqs(t *testing.T) {
	fixtureRoot(t, map[string]string{
		"proc/gpufreqv2/stack_working_opp_table": "[00] freq: 886000, volt: 80000, vsram: 75000,\n" +
			"[01] freq: 700000, volt: 70000, vsram: 75000,\n" +
			"[02] freq: 390000, volt: 60000, vsram: 75000,\n",
	})

	got := SupportedFreqs()
	want := []int64{390000, 700000, 886000}
	if len(got) != len(want) {
		t.Fatalf("SupportedFreqs: want %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("SupportedFreqs[%d]: want %v, got %v", i, want[i], got[i])
		}
	}
}

func TestSupportedFreqsMissingTable(t *testing.T) {
	fixtureRoot(t, nil)
	if got := SupportedFreqs(); got != nil {
		t.Errorf("SupportedFreqs: want nil, got %v", got)
	}
}
