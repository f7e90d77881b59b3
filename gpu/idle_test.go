package gpu

import "testing"

func TestIdleRequiresConsecutiveLowSamples(t *testing.T) {
	d := NewIdleDetector()
	for i := 0; i < d.Window-1; i++ {
		if d.Update(2) {
			t.Fatalf("idle after %d samples, want %d", i+1, d.Window)
		}
	}
	if !d.Update(2) {
		t.Errorf("Update: want idle after %d consecutive low samples", d.Window)
	}
}

func TestIdleBrokenStreakStartsOver(t *testing.T) {
	d := NewIdleDetector()
	for i := 0; i < d.Window-1; i++ {
		d.Update(2)
	}
	d.Update(30) // breaks the streak, below recovery
	for i := 0; i < d.Window-1; i++ {
		if d.Update(2) {
			t.Fatal("idle declared before the restarted streak completed")
		}
	}
	if !d.Update(2) {
		t.Error("Update: want idle after restarted streak")
	}
}

func TestIdleClearsOnSingleRecoverySample(t *testing.T) {
	d := NewIdleDetector()
	for i := 0; i < d.Window; i++ {
		d.Update(2)
	}
	if !d.Idle() {
		t.Fatal("want idle")
	}

	// Mid loads keep the idle state; only recovery clears it.
	if !d.Update(30) {
		t.Error("Update(30): idle cleared below the recovery threshold")
	}
	if d.Update(d.Recovery) {
		t.Error("Update(recovery): want idle cleared")
	}
}

func TestIdleResetClearsCounterNotState(t *testing.T) {
	d := NewIdleDetector()
	for i := 0; i < d.Window; i++ {
		d.Update(2)
	}
	d.Reset()
	if !d.Idle() {
		t.Error("Reset: cleared the idle state, want counter only")
	}
	if d.Update(2) && d.count != 1 {
		t.Errorf("count after Reset+Update: want 1, got %d", d.count)
	}
}
