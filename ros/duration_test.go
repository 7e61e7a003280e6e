package ros

import (
	"testing"
	"time"
)

func TestNewDuration(t *testing.T) {
	d := NewDuration(1, 2)
	if d.Sec != 1 {
		t.Fail()
	}
	if d.NSec != 2 {
		t.Fail()
	}
	d = NewDuration(0, 2500000000)
	if d.Sec != 2 || d.NSec != 500000000 {
		t.Error(d)
	}
}

func TestDurationAdd(t *testing.T) {
	var d1, d2 Duration
	d1.FromNSec(500000000)
	d2.FromNSec(800000000)

	d3 := d1.Add(d2)
	if d3.Sec != 1 {
		t.Error(d3.Sec)
	}
	if d3.NSec != 300000000 {
		t.Error(d3.NSec)
	}

	d1.FromNSec(500000000)
	d2.FromNSec(500000000)
	if d3 := d1.Add(d2); d3.Sec != 1 || d3.NSec != 0 {
		t.Error(d3)
	}
}

func TestDurationSub(t *testing.T) {
	var d1, d2 Duration
	d1.FromNSec(1300000000)
	d2.FromNSec(500000000)

	d3 := d1.Sub(d2)
	if d3.Sec != 0 {
		t.Error(d3.Sec)
	}
	if d3.NSec != 800000000 {
		t.Error(d3.NSec)
	}

	d1.FromNSec(2000000000)
	d2.FromNSec(1000000000)
	if d3 := d1.Sub(d2); d3.Sec != 1 || d3.NSec != 0 {
		t.Error(d3)
	}
}

func TestDurationFromSec(t *testing.T) {
	d := DurationFromSec(0.01)
	if d.Go() != 10*time.Millisecond {
		t.Error(d.Go())
	}
}

func TestDurationSleep(t *testing.T) {
	d := NewDuration(0, 100000000)
	start := time.Now()
	d.Sleep()
	elapsed := time.Since(start)
	if elapsed < d.Go() {
		t.Errorf("slept %v, expected at least %v", elapsed, d.Go())
	}
}

func TestTimeConversions(t *testing.T) {
	now := time.Unix(1700000000, 123456789)
	rt := TimeFromGo(now)
	if rt.Sec != 1700000000 || rt.NSec != 123456789 {
		t.Error(rt)
	}
	if !rt.Go().Equal(now) {
		t.Error(rt.Go())
	}
	later := rt.Add(NewDuration(1, 900000000))
	if later.Sec != 1700000002 || later.NSec != 23456789 {
		t.Error(later)
	}
	if d := later.Diff(rt); d.Sec != 1 || d.NSec != 900000000 {
		t.Error(d)
	}
	if later.Cmp(rt) != 1 || rt.Cmp(later) != -1 || rt.Cmp(rt) != 0 {
		t.Error("Cmp")
	}
}
