package ros

// Rate keeps a loop running at a fixed frequency. The expected start of
// each cycle advances by the cycle time regardless of jitter.
type Rate struct {
	actualCycleTime   Duration
	expectedCycleTime Duration
	start             Time
}

func NewRate(frequency float64) Rate {
	return CycleTime(DurationFromSec(1.0 / frequency))
}

func CycleTime(d Duration) Rate {
	return Rate{expectedCycleTime: d, start: Now()}
}

func (r *Rate) CycleTime() Duration {
	return r.actualCycleTime
}

func (r *Rate) ExpectedCycleTime() Duration {
	return r.expectedCycleTime
}

// ExpectedEnd is when the current cycle is due to finish.
func (r *Rate) ExpectedEnd() Time {
	return r.start.Add(r.expectedCycleTime)
}

func (r *Rate) Reset() {
	r.actualCycleTime = Duration{}
	r.start = Now()
}

// Remaining is the time left in the current cycle, zero when overdue.
func (r *Rate) Remaining() Duration {
	now := Now()
	end := r.ExpectedEnd()
	if now.Cmp(end) >= 0 {
		return Duration{}
	}
	return end.Diff(now)
}

// Advance closes the current cycle. A loop that fell more than a full
// cycle behind restarts from now instead of bursting to catch up.
func (r *Rate) Advance() {
	now := Now()
	r.actualCycleTime = Duration{}
	if now.Cmp(r.start) > 0 {
		r.actualCycleTime = now.Diff(r.start)
	}
	r.start = r.start.Add(r.expectedCycleTime)
	if now.Cmp(r.start.Add(r.expectedCycleTime)) > 0 {
		r.start = now
	}
}

func (r *Rate) Sleep() {
	r.Remaining().Sleep()
	r.Advance()
}
