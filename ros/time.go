package ros

import (
	gotime "time"
)

// Time is a ROS timestamp {sec, nsec} since the epoch.
type Time struct {
	temporal
}

// NewTime creates a Time of the given {sec, nsec}, normalized.
func NewTime(sec uint32, nsec uint32) Time {
	sec, nsec = normalizeTemporal(int64(sec), int64(nsec))
	return Time{temporal{sec, nsec}}
}

// Now returns the current wall clock time.
func Now() Time {
	return TimeFromGo(gotime.Now())
}

// TimeFromGo converts a time.Time into a ROS Time.
func TimeFromGo(t gotime.Time) Time {
	var r Time
	r.FromNSec(uint64(t.UnixNano()))
	return r
}

// Go converts t into a time.Time.
func (t Time) Go() gotime.Time {
	return gotime.Unix(int64(t.Sec), int64(t.NSec))
}

// Diff returns t - from as a Duration.
func (t Time) Diff(from Time) Duration {
	sec, nsec := normalizeTemporal(int64(t.Sec)-int64(from.Sec),
		int64(t.NSec)-int64(from.NSec))
	return Duration{temporal{sec, nsec}}
}

func (t Time) Add(d Duration) Time {
	sec, nsec := normalizeTemporal(int64(t.Sec)+int64(d.Sec),
		int64(t.NSec)+int64(d.NSec))
	return Time{temporal{sec, nsec}}
}

func (t Time) Sub(d Duration) Time {
	sec, nsec := normalizeTemporal(int64(t.Sec)-int64(d.Sec),
		int64(t.NSec)-int64(d.NSec))
	return Time{temporal{sec, nsec}}
}

func (t Time) Cmp(other Time) int {
	return cmpUint64(t.ToNSec(), other.ToNSec())
}
