package ros

import (
	"time"
)

// Duration is a non-negative span of ROS time.
type Duration struct {
	temporal
}

// NewDuration creates a Duration of the given {sec, nsec}, normalized.
func NewDuration(sec uint32, nsec uint32) Duration {
	sec, nsec = normalizeTemporal(int64(sec), int64(nsec))
	return Duration{temporal{sec, nsec}}
}

// DurationFromSec is the float seconds constructor used for timer periods.
func DurationFromSec(sec float64) Duration {
	var d Duration
	d.FromSec(sec)
	return d
}

func (d Duration) Add(other Duration) Duration {
	sec, nsec := normalizeTemporal(int64(d.Sec)+int64(other.Sec),
		int64(d.NSec)+int64(other.NSec))
	return Duration{temporal{sec, nsec}}
}

func (d Duration) Sub(other Duration) Duration {
	sec, nsec := normalizeTemporal(int64(d.Sec)-int64(other.Sec),
		int64(d.NSec)-int64(other.NSec))
	return Duration{temporal{sec, nsec}}
}

func (d Duration) Cmp(other Duration) int {
	return cmpUint64(d.ToNSec(), other.ToNSec())
}

// Go converts d into a time.Duration.
func (d Duration) Go() time.Duration {
	return time.Duration(d.ToNSec())
}

// Sleep pauses the calling goroutine for d.
func (d Duration) Sleep() {
	if !d.IsZero() {
		time.Sleep(d.Go())
	}
}
