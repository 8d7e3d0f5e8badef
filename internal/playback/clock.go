package playback

import "time"

// Clock abstracts wall-clock reads and pacing waits so the scheduler is
// testable with a fake clock instead of real sleeps.
type Clock interface {
	Now() time.Time
	Sleep(d time.Duration)
}

type realClock struct{}

func (realClock) Now() time.Time        { return time.Now() }
func (realClock) Sleep(d time.Duration) { time.Sleep(d) }

// TargetTime returns the absolute display deadline for the frame at index,
// measured from the anchor set when the first frame was displayed. Deriving
// every deadline from the anchor keeps rendering overhead from accumulating
// into drift the way per-frame relative sleeps would.
func TargetTime(anchor time.Time, index int64, rate float64) time.Time {
	return anchor.Add(time.Duration(float64(index) * float64(time.Second) / rate))
}
