package bgw

import (
	"testing"
	"time"

	"pgregory.net/rapid"
)

// TestAvgPollSecsTracksMean feeds random poll intervals through Update and
// checks the incrementally rounded average against the exact mean of the
// seed interval plus all observed deltas. Each step rounds to one decimal,
// so the accumulated drift is bounded but nonzero.
func TestAvgPollSecsTracksMean(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		pollingSecs := rapid.IntRange(1, 60).Draw(t, "pollingSecs")
		deltas := rapid.SliceOfN(rapid.IntRange(0, 600), 1, 50).Draw(t, "deltas")

		g := New("10.10.48.58", "ssh", pollingSecs)
		at := time.Date(2025, 12, 16, 13, 0, 0, 0, time.UTC)

		if err := g.Update(Batch{LastSeen: at.Format(TimestampLayout)}); err != nil {
			t.Fatalf("Update: %v", err)
		}

		sum := float64(pollingSecs)
		lo, hi := float64(pollingSecs), float64(pollingSecs)
		for _, d := range deltas {
			at = at.Add(time.Duration(d) * time.Second)
			if err := g.Update(Batch{LastSeen: at.Format(TimestampLayout)}); err != nil {
				t.Fatalf("Update: %v", err)
			}
			sum += float64(d)
			lo = min(lo, float64(d))
			hi = max(hi, float64(d))
		}

		if g.PollCount != len(deltas)+1 {
			t.Fatalf("PollCount = %d, want %d", g.PollCount, len(deltas)+1)
		}

		mean := sum / float64(len(deltas)+1)
		if diff := g.AvgPollSecs - mean; diff > 1.5 || diff < -1.5 {
			t.Fatalf("AvgPollSecs = %v, exact mean = %v (drift %v)", g.AvgPollSecs, mean, diff)
		}
		if g.AvgPollSecs < lo-1.5 || g.AvgPollSecs > hi+1.5 {
			t.Fatalf("AvgPollSecs = %v outside observed range [%v, %v]", g.AvgPollSecs, lo, hi)
		}
	})
}

// TestAvgPollSecsSteadyInterval checks the exact case: when every delta
// equals the configured polling interval, no rounding drift occurs.
func TestAvgPollSecsSteadyInterval(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		pollingSecs := rapid.IntRange(1, 120).Draw(t, "pollingSecs")
		n := rapid.IntRange(1, 30).Draw(t, "polls")

		g := New("10.10.48.58", "ssh", pollingSecs)
		at := time.Date(2025, 12, 16, 13, 0, 0, 0, time.UTC)

		for i := 0; i < n; i++ {
			if err := g.Update(Batch{LastSeen: at.Format(TimestampLayout)}); err != nil {
				t.Fatalf("Update: %v", err)
			}
			at = at.Add(time.Duration(pollingSecs) * time.Second)
		}

		if g.AvgPollSecs != float64(pollingSecs) {
			t.Fatalf("AvgPollSecs = %v, want %d", g.AvgPollSecs, pollingSecs)
		}
	})
}
