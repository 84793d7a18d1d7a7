package segment

import (
	"time"

	"github.com/ytget/tuneid/internal/errs"
	"github.com/ytget/tuneid/internal/model"
)

const (
	// DefaultLeadIn skips the very beginning of the audio, which in
	// short-form video tends to be an intro or silence.
	DefaultLeadIn = 5 * time.Second

	// leadOut keeps the spread of start offsets away from the tail.
	leadOut = 10 * time.Second

	// minWindow is the shortest excerpt worth uploading; the
	// recognition API cannot fingerprint less than a second of audio.
	minWindow = time.Second
)

// Planner computes recognition windows for an audio duration.
type Planner struct {
	Count  int           // requested number of windows
	Length time.Duration // requested window length
	LeadIn time.Duration // offset of the first window
}

// NewPlanner creates a planner with the given requested window count and
// length. A zero leadIn falls back to the default.
func NewPlanner(count int, length, leadIn time.Duration) *Planner {
	if leadIn <= 0 {
		leadIn = DefaultLeadIn
	}
	return &Planner{Count: count, Length: length, LeadIn: leadIn}
}

// Plan computes the window set for an asset of the given duration.
//
// The effective count is the requested count clamped to how many full
// windows fit the audio, never below one as long as at least minWindow
// of audio remains past the lead-in. Start offsets spread evenly across
// the usable range. The final window is truncated to the available tail
// instead of being skipped; windows that would fall below minWindow are
// dropped. Start offsets are strictly increasing.
func (p *Planner) Plan(duration time.Duration) (model.SegmentPlan, error) {
	plan := model.SegmentPlan{SourceSeconds: duration.Seconds()}

	if duration < p.LeadIn+minWindow {
		return plan, errs.NoMatch("audio too short to extract segments")
	}

	count := p.Count
	if fits := int(duration / p.Length); fits < count {
		count = fits
	}
	if count < 1 {
		count = 1
	}

	// Spread starts across [leadIn, leadIn+spread] so offsets stay
	// clear of both ends of the recording.
	available := duration - p.Length
	spread := available - p.LeadIn - leadOut
	if spread < 0 {
		spread = 0
	}

	for i := 0; i < count; i++ {
		start := p.LeadIn + time.Duration(int64(spread)*int64(i)/int64(count))

		length := p.Length
		if start+length > duration {
			length = duration - start
		}
		if length < minWindow {
			continue
		}

		// A truncated plan can compute coinciding starts; keep them
		// strictly increasing by dropping the duplicate.
		if n := len(plan.Windows); n > 0 && start <= time.Duration(plan.Windows[n-1].Start*float64(time.Second)) {
			continue
		}

		plan.Windows = append(plan.Windows, model.Window{
			Index:  len(plan.Windows) + 1,
			Start:  start.Seconds(),
			Length: length.Seconds(),
		})
	}

	if len(plan.Windows) == 0 {
		return plan, errs.NoMatch("audio too short to extract segments")
	}
	return plan, nil
}
