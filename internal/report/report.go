package report

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/ytget/tuneid/internal/model"
)

// Summarize deduplicates matches by (title, artist). The canonical
// record keeps the earliest matching segment and the highest score seen
// across duplicates. Summarize is idempotent over its input.
func Summarize(matches []model.Match, segments int) model.Summary {
	summary := model.Summary{Segments: segments}

	byKey := make(map[string]int) // track key -> index into summary.Tracks
	for _, m := range matches {
		key := m.Track.Key()
		idx, seen := byKey[key]
		if !seen {
			byKey[key] = len(summary.Tracks)
			summary.Tracks = append(summary.Tracks, model.UniqueTrack{
				Track:      m.Track,
				MatchCount: 1,
				Segment:    m.Segment,
			})
			continue
		}

		ut := &summary.Tracks[idx]
		ut.MatchCount++
		if m.Segment < ut.Segment {
			ut.Segment = m.Segment
		}
		if m.Track.Score > ut.Track.Score {
			ut.Track.Score = m.Track.Score
		}
	}

	summary.NoMatches = segments - len(matches)
	if summary.NoMatches < 0 {
		summary.NoMatches = 0
	}
	return summary
}

// Render writes a human-readable summary. An empty result set is
// reported as "no match found", not as an error.
func Render(w io.Writer, s model.Summary) {
	if len(s.Tracks) == 0 {
		fmt.Fprintln(w, "no match found")
		fmt.Fprintf(w, "checked %d segment(s); the audio may contain mostly speech, or the song is not in the catalog\n", s.Segments)
		return
	}

	fmt.Fprintf(w, "identified %d unique track(s) across %d segment(s)\n\n", len(s.Tracks), s.Segments)

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "TITLE\tARTIST\tALBUM\tGENRE\tSCORE\tMATCHES\tSEGMENT")
	for _, ut := range s.Tracks {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%d\t%d\t%d\n",
			orDash(ut.Track.Title),
			orDash(ut.Track.Artist),
			orDash(ut.Track.Album),
			orDash(ut.Track.Genre),
			ut.Track.Score,
			ut.MatchCount,
			ut.Segment,
		)
	}
	tw.Flush()

	if best, ok := s.Best(); ok {
		fmt.Fprintf(w, "\nbest match: %s (score %d)\n", best.Track.GetDisplayTitle(), best.Track.Score)
	}
}

func orDash(v string) string {
	if v == "" {
		return "-"
	}
	return v
}
