package model

import (
	"fmt"
	"strings"
)

// Track holds the metadata of a recognized song.
type Track struct {
	Title  string
	Artist string
	Album  string
	Genre  string
	Score  int // recognition confidence, 0-100
}

// Key returns the deduplication key for a track. Two results naming the
// same title and artist refer to the same song regardless of segment.
func (t Track) Key() string {
	return strings.ToLower(strings.TrimSpace(t.Title)) + "\x00" + strings.ToLower(strings.TrimSpace(t.Artist))
}

// GetDisplayTitle returns "Artist - Title", falling back to whichever
// field is present.
func (t Track) GetDisplayTitle() string {
	switch {
	case t.Title != "" && t.Artist != "":
		return fmt.Sprintf("%s - %s", t.Artist, t.Title)
	case t.Title != "":
		return t.Title
	default:
		return t.Artist
	}
}

// Match ties a recognized track to the segment that produced it.
type Match struct {
	Track   Track
	Segment int // 1-based index of the matching window
}

// UniqueTrack is a deduplicated track with aggregate match info.
type UniqueTrack struct {
	Track      Track
	MatchCount int // how many segments matched this track
	Segment    int // earliest segment index that produced it
}

// Summary is the final report of a pipeline run.
type Summary struct {
	Tracks    []UniqueTrack // unique tracks ordered by earliest segment
	Segments  int           // windows submitted for recognition
	NoMatches int           // windows the API reported no song for
}

// Best returns the unique track with the highest score, or false when
// the run produced no matches.
func (s Summary) Best() (UniqueTrack, bool) {
	if len(s.Tracks) == 0 {
		return UniqueTrack{}, false
	}
	best := s.Tracks[0]
	for _, ut := range s.Tracks[1:] {
		if ut.Track.Score > best.Track.Score {
			best = ut
		}
	}
	return best, true
}
