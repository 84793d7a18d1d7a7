package model

import "time"

// AudioAsset represents the audio file currently flowing through the
// pipeline. Exactly one asset is live at each stage; the Separator may
// replace it with an instrumental stem.
type AudioAsset struct {
	Path      string
	Title     string    // video title if the downloader reported one
	Duration  float64   // seconds, probed lazily; 0 until known
	SizeBytes int64     // file size in bytes
	FetchedAt time.Time // when the download finished
}

// Window is a planned excerpt of an AudioAsset.
type Window struct {
	Index  int     // 1-based segment number
	Start  float64 // offset into the asset, seconds
	Length float64 // excerpt length, seconds; may be shorter than requested at the tail
}

// SegmentPlan is the ordered set of windows to submit for recognition.
type SegmentPlan struct {
	Windows       []Window
	SourceSeconds float64 // total duration the plan was computed from
}

// Count returns the number of planned windows.
func (p SegmentPlan) Count() int {
	return len(p.Windows)
}
