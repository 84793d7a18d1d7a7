package report

// Package report aggregates per-segment recognition results into a
// deduplicated summary and renders it for humans.
