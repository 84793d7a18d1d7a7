package pipeline

// Package pipeline runs the stages in order: fetch, optional vocal
// separation, segment planning, per-segment recognition, and reporting.
// Execution is strictly sequential; exactly one audio asset is live at
// any stage and segment uploads are issued one at a time in order.
