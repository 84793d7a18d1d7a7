package segment

// Package segment plans fixed-length recognition windows over an audio
// file and extracts them as in-memory byte buffers via ffmpeg. Planning
// is pure arithmetic so the truncation policy is deterministic and
// testable without media files.
