package model

// Package model defines domain data structures used across the pipeline:
// audio assets, segment windows, recognized tracks, and status enums.
// Structures are plain data designed for explicit state transitions.
