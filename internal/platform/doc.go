package platform

// Package platform contains filesystem glue for the pipeline: working
// directory management and recovery of downloader output files whose
// exact names are chosen by external tools.
