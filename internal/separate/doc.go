package separate

// Package separate removes vocals from an audio file using the Demucs
// source-separation model. Demucs is invoked as an external process; two
// invocation strategies are tried in order before the failure surfaces.
