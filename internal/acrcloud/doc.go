package acrcloud

// Package acrcloud implements the ACRCloud identify client: request
// signing, multipart sample upload, response decoding, and mapping of the
// vendor status codes onto the pipeline's error taxonomy.
