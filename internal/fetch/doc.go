package fetch

// Package fetch retrieves the audio track of a short-form video via
// yt-dlp (through github.com/lrstanley/go-ytdlp). It handles retries,
// progress reporting, and recovery of the output path the downloader
// chose.
