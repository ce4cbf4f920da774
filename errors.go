package aitubersync

import (
	"aitubersync/internal/config"
	"aitubersync/internal/ingest"
	"aitubersync/internal/storage"
	"aitubersync/internal/youtube"
)

// Type aliases for convenient error handling.
type (
	// APIError wraps a failed YouTube Data API call.
	APIError = youtube.APIError
	// StorageError wraps errors during directory file operations.
	StorageError = storage.StorageError
)

// Sentinel errors exported from sub-packages.
var (
	// ErrNotFound means a channel or its uploads do not exist. Entries hit by
	// it are left unchanged.
	ErrNotFound = youtube.ErrNotFound
	// ErrQuotaExceeded matches 403 responses from the API.
	ErrQuotaExceeded = youtube.ErrQuotaExceeded
	// ErrNoCredentials means no API key is configured.
	ErrNoCredentials = youtube.ErrNoCredentials
	// ErrMalformedResponse marks API responses that could not be decoded.
	ErrMalformedResponse = youtube.ErrMalformedResponse

	// Storage errors
	// ErrStorageCorrupt means the directory file is not valid JSON.
	ErrStorageCorrupt = storage.ErrStorageCorrupt
	// ErrLockTimeout means another process holds the directory file.
	ErrLockTimeout = storage.ErrLockTimeout

	// ErrMalformedExtraction rejects a whole batch of LLM extraction output.
	ErrMalformedExtraction = ingest.ErrMalformedExtraction
	// ErrInvalidConfig wraps configuration validation failures.
	ErrInvalidConfig = config.ErrInvalidConfig
)

// IsQuotaExceeded reports whether err is a 403 that triggers key failover.
func IsQuotaExceeded(err error) bool {
	return youtube.IsQuotaExceeded(err)
}
