package api

// Cache-Control header values.
const (
	CacheNoStore = "no-store"
)
