package providers

import "time"

const (
	// shutdownTimeout is the maximum time to wait for graceful shutdown of services.
	shutdownTimeout = 30 * time.Second

	// sessionCleanupInterval is how often expired refresh sessions are purged.
	sessionCleanupInterval = time.Hour

	// pingTimeout bounds the startup reachability check of external backends.
	pingTimeout = 5 * time.Second
)
