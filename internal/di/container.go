// Package di provides dependency injection configuration for the FastLog server.
package di

import (
	"github.com/samber/do/v2"

	"github.com/fastlogapp/fastlog-server/internal/auth"
	"github.com/fastlogapp/fastlog-server/internal/config"
	"github.com/fastlogapp/fastlog-server/internal/di/providers"
	"github.com/fastlogapp/fastlog-server/internal/logger"
	"github.com/fastlogapp/fastlog-server/internal/notify"
	"github.com/fastlogapp/fastlog-server/internal/service"
	"github.com/fastlogapp/fastlog-server/internal/validation"
)

// NewContainer creates and configures the DI container with all providers.
func NewContainer() *do.RootScope {
	injector := do.New()

	// Core infrastructure
	do.Provide(injector, providers.ProvideConfig)
	do.Provide(injector, providers.ProvideLogger)
	do.Provide(injector, providers.ProvideSlogLogger)
	do.Provide(injector, providers.ProvideValidator)
	do.Provide(injector, providers.ProvideAuthKey)

	// Database and realtime layer
	do.Provide(injector, providers.ProvideSSEManager)
	do.Provide(injector, providers.ProvideStore)

	// Side effects
	do.Provide(injector, providers.ProvidePublisher)
	do.Provide(injector, providers.ProvideNotifier)
	do.Provide(injector, providers.ProvideDispatcher)

	// Auth layer
	do.Provide(injector, providers.ProvideTokenService)
	do.Provide(injector, providers.ProvideRevoker)

	// Workers
	do.Provide(injector, providers.ProvideGoalWatcher)
	do.Provide(injector, providers.ProvideSessionCleanupJob)

	// Business services
	do.Provide(injector, providers.ProvideSessionService)
	do.Provide(injector, providers.ProvideAuthService)
	do.Provide(injector, providers.ProvideFastingService)
	do.Provide(injector, providers.ProvideHydrationService)
	do.Provide(injector, providers.ProvideMoodService)
	do.Provide(injector, providers.ProvideAnalyticsService)
	do.Provide(injector, providers.ProvideDashboardService)

	// Server
	do.Provide(injector, providers.ProvideHTTPServer)

	return injector
}

// Bootstrap initializes all services and returns handles for lifecycle management.
// This triggers lazy initialization of all core services.
func Bootstrap(injector *do.RootScope) error {
	// Invoke core services to trigger initialization
	_ = do.MustInvoke[*config.Config](injector)
	_ = do.MustInvoke[*logger.Logger](injector)
	_ = do.MustInvoke[*validation.Validator](injector)
	_ = do.MustInvoke[providers.AuthKey](injector)
	_ = do.MustInvoke[*providers.SSEManagerHandle](injector)
	_ = do.MustInvoke[*providers.StoreHandle](injector)
	_ = do.MustInvoke[*providers.PublisherHandle](injector)
	_ = do.MustInvoke[notify.Notifier](injector)
	_ = do.MustInvoke[*service.Dispatcher](injector)
	_ = do.MustInvoke[*auth.TokenService](injector)
	_ = do.MustInvoke[*providers.RevokerHandle](injector)

	// Workers
	_ = do.MustInvoke[*providers.GoalWatcherHandle](injector)

	// Business services
	_ = do.MustInvoke[*service.SessionService](injector)
	_ = do.MustInvoke[*service.AuthService](injector)
	_ = do.MustInvoke[*service.FastingService](injector)
	_ = do.MustInvoke[*service.HydrationService](injector)
	_ = do.MustInvoke[*service.MoodService](injector)
	_ = do.MustInvoke[*service.AnalyticsService](injector)
	_ = do.MustInvoke[*service.DashboardService](injector)

	_ = do.MustInvoke[*providers.SessionCleanupJob](injector)

	// Server
	_ = do.MustInvoke[*providers.HTTPServerHandle](injector)

	return nil
}
