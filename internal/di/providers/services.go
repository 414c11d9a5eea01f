package providers

import (
	"github.com/samber/do/v2"

	"github.com/fastlogapp/fastlog-server/internal/auth"
	"github.com/fastlogapp/fastlog-server/internal/config"
	"github.com/fastlogapp/fastlog-server/internal/logger"
	"github.com/fastlogapp/fastlog-server/internal/service"
	"github.com/fastlogapp/fastlog-server/internal/validation"
)

// ProvideSessionService provides the session management service.
func ProvideSessionService(i do.Injector) (*service.SessionService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	tokenService := do.MustInvoke[*auth.TokenService](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewSessionService(storeHandle.Store, tokenService, log.Logger), nil
}

// ProvideAuthService provides the authentication service.
func ProvideAuthService(i do.Injector) (*service.AuthService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	tokenService := do.MustInvoke[*auth.TokenService](i)
	sessionService := do.MustInvoke[*service.SessionService](i)
	revoker := do.MustInvoke[*RevokerHandle](i)
	watcher := do.MustInvoke[*GoalWatcherHandle](i)
	validator := do.MustInvoke[*validation.Validator](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewAuthService(
		storeHandle.Store,
		tokenService,
		sessionService,
		revoker,
		watcher.GoalWatcher,
		validator,
		log.Logger,
	), nil
}

// ProvideFastingService provides the fasting session service.
func ProvideFastingService(i do.Injector) (*service.FastingService, error) {
	cfg := do.MustInvoke[*config.Config](i)
	storeHandle := do.MustInvoke[*StoreHandle](i)
	watcher := do.MustInvoke[*GoalWatcherHandle](i)
	dispatch := do.MustInvoke[*service.Dispatcher](i)
	validator := do.MustInvoke[*validation.Validator](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewFastingService(
		storeHandle.Store,
		watcher.GoalWatcher,
		dispatch,
		validator,
		cfg.Tracking.DefaultGoalHours,
		cfg.Tracking.Location,
		log.Logger,
	), nil
}

// ProvideHydrationService provides the hydration service.
func ProvideHydrationService(i do.Injector) (*service.HydrationService, error) {
	cfg := do.MustInvoke[*config.Config](i)
	storeHandle := do.MustInvoke[*StoreHandle](i)
	dispatch := do.MustInvoke[*service.Dispatcher](i)
	validator := do.MustInvoke[*validation.Validator](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewHydrationService(storeHandle.Store, dispatch, validator, cfg.Tracking.Location, log.Logger), nil
}

// ProvideMoodService provides the mood check-in service.
func ProvideMoodService(i do.Injector) (*service.MoodService, error) {
	cfg := do.MustInvoke[*config.Config](i)
	storeHandle := do.MustInvoke[*StoreHandle](i)
	dispatch := do.MustInvoke[*service.Dispatcher](i)
	validator := do.MustInvoke[*validation.Validator](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewMoodService(storeHandle.Store, dispatch, validator, cfg.Tracking.Location, log.Logger), nil
}

// ProvideAnalyticsService provides the stats, trends and milestones service.
func ProvideAnalyticsService(i do.Injector) (*service.AnalyticsService, error) {
	cfg := do.MustInvoke[*config.Config](i)
	storeHandle := do.MustInvoke[*StoreHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewAnalyticsService(storeHandle.Store, cfg.Tracking.Location, log.Logger), nil
}

// ProvideDashboardService provides the dashboard service.
func ProvideDashboardService(i do.Injector) (*service.DashboardService, error) {
	return service.NewDashboardService(
		do.MustInvoke[*service.FastingService](i),
		do.MustInvoke[*service.HydrationService](i),
		do.MustInvoke[*service.MoodService](i),
		do.MustInvoke[*service.AnalyticsService](i),
	), nil
}
