package providers

import (
	"github.com/samber/do/v2"

	"github.com/fastlogapp/fastlog-server/internal/config"
	"github.com/fastlogapp/fastlog-server/internal/events"
	"github.com/fastlogapp/fastlog-server/internal/logger"
	"github.com/fastlogapp/fastlog-server/internal/notify"
	"github.com/fastlogapp/fastlog-server/internal/service"
)

// PublisherHandle wraps the domain event publisher with shutdown capability.
type PublisherHandle struct {
	events.Publisher
}

// Shutdown implements do.Shutdownable.
func (h *PublisherHandle) Shutdown() error {
	return h.Close()
}

// ProvidePublisher provides the domain event publisher. With a broker URL, events go to
// RabbitMQ behind a circuit breaker; without one they are only logged.
func ProvidePublisher(i do.Injector) (*PublisherHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	if cfg.Broker.URL == "" {
		log.Info("Event broker disabled")
		return &PublisherHandle{Publisher: events.NewNoopPublisher(log.Logger)}, nil
	}

	rabbit, err := events.NewRabbitMQPublisher(cfg.Broker.URL, cfg.Broker.Exchange, log.Logger)
	if err != nil {
		return nil, err
	}

	log.Info("Publishing events to RabbitMQ", "exchange", cfg.Broker.Exchange)
	return &PublisherHandle{
		Publisher: events.NewBreakerPublisher(rabbit, events.DefaultBreakerSettings(), log.Logger),
	}, nil
}

// ProvideNotifier provides the notification fan-out: the user's SSE streams and,
// when enabled, the host desktop.
func ProvideNotifier(i do.Injector) (notify.Notifier, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)
	sseHandle := do.MustInvoke[*SSEManagerHandle](i)

	notifiers := []notify.Notifier{notify.NewSSE(sseHandle.Manager)}
	if cfg.Notify.Desktop {
		notifiers = append(notifiers, notify.NewDesktop("FastLog"))
		log.Info("Desktop notifications enabled")
	}

	return notify.NewMulti(log.Logger, notifiers...), nil
}

// ProvideDispatcher provides the fan-out used by services for side effects.
func ProvideDispatcher(i do.Injector) (*service.Dispatcher, error) {
	log := do.MustInvoke[*logger.Logger](i)
	sseHandle := do.MustInvoke[*SSEManagerHandle](i)
	publisher := do.MustInvoke[*PublisherHandle](i)
	notifier := do.MustInvoke[notify.Notifier](i)

	return service.NewDispatcher(sseHandle.Manager, publisher, notifier, log.Logger), nil
}
