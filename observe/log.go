package observe

import (
	"log/slog"

	"github.com/andriiyaremenko/tinyioc"
)

var _ tinyioc.Observer = new(LogObserver)

// LogObserver writes container events to a structured logger.
type LogObserver struct {
	logger *slog.Logger
}

func NewLogObserver(logger *slog.Logger) *LogObserver {
	return &LogObserver{logger: logger}
}

func (o *LogObserver) PhaseCompleted(e tinyioc.PhaseEvent) {
	if e.Err != nil {
		o.logger.Error("container phase failed",
			"phase", e.Phase.String(),
			"beans", e.Beans,
			"error", e.Err,
		)

		return
	}

	o.logger.Info("container phase completed",
		"phase", e.Phase.String(),
		"beans", e.Beans,
		"duration_ms", e.Duration().Milliseconds(),
	)
}

func (o *LogObserver) BeanInstantiated(e tinyioc.BeanEvent) {
	if e.Err != nil {
		o.logger.Error("bean instantiation failed", "bean", e.Name, "type", e.Type, "error", e.Err)
		return
	}

	o.logger.Debug("bean instantiated", "bean", e.Name, "type", e.Type, "duration", e.Duration())
}
