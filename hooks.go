package tinyioc

import "time"

// PhaseEvent is emitted every time a container attempts to reach a phase.
type PhaseEvent struct {
	Started  time.Time
	Finished time.Time
	Err      error
	Phase    Phase
	Beans    int
}

func (e PhaseEvent) Duration() time.Duration {
	return e.Finished.Sub(e.Started)
}

// BeanEvent is emitted after a bean constructor ran.
type BeanEvent struct {
	Started  time.Time
	Finished time.Time
	Err      error
	Name     string
	Type     string
}

func (e BeanEvent) Duration() time.Duration {
	return e.Finished.Sub(e.Started)
}

// Observer receives events at phase boundaries and after each bean construction.
// Events are delivered synchronously from the goroutine that calls Validate or Build.
type Observer interface {
	PhaseCompleted(PhaseEvent)
	BeanInstantiated(BeanEvent)
}

func (c *container) notifyPhase(phase Phase, started time.Time, err error) {
	event := PhaseEvent{
		Phase:    phase,
		Started:  started,
		Finished: time.Now(),
		Err:      err,
		Beans:    len(c.beans),
	}

	if err != nil {
		logger().Debug("container phase failed", "phase", phase, "error", err)
	} else {
		logger().Debug("container phase completed", "phase", phase, "duration", event.Duration())
	}

	for _, o := range c.conf.Observers {
		o.PhaseCompleted(event)
	}
}

func (c *container) notifyBean(bean *Bean, started time.Time, err error) {
	if len(c.conf.Observers) == 0 {
		return
	}

	event := BeanEvent{
		Name:     bean.Name,
		Type:     typeName(bean.Type),
		Started:  started,
		Finished: time.Now(),
		Err:      err,
	}

	for _, o := range c.conf.Observers {
		o.BeanInstantiated(event)
	}
}
