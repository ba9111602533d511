// Package progress defines the synchronous observer the pipeline stages call
// as they work through records.
package progress

import "log/slog"

// Update is one progress record.
type Update struct {
	Stage     string
	Processed int
	Total     int
}

// Observer receives progress updates. Calls are synchronous and from a single
// goroutine; implementations must not block for long.
type Observer interface {
	Progress(u Update)
}

// Noop is a no-op observer for tests.
type Noop struct{}

// Progress implements Observer as a no-op.
func (Noop) Progress(Update) {}

// NewNoop creates a new no-op observer.
func NewNoop() Observer {
	return Noop{}
}

// LogObserver logs progress every Nth record and on completion.
type LogObserver struct {
	logger *slog.Logger
	every  int
}

// NewLogObserver creates an observer logging every `every` records.
func NewLogObserver(logger *slog.Logger, every int) *LogObserver {
	if every < 1 {
		every = 1
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &LogObserver{logger: logger, every: every}
}

// Progress implements Observer.
func (o *LogObserver) Progress(u Update) {
	if u.Processed%o.every != 0 && u.Processed != u.Total {
		return
	}
	o.logger.Info("progress",
		"stage", u.Stage,
		"processed", u.Processed,
		"total", u.Total)
}
