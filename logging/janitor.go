package logging

import (
	"sync"

	"github.com/robfig/cron/v3"
)

// janitorSpec runs the prune sweep shortly after the date pattern usually
// rolls over.
const janitorSpec = "5 0 * * *"

// Janitor prunes expired log files on a schedule, so retention holds even
// for severities that log too rarely to rotate.
type Janitor struct {
	cron    *cron.Cron
	logger  *Logger
	mu      sync.Mutex
	started bool
}

// NewJanitor builds a janitor over the logger's file transports.
func NewJanitor(logger *Logger) (*Janitor, error) {
	j := &Janitor{cron: cron.New(), logger: logger}
	if _, err := j.cron.AddFunc(janitorSpec, j.sweep); err != nil {
		return nil, err
	}
	return j, nil
}

func (j *Janitor) sweep() {
	for _, t := range j.logger.Transports() {
		ft, ok := t.(*FileTransport)
		if !ok {
			continue
		}
		if err := ft.Prune(); err != nil {
			j.logger.Warn("log prune failed for %s: %v", ft.Name(), err)
		}
	}
	j.logger.Debug("log prune sweep completed")
}

// Start begins scheduled pruning. Repeated calls are no-ops.
func (j *Janitor) Start() {
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.started {
		return
	}
	j.cron.Start()
	j.started = true
}

// Stop halts the schedule and waits for a running sweep to finish.
func (j *Janitor) Stop() {
	j.mu.Lock()
	defer j.mu.Unlock()
	if !j.started {
		return
	}
	j.started = false
	<-j.cron.Stop().Done()
}
