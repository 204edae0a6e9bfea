package progress

import (
	"io"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/thalespaiva/bgphijack/pkg/asrel"
	"github.com/thalespaiva/bgphijack/pkg/logging"
)

// Display draws live phase progress bars on a terminal. It implements
// asrel.PhaseObserver.
type Display struct {
	program *tea.Program
	done    chan struct{}
	err     error
	stop    sync.Once
}

// NewDisplay starts the progress program on out, usually standard error.
// Keyboard input is not read.
func NewDisplay(out io.Writer) *Display {
	d := &Display{
		program: tea.NewProgram(newModel(), tea.WithOutput(out), tea.WithInput(nil), tea.WithoutSignalHandler()),
		done:    make(chan struct{}),
	}
	go func() {
		defer close(d.done)
		_, d.err = d.program.Run()
	}()
	return d
}

func (d *Display) PhaseStarted(phase asrel.Phase, total int) {
	d.program.Send(phaseStartedMsg{phase: phase, total: total})
}

func (d *Display) PhaseProgress(phase asrel.Phase, done int) {
	d.program.Send(phaseProgressMsg{phase: phase, done: done})
}

func (d *Display) PhaseFinished(phase asrel.Phase, elapsed time.Duration) {
	d.program.Send(phaseFinishedMsg{phase: phase, elapsed: elapsed})
}

// Close renders the final state and waits for the program to exit.
func (d *Display) Close() error {
	d.stop.Do(func() {
		d.program.Send(stopMsg{})
	})
	<-d.done
	return d.err
}

// LogObserver logs the start and duration of every phase.
type LogObserver struct {
	logger logging.Logger

	mu     sync.Mutex
	timers map[asrel.Phase]*logging.TimedOperation
}

// NewLogObserver creates an observer that logs phases on logger.
func NewLogObserver(logger logging.Logger) *LogObserver {
	return &LogObserver{logger: logger, timers: make(map[asrel.Phase]*logging.TimedOperation)}
}

func (o *LogObserver) PhaseStarted(phase asrel.Phase, total int) {
	o.logger.Debug("phase started", logging.Phase(string(phase)), logging.Count(total))

	o.mu.Lock()
	o.timers[phase] = logging.StartTimer(o.logger, "phase finished", logging.Phase(string(phase)), logging.Count(total))
	o.mu.Unlock()
}

func (o *LogObserver) PhaseProgress(asrel.Phase, int) {}

func (o *LogObserver) PhaseFinished(phase asrel.Phase, _ time.Duration) {
	o.mu.Lock()
	timer, ok := o.timers[phase]
	delete(o.timers, phase)
	o.mu.Unlock()

	if ok {
		timer.End()
	}
}
