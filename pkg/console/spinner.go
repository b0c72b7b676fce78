package console

import (
	"os"
	"sync"
	"time"

	"github.com/briandowns/spinner"
	"github.com/mattn/go-isatty"
)

// SpinnerDelay is how long an operation runs before the spinner is drawn, so fast
// analyses finish without flicker
const SpinnerDelay = 150 * time.Millisecond

// Spinner shows progress on stderr while a slow operation runs. Stdout stays clean for
// piped output, and nothing is drawn when stderr is not a terminal.
type Spinner struct {
	mu      sync.Mutex
	spinner *spinner.Spinner
	timer   *time.Timer
	delay   time.Duration
}

// NewSpinner creates a spinner with the given message
func NewSpinner(message string) *Spinner {
	s := &Spinner{delay: SpinnerDelay}
	if isatty.IsTerminal(os.Stderr.Fd()) {
		s.spinner = spinner.New(spinner.CharSets[14], 100*time.Millisecond, spinner.WithWriter(os.Stderr), spinner.WithHiddenCursor(true))
		s.spinner.Suffix = " " + message
		_ = s.spinner.Color("cyan")
	}
	return s
}

// Start draws the spinner once the delay has passed, unless Stop comes first
func (s *Spinner) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.spinner == nil || s.timer != nil {
		return
	}
	s.timer = time.AfterFunc(s.delay, s.draw)
}

func (s *Spinner) draw() {
	s.mu.Lock()
	defer s.mu.Unlock()
	// Stop already ran
	if s.timer == nil {
		return
	}
	s.spinner.Start()
}

// Stop cancels a pending start and clears the spinner
func (s *Spinner) Stop() {
	s.StopWithMessage("")
}

// StopWithMessage stops the spinner and leaves message in its place when it was drawn
func (s *Spinner) StopWithMessage(message string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.spinner == nil || s.timer == nil {
		return
	}
	s.timer.Stop()
	s.timer = nil
	if s.spinner.Active() {
		if message != "" {
			s.spinner.FinalMSG = message + "\n"
		}
		s.spinner.Stop()
	}
}

// UpdateMessage replaces the text shown next to the spinner
func (s *Spinner) UpdateMessage(message string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.spinner != nil {
		s.spinner.Lock()
		s.spinner.Suffix = " " + message
		s.spinner.Unlock()
	}
}

// IsEnabled reports whether stderr is a terminal
func (s *Spinner) IsEnabled() bool {
	return s.spinner != nil
}
