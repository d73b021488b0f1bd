package ui

import (
	"time"

	"github.com/briandowns/spinner"
)

// Spinner wraps an indeterminate progress indicator.
type Spinner struct {
	spinner *spinner.Spinner
}

// NewSpinner creates a spinner with the given message.
func NewSpinner(message string) *Spinner {
	s := spinner.New(spinner.CharSets[14], 100*time.Millisecond)
	s.Suffix = " " + message
	return &Spinner{spinner: s}
}

// Start begins the spinner animation.
func (s *Spinner) Start() {
	s.spinner.Start()
}

// Stop halts the spinner and clears its line.
func (s *Spinner) Stop() {
	s.spinner.Stop()
}

// UpdateMessage changes the spinner message while running.
func (s *Spinner) UpdateMessage(message string) {
	s.spinner.Suffix = " " + message
}
