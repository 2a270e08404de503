package logging

import (
	"sync"

	"github.com/sirupsen/logrus"
)

// StepLogger numbers the steps of one test
type StepLogger struct {
	mu     sync.Mutex
	logger logrus.FieldLogger
	step   int
}

func NewStepLogger(logger logrus.FieldLogger) *StepLogger {
	return &StepLogger{logger: logger}
}

// Step logs "STEP n: message" and returns n
func (s *StepLogger) Step(format string, args ...any) int {
	s.mu.Lock()
	s.step++
	n := s.step
	s.mu.Unlock()
	s.logger.WithField("step", n).Infof("STEP %d: "+format, append([]any{n}, args...)...)
	return n
}

func (s *StepLogger) Info(format string, args ...any) {
	s.logger.Infof("  → "+format, args...)
}

func (s *StepLogger) Success(format string, args ...any) {
	s.logger.Infof("  ✓ "+format, args...)
}

func (s *StepLogger) Failure(format string, args ...any) {
	s.logger.Errorf("  ✗ "+format, args...)
}

func (s *StepLogger) Warning(format string, args ...any) {
	s.logger.Warnf("  ⚠ "+format, args...)
}

// Steps returns how many steps were logged
func (s *StepLogger) Steps() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.step
}
