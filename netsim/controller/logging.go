package controller

import (
	"io"

	"github.com/sirupsen/logrus"
)

// bufferedHook queues formatted log lines instead of writing them
// immediately. The controller enables it for the run loop (unless log
// level is "trace") and flushes on teardown, matching spec.md §4.4
// steps 8/10 — buffering keeps a long run from paying I/O cost per log
// line while still emitting everything in order once the run completes.
type bufferedHook struct {
	out  io.Writer
	lines [][]byte
}

func (h *bufferedHook) Levels() []logrus.Level {
	return logrus.AllLevels
}

func (h *bufferedHook) Fire(e *logrus.Entry) error {
	line, err := e.Logger.Formatter.Format(e)
	if err != nil {
		return err
	}
	h.lines = append(h.lines, line)
	return nil
}

func (h *bufferedHook) flush() {
	for _, line := range h.lines {
		_, _ = h.out.Write(line)
	}
	h.lines = nil
}

// enableBufferedLogging redirects the standard logger's output to a
// discard writer and installs a hook that captures formatted lines for
// later replay, so disableBufferedLogging can emit them in order.
func (c *Controller) enableBufferedLogging() {
	c.loggingHook = &bufferedHook{out: logrus.StandardLogger().Out}
	logrus.SetOutput(io.Discard)
	logrus.AddHook(c.loggingHook)
	c.bufferedLogging = true
}

// disableBufferedLogging flushes queued entries, restores direct
// output, and removes the hook so later log calls aren't silently
// captured with nothing left to flush them.
func (c *Controller) disableBufferedLogging() {
	logrus.SetOutput(c.loggingHook.out)
	c.loggingHook.flush()

	logger := logrus.StandardLogger()
	for level, hooks := range logger.Hooks {
		kept := hooks[:0]
		for _, h := range hooks {
			if h != c.loggingHook {
				kept = append(kept, h)
			}
		}
		logger.Hooks[level] = kept
	}

	c.bufferedLogging = false
}
