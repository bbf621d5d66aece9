package main

import (
	"strings"
	"sync"

	"rebase-dapp-tui/styles"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
)

// maxLogBytes bounds the log buffer; older lines are dropped first
const maxLogBytes = 64 << 10

// logSink is the log panel's buffer. Loggers in the wallet, contracts and
// dapp packages write to it from command goroutines.
type logSink struct {
	mu  sync.Mutex
	buf strings.Builder
}

func (s *logSink) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.buf.Len()+len(p) > maxLogBytes {
		kept := s.buf.String()
		cut := len(kept) / 2
		if i := strings.IndexByte(kept[cut:], '\n'); i >= 0 {
			cut += i + 1
		}
		s.buf.Reset()
		s.buf.WriteString(kept[cut:])
	}
	return s.buf.Write(p)
}

func (s *logSink) String() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.buf.String()
}

func (s *logSink) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.buf.Len()
}

// newLogger returns a debug-level logger styled for the log panel
func newLogger(sink *logSink) *log.Logger {
	logger := log.NewWithOptions(sink, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05",
		Level:           log.DebugLevel,
	})
	logger.SetStyles(logStyles())
	return logger
}

// logStyles follows the active theme
func logStyles() *log.Styles {
	return &log.Styles{
		Timestamp: lipgloss.NewStyle().Foreground(styles.CMuted),
		Caller:    lipgloss.NewStyle().Faint(true),
		Prefix:    lipgloss.NewStyle().Bold(true).Foreground(styles.CAccent2),
		Message:   lipgloss.NewStyle().Foreground(styles.CText),
		Key:       lipgloss.NewStyle().Foreground(styles.CAccent),
		Value:     lipgloss.NewStyle().Foreground(styles.CText),
		Separator: lipgloss.NewStyle().Faint(true),
		Levels: map[log.Level]lipgloss.Style{
			log.DebugLevel: lipgloss.NewStyle().Foreground(styles.CMuted).SetString("DEBUG"),
			log.InfoLevel:  lipgloss.NewStyle().Foreground(styles.CAccent2).SetString("INFO"),
			log.WarnLevel:  lipgloss.NewStyle().Foreground(styles.CWarn).SetString("WARN"),
			log.ErrorLevel: lipgloss.NewStyle().Foreground(styles.CError).SetString("ERROR"),
		},
		Keys:   map[string]lipgloss.Style{},
		Values: map[string]lipgloss.Style{},
	}
}
