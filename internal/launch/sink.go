package launch

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// FileSink appends game output to a log file, one timestamped line per call.
type FileSink struct {
	mu sync.Mutex
	f  *os.File
}

func NewFileSink(path string) (*FileSink, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, err
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
	if err != nil {
		return nil, err
	}

	return &FileSink{f: f}, nil
}

func (s *FileSink) Append(line, level string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	fmt.Fprintf(s.f, "[%s] [%s] %s\n", time.Now().Format("15:04:05"), level, line)
}

func (s *FileSink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.f.Close()
}
