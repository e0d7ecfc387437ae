package logger

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// SafeFileWriter provides thread-safe file writing with buffering and periodic flush.
// It satisfies zapcore.WriteSyncer.
type SafeFileWriter struct {
	mu       sync.Mutex
	writer   *bufio.Writer
	file     *os.File
	ticker   *time.Ticker
	done     chan struct{}
	closed   bool
	filePath string

	// Stats
	writes     uint64
	flushCount uint64
}

// NewSafeFileWriter creates a new thread-safe file writer
func NewSafeFileWriter(filePath string, flushInterval time.Duration) (*SafeFileWriter, error) {
	// Ensure directory exists
	dir := filepath.Dir(filePath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	// Open file in append mode
	file, err := os.OpenFile(filePath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}

	sfw := &SafeFileWriter{
		writer:   bufio.NewWriter(file),
		file:     file,
		ticker:   time.NewTicker(flushInterval),
		done:     make(chan struct{}),
		filePath: filePath,
	}

	// Start periodic flush goroutine
	go sfw.periodicFlush()

	return sfw, nil
}

// Write writes data to the file in a thread-safe manner
func (sfw *SafeFileWriter) Write(data []byte) (int, error) {
	sfw.mu.Lock()
	defer sfw.mu.Unlock()

	if sfw.closed {
		return 0, fmt.Errorf("write to closed file %s", sfw.filePath)
	}

	n, err := sfw.writer.Write(data)
	if err != nil {
		return n, fmt.Errorf("failed to write data: %w", err)
	}

	sfw.writes++
	return n, nil
}

// Sync forces a write of any buffered data
func (sfw *SafeFileWriter) Sync() error {
	sfw.mu.Lock()
	defer sfw.mu.Unlock()
	return sfw.flushLocked()
}

func (sfw *SafeFileWriter) flushLocked() error {
	if sfw.closed {
		return nil
	}
	if err := sfw.writer.Flush(); err != nil {
		return fmt.Errorf("failed to flush buffer: %w", err)
	}
	if err := sfw.file.Sync(); err != nil {
		return fmt.Errorf("failed to sync file: %w", err)
	}
	sfw.flushCount++
	return nil
}

// periodicFlush runs in a goroutine to periodically flush the buffer
func (sfw *SafeFileWriter) periodicFlush() {
	for {
		select {
		case <-sfw.ticker.C:
			// errors surface again on the next Sync or Close
			_ = sfw.Sync()
		case <-sfw.done:
			return
		}
	}
}

// Close closes the writer and ensures all data is written
func (sfw *SafeFileWriter) Close() error {
	sfw.mu.Lock()
	defer sfw.mu.Unlock()

	if sfw.closed {
		return nil
	}

	// Stop periodic flush
	close(sfw.done)
	sfw.ticker.Stop()

	// Final flush
	if err := sfw.writer.Flush(); err != nil {
		return fmt.Errorf("failed to flush on close: %w", err)
	}
	sfw.closed = true

	if err := sfw.file.Close(); err != nil {
		return fmt.Errorf("failed to close file: %w", err)
	}
	return nil
}

// GetStats returns writer statistics
func (sfw *SafeFileWriter) GetStats() (writes, flushes uint64) {
	sfw.mu.Lock()
	defer sfw.mu.Unlock()
	return sfw.writes, sfw.flushCount
}
