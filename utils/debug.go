package utils

import (
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// DebugManager writes request and response bodies to a directory so a
// failing note can be inspected after the batch. An empty dir disables it.
type DebugManager struct {
	dir    string
	logger Logger
	now    func() time.Time
}

// NewDebugManager creates the output directory when dir is not empty.
func NewDebugManager(dir string, logger Logger) *DebugManager {
	dm := &DebugManager{dir: dir, logger: logger, now: time.Now}
	if dir == "" {
		return dm
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		logger.Warn("Failed to create debug output directory, disabling dumps", "dir", dir, "error", err)
		dm.dir = ""
	}
	return dm
}

// IsEnabled returns whether dumps are written.
func (dm *DebugManager) IsEnabled() bool {
	return dm != nil && dm.dir != ""
}

// SaveExchange stores one request body and the raw response for a note.
// A nil response (transport failure) is not written.
func (dm *DebugManager) SaveExchange(noteID int64, provider string, request, response []byte) {
	if !dm.IsEnabled() {
		return
	}
	stamp := dm.now().Format("20060102_150405")
	base := fmt.Sprintf("note_%d_%s_%s", noteID, provider, stamp)

	dm.saveToFile(base+"_request.json", request)
	if response != nil {
		dm.saveToFile(base+"_response.json", response)
	}
}

func (dm *DebugManager) saveToFile(filename string, content []byte) {
	path := filepath.Join(dm.dir, filename)
	if err := os.WriteFile(path, content, 0o644); err != nil {
		dm.logger.Error("Failed to write debug output", "error", err, "file", path)
		return
	}
	dm.logger.Debug("Debug output written", "file", path)
}
