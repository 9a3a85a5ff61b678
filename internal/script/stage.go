package script

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/webmend/webmend/internal/errors"
)

// Stage owns the per-session directory where script iterations are written.
// Each iteration gets a unique file name, so sessions sharing a filesystem
// never collide.
type Stage struct {
	sessionID string
	dir       string
}

// NewStage creates the session directory under baseDir. When baseDir is
// empty the system temp directory is used.
func NewStage(baseDir string) (*Stage, error) {
	if baseDir == "" {
		baseDir = os.TempDir()
	}

	sessionID := uuid.NewString()
	dir := filepath.Join(baseDir, "webmend-"+sessionID)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, errors.Wrap(err, "failed to create session directory")
	}

	return &Stage{
		sessionID: sessionID,
		dir:       dir,
	}, nil
}

// SessionID returns the unique identifier of this session.
func (s *Stage) SessionID() string {
	return s.sessionID
}

// Dir returns the session directory path.
func (s *Stage) Dir() string {
	return s.dir
}

// WriteIteration stages the script for one iteration and returns its path.
// The iteration number and a fresh uuid are both part of the file name: the
// number for humans reading the session directory, the uuid for uniqueness.
func (s *Stage) WriteIteration(iteration int, scriptText string) (string, error) {
	name := fmt.Sprintf("iter-%02d-%s.sh", iteration, uuid.NewString()[:8])
	path := filepath.Join(s.dir, name)

	if err := os.WriteFile(path, []byte(scriptText), 0o700); err != nil { //#nosec G306 -- script must be executable
		return "", fmt.Errorf("%w: %s", errors.ErrScriptStageFailed, err)
	}
	return path, nil
}

// Cleanup removes the session directory and everything staged in it.
func (s *Stage) Cleanup() error {
	return os.RemoveAll(s.dir)
}
