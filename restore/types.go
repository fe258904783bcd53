package restore

import (
	"time"

	"github.com/willibrandon/gorestore/compatibility"
	"github.com/willibrandon/gorestore/core/resolver"
	"github.com/willibrandon/gorestore/lockfile"
	"github.com/willibrandon/gorestore/project"
)

// Result holds the outcome of one restore session.
type Result struct {
	// SessionID correlates the logs and spans of the session.
	SessionID string

	Project      *project.Project
	LockFilePath string
	LockFile     *lockfile.LockFile
	// Fingerprint is lockfile.Fingerprint of LockFile.
	Fingerprint uint64

	// Graphs holds one walk result per target, in target order.
	Graphs []*resolver.WalkResult
	Issues []compatibility.Issue

	Diagnostics []*Diagnostic

	// LockFileWritten is false when the file on disk was already identical
	// or writing was disabled.
	LockFileWritten bool
	// UsedLockFile reports that versions came from a valid locked lock file.
	UsedLockFile bool

	Duration time.Duration
}

// Success reports whether the restore found no errors.
func (r *Result) Success() bool {
	for _, d := range r.Diagnostics {
		if d.Level == LevelError {
			return false
		}
	}
	return true
}

// Errors returns the error-level diagnostics.
func (r *Result) Errors() []*Diagnostic {
	return r.filter(LevelError)
}

// Warnings returns the warning-level diagnostics.
func (r *Result) Warnings() []*Diagnostic {
	return r.filter(LevelWarning)
}

func (r *Result) filter(level Level) []*Diagnostic {
	var out []*Diagnostic
	for _, d := range r.Diagnostics {
		if d.Level == level {
			out = append(out, d)
		}
	}
	return out
}
