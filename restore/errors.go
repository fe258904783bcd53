package restore

import (
	"fmt"

	"github.com/fatih/color"
)

// Diagnostic codes reported by a restore.
const (
	// CodeUnresolvedDependency: no provider could supply a dependency
	CodeUnresolvedDependency = "NU1001"
	// CodeCompatibility: a resolved package cannot be used on a target
	CodeCompatibility = "NU1002"
)

// Level is the severity of a diagnostic.
type Level int

const (
	LevelWarning Level = iota
	LevelError
)

func (l Level) String() string {
	if l == LevelError {
		return "error"
	}
	return "warning"
}

// Diagnostic is a problem found while restoring a project. Restores collect
// every diagnostic instead of stopping at the first.
type Diagnostic struct {
	Code        string
	Level       Level
	Message     string
	ProjectPath string
	LibraryName string
	// Framework is the target the problem was found on, with its runtime
	// identifier when there is one.
	Framework string
}

// Error implements the error interface.
func (d *Diagnostic) Error() string {
	return d.Format(false)
}

// Format renders "path : error NU1001: message". With colorize the level
// and code are red for errors and yellow for warnings.
func (d *Diagnostic) Format(colorize bool) string {
	label := fmt.Sprintf("%s %s", d.Level, d.Code)
	if colorize {
		c := color.New(color.FgYellow, color.Bold)
		if d.Level == LevelError {
			c = color.New(color.FgRed, color.Bold)
		}
		c.EnableColor()
		label = c.Sprint(label)
	}
	return fmt.Sprintf("    %s : %s: %s", d.ProjectPath, label, d.Message)
}
