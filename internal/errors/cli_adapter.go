package errors

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
)

// CLIErrorAdapter handles error presentation and exit code determination for CLI applications.
type CLIErrorAdapter struct {
	verbose bool
	logger  *slog.Logger
	out     io.Writer
	exit    func(int)
}

// NewCLIErrorAdapter creates a new CLI error adapter.
func NewCLIErrorAdapter(verbose bool, logger *slog.Logger) *CLIErrorAdapter {
	if logger == nil {
		logger = slog.Default()
	}
	return &CLIErrorAdapter{
		verbose: verbose,
		logger:  logger,
		out:     os.Stderr,
		exit:    os.Exit,
	}
}

// ExitCodeFor determines the appropriate exit code for an error.
func (a *CLIErrorAdapter) ExitCodeFor(err error) int {
	if err == nil {
		return 0
	}

	if e, ok := As(err); ok {
		return a.exitCodeFromError(e)
	}

	return 1
}

// exitCodeFromError maps Error categories to exit codes.
func (a *CLIErrorAdapter) exitCodeFromError(err *Error) int {
	switch err.Category {
	case CategoryValidation:
		return 2 // Invalid usage
	case CategoryConfig:
		return 7 // Configuration error
	case CategoryPath, CategoryInternal:
		return 10 // Internal error
	case CategoryDefinition, CategoryRender, CategoryFileSystem:
		return 11 // Build error
	case CategoryPublish:
		return 12
	default:
		return 1 // General error
	}
}

// FormatError formats an error for user-friendly display.
func (a *CLIErrorAdapter) FormatError(err error) string {
	if err == nil {
		return ""
	}

	if e, ok := As(err); ok {
		return a.format(e)
	}

	return fmt.Sprintf("Error: %v", err)
}

func (a *CLIErrorAdapter) format(err *Error) string {
	if a.verbose {
		return err.Error()
	}

	switch err.Category {
	case CategoryConfig, CategoryValidation:
		if field, ok := err.Context["field"]; ok {
			return fmt.Sprintf("%s: %v", err.Message, field)
		}
		if fields, ok := err.Context["fields"]; ok {
			return fmt.Sprintf("%s: %v", err.Message, fields)
		}
		if path, ok := err.Context["path"]; ok {
			return fmt.Sprintf("%s: %v", err.Message, path)
		}
		return err.Message
	default:
		return fmt.Sprintf("%s: %s", err.Category, err.Message)
	}
}

// HandleError processes an error and exits the program with appropriate code.
func (a *CLIErrorAdapter) HandleError(err error) {
	if err == nil {
		return
	}

	exitCode := a.ExitCodeFor(err)
	message := a.FormatError(err)

	if a.shouldLog(err) {
		a.logError(err)
	}

	_, _ = fmt.Fprintf(a.out, "%s\n", message)
	a.exit(exitCode)
}

// shouldLog determines if an error should be logged.
func (a *CLIErrorAdapter) shouldLog(err error) bool {
	if a.verbose {
		return true
	}

	if e, ok := As(err); ok {
		return e.Category == CategoryInternal ||
			e.Category == CategoryPath ||
			e.Severity == SeverityFatal
	}

	return true
}

// logError logs an error with appropriate level and context.
func (a *CLIErrorAdapter) logError(err error) {
	if e, ok := As(err); ok {
		level := slogLevelFromSeverity(e.Severity)
		attrs := []slog.Attr{
			slog.String("category", string(e.Category)),
		}
		for k, v := range e.Context {
			attrs = append(attrs, slog.Any(k, v))
		}
		if e.Cause != nil {
			attrs = append(attrs, slog.String("cause", e.Cause.Error()))
		}

		a.logger.LogAttrs(context.Background(), level, e.Message, attrs...)
		return
	}

	a.logger.Error("Unclassified error", "error", err)
}

func slogLevelFromSeverity(severity ErrorSeverity) slog.Level {
	switch severity {
	case SeverityInfo:
		return slog.LevelInfo
	case SeverityWarning:
		return slog.LevelWarn
	default:
		return slog.LevelError
	}
}
