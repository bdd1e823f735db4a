package logfields

import "log/slog"

// Canonical log field name constants to avoid drift across packages.
const (
	KeyBuildID    = "build_id"
	KeyApp        = "app"
	KeyVersion    = "version"
	KeyPath       = "path"
	KeyModule     = "module"
	KeyModel      = "model"
	KeyTemplate   = "template"
	KeyTarget     = "target"
	KeyPage       = "page"
	KeyLabel      = "label"
	KeyCount      = "count"
	KeyDurationMS = "duration_ms"
	KeyError      = "error"
)

// Simple helpers returning slog.Attr. Keeping each granular means callers can compose.
func BuildID(id string) slog.Attr     { return slog.String(KeyBuildID, id) }
func App(name string) slog.Attr       { return slog.String(KeyApp, name) }
func Version(v string) slog.Attr      { return slog.String(KeyVersion, v) }
func Path(p string) slog.Attr         { return slog.String(KeyPath, p) }
func Module(m string) slog.Attr       { return slog.String(KeyModule, m) }
func Model(m string) slog.Attr        { return slog.String(KeyModel, m) }
func Template(id string) slog.Attr    { return slog.String(KeyTemplate, id) }
func Target(t string) slog.Attr       { return slog.String(KeyTarget, t) }
func Page(route string) slog.Attr     { return slog.String(KeyPage, route) }
func Label(l string) slog.Attr        { return slog.String(KeyLabel, l) }
func Count(n int) slog.Attr           { return slog.Int(KeyCount, n) }
func DurationMS(ms float64) slog.Attr { return slog.Float64(KeyDurationMS, ms) }
func Error(err error) slog.Attr {
	if err == nil {
		return slog.String(KeyError, "")
	}
	return slog.String(KeyError, err.Error())
}
