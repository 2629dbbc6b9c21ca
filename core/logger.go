package core

// Visitor tags a log entry with the browsing session it belongs to.
type Visitor string

// Logger is any leveled logging service.
// expected args fmt: error, map[string]interface{}, Visitor, ...
type Logger interface {
	Debug(msg string, args ...interface{})
	Info(msg string, args ...interface{})
	Warn(msg string, args ...interface{})
	Error(msg string, args ...interface{})
	Fatal(msg string, args ...interface{})
}
