package core

// Logger abstracts the app logger so services do not depend on a concrete
// error-reporting backend.
//
// expected args: error, map[string]interface{}, or a user value understood
// by the backend for person-tagging.
type Logger interface {
	Enable(enabled bool)
	Debug(msg string, args ...interface{})
	Info(msg string, args ...interface{})
	Warn(msg string, args ...interface{})
	Error(msg string, err error, args ...interface{})
	Fatal(msg string, err error, args ...interface{})
}
