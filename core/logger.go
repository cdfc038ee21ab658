package core

// Logger is any service able to report application events.
// args may hold errors, map[string]interface{} extras and the Session the event happened in.
type Logger interface {
	Debug(msg string, args ...interface{})
	Info(msg string, args ...interface{})
	Warn(msg string, args ...interface{})
	Error(msg string, args ...interface{})
	Fatal(msg string, args ...interface{})
}
