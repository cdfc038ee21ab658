package logsvc

import (
	"log"

	"github.com/trezcool/masomo-portal/core"
)

// StdLogger only prints to a std logger. Used by the CLI and in tests.
type StdLogger struct {
	std *log.Logger
}

var _ core.Logger = (*StdLogger)(nil)

func NewStdLogger(std *log.Logger) *StdLogger {
	return &StdLogger{std: std}
}

func (l StdLogger) Debug(msg string, args ...interface{}) { printArgs(l.std, msg, args) }
func (l StdLogger) Info(msg string, args ...interface{})  { printArgs(l.std, msg, args) }
func (l StdLogger) Warn(msg string, args ...interface{})  { printArgs(l.std, msg, args) }
func (l StdLogger) Error(msg string, args ...interface{}) { printArgs(l.std, msg, args) }

func (l StdLogger) Fatal(msg string, args ...interface{}) {
	printArgs(l.std, msg, args)
	l.std.Fatal(msg)
}

func printArgs(std *log.Logger, msg string, args []interface{}) {
	std.Println(msg)
	for _, arg := range args {
		if sess, ok := arg.(core.Session); ok {
			std.Printf("session: %s (%s)\n", sess.ID, sess.Role)
			continue
		}
		std.Printf("%+v\n", arg)
	}
}
