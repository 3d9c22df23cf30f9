// Package lcerrors has errors that carry a message meant for the person at the
// console in addition to the usual technical description.
package lcerrors

import "fmt"

// commandError is an error caused by a console command that could not be
// carried out. It has a human-readable message to show to the operator as well
// as the technical message returned by Error.
type commandError struct {
	msg   string
	human string
	wrap  error
}

func (e *commandError) Error() string {
	return e.msg
}

// Unwrap gives the error that the commandError wraps, if it wraps one.
func (e *commandError) Unwrap() error {
	return e.wrap
}

// Command returns a new error that has both the message to show the operator
// and the technical description of the error. If technical is empty, one is
// generated from human.
func Command(human, technical string) error {
	if technical == "" {
		technical = fmt.Sprintf("command failed: %s", human)
	}
	return &commandError{
		msg:   technical,
		human: human,
	}
}

// Commandf returns a new error whose operator message is built from the given
// format string and arguments.
func Commandf(format string, a ...interface{}) error {
	return Command(fmt.Sprintf(format, a...), "")
}

// WrapCommandf returns a new error whose operator message is built from the
// given format string and arguments, and that wraps e.
func WrapCommandf(e error, format string, a ...interface{}) error {
	human := fmt.Sprintf(format, a...)
	return &commandError{
		msg:   fmt.Sprintf("command failed: %s: %v", human, e),
		human: human,
		wrap:  e,
	}
}

// ConsoleMessage gets the message to display to the console for err. If err
// was created by this package, its operator message is returned. Otherwise,
// err.Error() is returned.
func ConsoleMessage(err error) string {
	if cmdErr, ok := err.(*commandError); ok {
		return cmdErr.human
	}
	return err.Error()
}
