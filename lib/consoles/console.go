package consoles

type Console interface {
	Printf(format string, a ...any)
	Warnf(format string, a ...any)
	Errorf(format string, a ...any)

	// Prepare returns the line that Printf would output, without printing it.
	Prepare(format string, a ...any) string

	PushPrefix(format string, a ...any)
	PopPrefix()
}
