package consoles

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"
)

type stdoutConsole struct {
	mutex    sync.Mutex
	out      io.Writer
	err      io.Writer
	now      func() time.Time
	prefixes []string
}

func NewStdOutConsole() Console {
	return NewWriterConsole(os.Stdout, os.Stderr)
}

// NewWriterConsole writes info messages to out and warnings and errors to err.
func NewWriterConsole(out io.Writer, err io.Writer) Console {
	return &stdoutConsole{
		out: out,
		err: err,
		now: time.Now,
	}
}

func (o *stdoutConsole) Printf(format string, a ...any) {
	o.write(o.out, "", format, a...)
}

func (o *stdoutConsole) Warnf(format string, a ...any) {
	o.write(o.err, "WARN ", format, a...)
}

func (o *stdoutConsole) Errorf(format string, a ...any) {
	o.write(o.err, "ERROR ", format, a...)
}

func (o *stdoutConsole) Prepare(format string, a ...any) string {
	o.mutex.Lock()
	defer o.mutex.Unlock()

	return o.prepare("", format, a...)
}

func (o *stdoutConsole) write(w io.Writer, level string, format string, a ...any) {
	o.mutex.Lock()
	defer o.mutex.Unlock()

	_, _ = io.WriteString(w, o.prepare(level, format, a...))
}

func (o *stdoutConsole) prepare(level string, format string, a ...any) string {
	builder := strings.Builder{}
	builder.WriteString("[")
	builder.WriteString(o.now().Format("15:04:05"))
	builder.WriteString("] ")
	builder.WriteString(level)
	for _, prefix := range o.prefixes {
		builder.WriteString(prefix)
	}
	builder.WriteString(fmt.Sprintf(format, a...))
	return builder.String()
}

func (o *stdoutConsole) PushPrefix(format string, a ...any) {
	o.mutex.Lock()
	defer o.mutex.Unlock()

	o.prefixes = append(o.prefixes, fmt.Sprintf(format, a...))
}

func (o *stdoutConsole) PopPrefix() {
	o.mutex.Lock()
	defer o.mutex.Unlock()

	o.prefixes = o.prefixes[:len(o.prefixes)-1]
}
