package utils

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/fatih/color"
)

// MessageType classifies a line of user-facing output.
type MessageType int

const (
	InfoMessage MessageType = iota
	WarningMessage
	ErrorMessage
	SuccessMessage
	ProgressMessage
	DebugMessage
)

var messageLabels = [...]string{
	InfoMessage:     "info",
	WarningMessage:  "warn",
	ErrorMessage:    "error",
	SuccessMessage:  "ok",
	ProgressMessage: "...",
	DebugMessage:    "debug",
}

var messageColors = [...]*color.Color{
	InfoMessage:     color.New(color.FgCyan),
	WarningMessage:  color.New(color.FgYellow),
	ErrorMessage:    color.New(color.FgRed, color.Bold),
	SuccessMessage:  color.New(color.FgGreen),
	ProgressMessage: color.New(color.FgBlue),
	DebugMessage:    color.New(color.FgMagenta),
}

func (t MessageType) String() string {
	if t < 0 || int(t) >= len(messageLabels) {
		return "info"
	}
	return messageLabels[t]
}

// toStderr reports whether direct-mode output of this type goes to stderr.
func (t MessageType) toStderr() bool {
	return t == ErrorMessage || t == WarningMessage || t == DebugMessage
}

// OutputMessage is one piece of output. Plain messages carry no label.
type OutputMessage struct {
	Type    MessageType
	Content string
	Plain   bool
}

// TUIMessageMsg carries output into a running Bubble Tea program.
type TUIMessageMsg struct {
	Message OutputMessage
}

// outputRouter sends output to the terminal or, while the TUI owns the
// screen, to the program. Messages produced after SetTUIMode(nil) wait in
// pending until a program is attached.
type outputRouter struct {
	mu sync.Mutex

	program  *tea.Program
	tui      bool
	pending  []OutputMessage
	noLabels bool

	// lastProgress suppresses repeated progress lines in the TUI.
	lastProgress string

	stdout io.Writer
	stderr io.Writer
}

var console = &outputRouter{stdout: os.Stdout, stderr: os.Stderr}

// SetTUIMode routes output to program. A nil program queues output until
// the next call with a program.
func SetTUIMode(program *tea.Program) {
	console.mu.Lock()
	defer console.mu.Unlock()
	console.tui = true
	console.program = program
	if program == nil {
		return
	}
	// The program may not be running yet, and Send blocks until it is.
	if queued := console.pending; len(queued) > 0 {
		go func() {
			for _, msg := range queued {
				program.Send(TUIMessageMsg{Message: msg})
			}
		}()
	}
	console.pending = nil
}

// ClearTUIMode returns to direct output and drops anything still queued.
func ClearTUIMode() {
	console.mu.Lock()
	defer console.mu.Unlock()
	console.tui = false
	console.program = nil
	console.pending = nil
	console.lastProgress = ""
}

// InTUIMode reports whether output is routed to a Bubble Tea program.
func InTUIMode() bool {
	console.mu.Lock()
	defer console.mu.Unlock()
	return console.tui
}

// SetPrefixesEnabled turns the type labels of direct output on or off.
func SetPrefixesEnabled(enabled bool) {
	console.mu.Lock()
	console.noLabels = !enabled
	console.mu.Unlock()
}

// SetOutputWriters redirects direct-mode output. Nil keeps the current writer.
func SetOutputWriters(stdout, stderr io.Writer) {
	console.mu.Lock()
	defer console.mu.Unlock()
	if stdout != nil {
		console.stdout = stdout
	}
	if stderr != nil {
		console.stderr = stderr
	}
}

// ResetOutputForTesting restores the default writers and direct mode.
func ResetOutputForTesting() {
	ClearTUIMode()
	console.mu.Lock()
	console.stdout, console.stderr = os.Stdout, os.Stderr
	console.noLabels = false
	console.mu.Unlock()
}

func sendMessage(t MessageType, format string, args ...interface{}) {
	console.emit(OutputMessage{Type: t, Content: fmt.Sprintf(format, args...)})
}

func (r *outputRouter) emit(msg OutputMessage) {
	r.mu.Lock()
	if !r.tui {
		msg.Plain = msg.Plain || r.noLabels
		w := r.stdout
		if msg.Type.toStderr() {
			w = r.stderr
		}
		r.mu.Unlock()
		fmt.Fprint(w, FormatMessage(msg))
		return
	}

	if msg.Type == ProgressMessage {
		msg.Content = strings.ReplaceAll(msg.Content, "\r", "")
		if msg.Content == r.lastProgress {
			r.mu.Unlock()
			return
		}
		r.lastProgress = msg.Content
	}
	program := r.program
	if program == nil {
		r.pending = append(r.pending, msg)
	}
	r.mu.Unlock()

	// Send blocks until the program reads it, so the lock is released first.
	if program != nil {
		program.Send(TUIMessageMsg{Message: msg})
	}
}

func OutputInfo(format string, args ...interface{}) { sendMessage(InfoMessage, format, args...) }

// OutputInfoPlain prints without a label. Replies and formatted tables use it.
func OutputInfoPlain(format string, args ...interface{}) {
	console.emit(OutputMessage{Type: InfoMessage, Content: fmt.Sprintf(format, args...), Plain: true})
}

func OutputWarning(format string, args ...interface{}) { sendMessage(WarningMessage, format, args...) }
func OutputError(format string, args ...interface{})   { sendMessage(ErrorMessage, format, args...) }
func OutputSuccess(format string, args ...interface{}) { sendMessage(SuccessMessage, format, args...) }

// OutputProgress reports a step of a longer operation. In the TUI a line
// identical to the previous one is dropped.
func OutputProgress(format string, args ...interface{}) {
	sendMessage(ProgressMessage, format, args...)
}

// OutputDebug prints only with --debug.
func OutputDebug(format string, args ...interface{}) {
	if DebugEnabled() {
		sendMessage(DebugMessage, format, args...)
	}
}

// FormatMessage renders msg for direct output. Colours switch off on their
// own when the writer is not a terminal.
func FormatMessage(msg OutputMessage) string {
	if msg.Plain {
		return msg.Content
	}
	label := msg.Type.String()
	if t := msg.Type; t >= 0 && int(t) < len(messageColors) {
		label = messageColors[t].Sprint(label)
	}
	return label + "  " + msg.Content
}
