package tuitest

import (
	"bytes"
	"io"
)

// Queries a program may send on startup and block on until the terminal
// answers: cursor position (DSR) and the OSC 10/11 color queries, in
// both BEL- and ST-terminated forms.
var terminalQueries = []struct {
	query []byte
	reply []byte
}{
	{[]byte("\x1b[6n"), []byte("\x1b[1;1R")},
	{[]byte("\x1b]10;?\x07"), []byte("\x1b]10;rgb:cccc/cccc/cccc\x07")},
	{[]byte("\x1b]10;?\x1b\\"), []byte("\x1b]10;rgb:cccc/cccc/cccc\x1b\\")},
	{[]byte("\x1b]11;?\x07"), []byte("\x1b]11;rgb:0000/0000/0000\x07")},
	{[]byte("\x1b]11;?\x1b\\"), []byte("\x1b]11;rgb:0000/0000/0000\x1b\\")},
}

// terminalResponder watches the program's output stream for terminal
// queries and writes canned replies back to the PTY, so the program
// never stalls waiting for a real terminal.
type terminalResponder struct {
	pty     io.Writer
	pending []byte
}

func newTerminalResponder(pty io.Writer) *terminalResponder {
	return &terminalResponder{pty: pty, pending: make([]byte, 0, 128)}
}

func (tr *terminalResponder) Process(chunk []byte) {
	tr.pending = append(tr.pending, chunk...)
	for tr.answerOne() {
	}
	// A query can straddle two reads, so keep a short tail around.
	if len(tr.pending) > 256 {
		tr.pending = tr.pending[len(tr.pending)-64:]
	}
}

func (tr *terminalResponder) answerOne() bool {
	for _, q := range terminalQueries {
		idx := bytes.Index(tr.pending, q.query)
		if idx < 0 {
			continue
		}
		tr.pending = tr.pending[idx+len(q.query):]
		_, _ = tr.pty.Write(q.reply)
		return true
	}
	return false
}
