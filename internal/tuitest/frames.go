package tuitest

import (
	"regexp"
	"strings"
)

// Frame is one full screen repaint. ANSI keeps the raw escape stream,
// Plain is the same content with sequences stripped and trailing
// whitespace normalized for Contains-style assertions.
type Frame struct {
	Index int
	ANSI  string
	Plain string
}

// FinalFrame returns the last repaint the program drew before exiting.
// The boolean is false when nothing was captured.
func (r *Recording) FinalFrame() (Frame, bool) {
	if r == nil || len(r.Frames) == 0 {
		return Frame{}, false
	}
	return r.Frames[len(r.Frames)-1], true
}

// Full-screen programs repaint by emitting an erase-display sequence;
// splitting on it yields one segment per frame.
var (
	eraseDisplaySeq = regexp.MustCompile(`\x1b\[[0-9;]*J`)
	csiSeq          = regexp.MustCompile(`\x1b\[[0-9;?]*[A-Za-z]`)
	oscSeq          = regexp.MustCompile(`\x1b\][^\x07]*(\x07|\x1b\\)`)
)

func parseFrames(raw []byte) []Frame {
	stream := strings.ReplaceAll(string(raw), "\r", "")
	var frames []Frame
	for _, segment := range eraseDisplaySeq.Split(stream, -1) {
		segment = strings.Trim(segment, "\x00")
		segment = strings.TrimPrefix(segment, "\x1b[H")
		if segment == "" {
			continue
		}
		plain := stripEscapes(segment)
		if strings.TrimSpace(plain) == "" {
			continue
		}
		frames = append(frames, Frame{
			Index: len(frames),
			ANSI:  segment,
			Plain: trimTrailing(plain),
		})
	}
	// Inline-mode programs never clear the screen; treat the whole
	// stream as a single frame so assertions still have something.
	if len(frames) == 0 && len(stream) > 0 {
		frames = append(frames, Frame{ANSI: stream, Plain: trimTrailing(stripEscapes(stream))})
	}
	return frames
}

func stripEscapes(s string) string {
	s = oscSeq.ReplaceAllString(s, "")
	s = csiSeq.ReplaceAllString(s, "")
	// Shift-in/shift-out bytes from line-drawing mode.
	s = strings.ReplaceAll(s, "\x0e", "")
	return strings.ReplaceAll(s, "\x0f", "")
}

func trimTrailing(s string) string {
	lines := strings.Split(s, "\n")
	for i := range lines {
		lines[i] = strings.TrimRight(lines[i], " ")
	}
	for len(lines) > 0 && strings.TrimSpace(lines[len(lines)-1]) == "" {
		lines = lines[:len(lines)-1]
	}
	return strings.Join(lines, "\n")
}
