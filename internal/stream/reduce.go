// Package stream computes the user-visible portion of an in-flight agent
// turn. The agent may stream an internal reasoning trace inside
// <thinking> tags before its answer, and may wrap the answer itself in
// <final> tags. ReduceVisible is recomputed against the cumulative buffer
// on every chunk rather than applied to deltas, so partial tags split
// across chunk boundaries never leak markup to the user.
package stream

import (
	"strings"
)

const (
	finalOpen     = "<final>"
	finalClose    = "</final>"
	thinkingOpen  = "<thinking>"
	thinkingClose = "</thinking>"
)

// ReduceVisible returns the text that should currently be shown to the
// user, given the full text received so far for one turn.
//
// Complete <final> spans win over everything else; their contents are
// trimmed and joined with a blank line. An unclosed <final> streams its
// tail incrementally. Otherwise complete <thinking> spans are removed,
// and an unclosed <thinking> hides everything from its opening tag on.
func ReduceVisible(full string) string {
	if spans := completeFinalSpans(full); len(spans) > 0 {
		return strings.Join(spans, "\n\n")
	}

	if i := strings.Index(full, finalOpen); i >= 0 {
		return strings.TrimSpace(full[i+len(finalOpen):])
	}

	buf := full
	for {
		i := strings.Index(buf, thinkingOpen)
		if i < 0 {
			break
		}
		j := strings.Index(buf[i:], thinkingClose)
		if j < 0 {
			// Reasoning still streaming: nothing user-visible from here on.
			buf = buf[:i]
			break
		}
		buf = buf[:i] + buf[i+j+len(thinkingClose):]
	}
	return strings.TrimSpace(buf)
}

// completeFinalSpans returns the trimmed contents of every closed
// <final>…</final> span, in order.
func completeFinalSpans(s string) []string {
	var spans []string
	for {
		i := strings.Index(s, finalOpen)
		if i < 0 {
			break
		}
		rest := s[i+len(finalOpen):]
		j := strings.Index(rest, finalClose)
		if j < 0 {
			break
		}
		spans = append(spans, strings.TrimSpace(rest[:j]))
		s = rest[j+len(finalClose):]
	}
	return spans
}
