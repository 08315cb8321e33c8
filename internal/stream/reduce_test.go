package stream

import (
	"testing"
)

func TestReduceVisible(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain text", "hello world", "hello world"},
		{"closed final wins", "<thinking>plan</thinking><final>42</final>", "42"},
		{"final wins over surrounding text", "preamble <final>42</final> trailing", "42"},
		{"two finals join with blank line", "<final>one</final><final>two</final>", "one\n\ntwo"},
		{"unclosed final streams tail", "<final>partial answer", "partial answer"},
		{"unclosed final after thinking", "<thinking>plan</thinking><final>so far", "so far"},
		{"unclosed thinking hides everything", "<thinking>plan", ""},
		{"closed thinking removed", "<thinking>plan</thinking>answer", "answer"},
		{"thinking between text", "a<thinking>x</thinking>b", "ab"},
		{"second thinking unclosed", "a<thinking>x</thinking>b<thinking>y", "ab"},
		{"empty buffer", "", ""},
		{"whitespace trimmed", "  <final>  42  </final>  ", "42"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ReduceVisible(tt.in); got != tt.want {
				t.Errorf("ReduceVisible(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

// The reducer is recomputed from the whole buffer each chunk; as the
// answer arrives the visible text must grow, never regress.
func TestReduceVisibleGrowsWithFinal(t *testing.T) {
	chunks := []string{
		"<thinking>figuring ",
		"it out</thinking>",
		"<final>the answer",
		" is 42",
		"</final>",
	}
	want := []string{"", "", "the answer", "the answer is 42", "the answer is 42"}

	var buf string
	for i, c := range chunks {
		buf += c
		if got := ReduceVisible(buf); got != want[i] {
			t.Errorf("after chunk %d: got %q, want %q", i, got, want[i])
		}
	}
}

func TestReduceVisibleIdempotent(t *testing.T) {
	in := "<thinking>a</thinking>text<final>answer</final>"
	once := ReduceVisible(in)
	if again := ReduceVisible(in); again != once {
		t.Errorf("reducer not idempotent: %q != %q", again, once)
	}
}
