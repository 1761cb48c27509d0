package logtail

import (
	"bytes"
	"strings"
)

// lineSplitter cuts a byte stream into lines. A trailing fragment without a
// terminator is held until the rest of it arrives.
type lineSplitter struct {
	partial []byte
}

func (s *lineSplitter) push(p []byte) []string {
	var lines []string
	for {
		i := bytes.IndexByte(p, '\n')
		if i < 0 {
			s.partial = append(s.partial, p...)
			return lines
		}
		chunk := p[:i]
		if len(s.partial) > 0 {
			chunk = append(s.partial, chunk...)
			s.partial = nil
		}
		lines = append(lines, decodeLine(chunk))
		p = p[i+1:]
	}
}

func (s *lineSplitter) pending() bool { return len(s.partial) > 0 }

func (s *lineSplitter) reset() { s.partial = nil }

// decodeLine strips a CR terminator and repairs invalid UTF-8.
func decodeLine(b []byte) string {
	b = bytes.TrimSuffix(b, []byte{'\r'})
	return strings.ToValidUTF8(string(b), "�")
}

// finish returns the held fragment as a final line, for input that ends
// without a terminator.
func (s *lineSplitter) finish() (string, bool) {
	if len(s.partial) == 0 {
		return "", false
	}
	line := decodeLine(s.partial)
	s.partial = nil
	return line, true
}
