package markdown

import "strings"

// MaskFencedCode returns s with every byte of fenced code regions,
// including the fence lines, replaced by a space. Newlines are kept, so
// offsets into the result are offsets into s. An unclosed fence runs to
// the end of the text.
func MaskFencedCode(s string) string {
	if !strings.Contains(s, "```") && !strings.Contains(s, "~~~") {
		return s
	}

	b := []byte(s)
	var fence string
	for start := 0; start < len(b); {
		lineEnd := strings.IndexByte(s[start:], '\n')
		if lineEnd < 0 {
			lineEnd = len(b)
		} else {
			lineEnd += start
		}

		line := s[start:lineEnd]
		marker := fenceMarker(line)
		blank := fence != ""
		switch {
		case fence == "" && marker != "":
			fence = marker
			blank = true
		case fence != "" && isClosingFence(line, fence):
			fence = ""
		}

		if blank {
			for i := start; i < lineEnd; i++ {
				if b[i] != '\r' {
					b[i] = ' '
				}
			}
		}
		start = lineEnd + 1
	}
	return string(b)
}

// fenceMarker returns the opening run of backticks or tildes of a fence
// line, or "" if line does not open a fence.
func fenceMarker(line string) string {
	trimmed := strings.TrimLeft(line, " ")
	if len(line)-len(trimmed) > 3 || len(trimmed) < 3 {
		return ""
	}
	c := trimmed[0]
	if c != '`' && c != '~' {
		return ""
	}
	n := 0
	for n < len(trimmed) && trimmed[n] == c {
		n++
	}
	if n < 3 {
		return ""
	}
	return trimmed[:n]
}

func isClosingFence(line, fence string) bool {
	marker := fenceMarker(line)
	if marker == "" || marker[0] != fence[0] || len(marker) < len(fence) {
		return false
	}
	rest := strings.TrimLeft(line, " ")[len(marker):]
	return strings.TrimSpace(rest) == ""
}
