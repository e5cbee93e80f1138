package yaml

import "sort"

// Lines is the line table of a text. Line lengths are in bytes and exclude
// the line terminator ("\n" or "\r\n").
type Lines struct {
	starts  []int
	lengths []int
	size    int
}

// NewLines builds the line table for text. Every text, including the empty
// string, has at least one line.
func NewLines(text string) Lines {
	lt := Lines{size: len(text)}

	start := 0

	for i := range len(text) {
		if text[i] != '\n' {
			continue
		}

		end := i
		if end > start && text[end-1] == '\r' {
			end--
		}

		lt.starts = append(lt.starts, start)
		lt.lengths = append(lt.lengths, end-start)
		start = i + 1
	}

	lt.starts = append(lt.starts, start)
	lt.lengths = append(lt.lengths, len(text)-start)

	return lt
}

// Len returns the number of lines.
func (lt Lines) Len() int {
	return len(lt.lengths)
}

// Length returns the length of the given line, excluding its terminator.
func (lt Lines) Length(line int) int {
	if line < 0 || line >= len(lt.lengths) {
		return 0
	}

	return lt.lengths[line]
}

// Lengths returns a copy of the per-line length table.
func (lt Lines) Lengths() []int {
	return append([]int(nil), lt.lengths...)
}

// Offset converts a zero-based (line, char) position into a byte offset.
// The offset is the sum of the preceding line lengths and terminator widths
// plus char. Positions outside the text, or past the end of their line,
// return false.
func (lt Lines) Offset(line, char int) (int, bool) {
	if line < 0 || char < 0 || line >= len(lt.lengths) {
		return 0, false
	}

	if char > lt.lengths[line] {
		return 0, false
	}

	return lt.starts[line] + char, true
}

// Position converts a byte offset into a zero-based (line, char) position.
// Offsets are clamped into the text.
func (lt Lines) Position(offset int) (int, int) {
	if len(lt.starts) == 0 {
		return 0, 0
	}

	offset = min(max(offset, 0), lt.size)
	line := sort.Search(len(lt.starts), func(i int) bool {
		return lt.starts[i] > offset
	}) - 1
	line = max(line, 0)

	return line, min(offset-lt.starts[line], lt.lengths[line])
}
