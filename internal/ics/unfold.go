package ics

import "strings"

const (
	beginEvent = "BEGIN:VEVENT"
	endEvent   = "END:VEVENT"
)

// Unfold normalizes line terminators to "\n" and joins RFC 5545 folded
// lines: a line starting with a space or tab continues the previous one, and
// the break plus that single whitespace character are removed.
func Unfold(text string) string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")

	var b strings.Builder
	b.Grow(len(text))
	for i := 0; i < len(text); i++ {
		c := text[i]
		if c == '\n' && i+1 < len(text) && (text[i+1] == ' ' || text[i+1] == '\t') {
			i++
			continue
		}
		b.WriteByte(c)
	}
	return b.String()
}

// SplitEvents returns the body of every VEVENT in an unfolded document: the
// text between each BEGIN:VEVENT and the following END:VEVENT. Anything
// before the first BEGIN:VEVENT is discarded.
func SplitEvents(unfolded string) []string {
	segments := strings.Split(unfolded, beginEvent)
	if len(segments) <= 1 {
		return nil
	}

	blocks := make([]string, 0, len(segments)-1)
	for _, seg := range segments[1:] {
		if i := strings.Index(seg, endEvent); i >= 0 {
			seg = seg[:i]
		}
		blocks = append(blocks, seg)
	}
	return blocks
}
