package ics

import (
	"strings"
)

// rawEvent holds the properties of one VEVENT block before any date or
// recurrence resolution.
type rawEvent struct {
	// Index is the 1-based position of the block in the document.
	Index int

	UID         string
	Summary     string
	Description string
	Location    string

	// DTStart / DTEnd keep the whole content line so parameters such as
	// VALUE=DATE stay visible to the date parser.
	DTStart string
	DTEnd   string

	RRule   string
	ExDates []string
}

// extractFields reads the properties of a single VEVENT block. Lines that
// belong to nested components (VALARM and friends) are ignored.
func extractFields(index int, block string) rawEvent {
	ev := rawEvent{Index: index}
	depth := 0

	for _, line := range strings.Split(block, "\n") {
		line = strings.TrimRight(line, " \t")
		if line == "" {
			continue
		}

		switch {
		case hasProperty(line, "BEGIN"):
			depth++
			continue
		case hasProperty(line, "END"):
			if depth > 0 {
				depth--
			}
			continue
		}
		if depth > 0 {
			continue
		}

		switch {
		case hasProperty(line, "UID"):
			ev.UID = propertyValue(line)
		case hasProperty(line, "SUMMARY"):
			ev.Summary = unescapeText(propertyValue(line))
		case hasProperty(line, "DESCRIPTION"):
			ev.Description = unescapeText(propertyValue(line))
		case hasProperty(line, "LOCATION"):
			ev.Location = unescapeText(propertyValue(line))
		case hasProperty(line, "DTSTART"):
			ev.DTStart = strings.TrimSpace(line)
		case hasProperty(line, "DTEND"):
			ev.DTEnd = strings.TrimSpace(line)
		case hasProperty(line, "RRULE"):
			ev.RRule = propertyValue(line)
		case hasProperty(line, "EXDATE"):
			for _, v := range strings.Split(propertyValue(line), ",") {
				if v = strings.TrimSpace(v); v != "" {
					ev.ExDates = append(ev.ExDates, v)
				}
			}
		}
	}

	return ev
}

// hasProperty reports whether line is a content line for the named
// property, i.e. the name followed by ':' or ';'.
func hasProperty(line, name string) bool {
	if len(line) <= len(name) {
		return false
	}
	if !strings.EqualFold(line[:len(name)], name) {
		return false
	}
	c := line[len(name)]
	return c == ':' || c == ';'
}

// propertyValue returns the trimmed text after the first colon that is not
// inside a quoted parameter value.
func propertyValue(line string) string {
	quoted := false
	for i := 0; i < len(line); i++ {
		switch line[i] {
		case '"':
			quoted = !quoted
		case ':':
			if !quoted {
				return strings.TrimSpace(line[i+1:])
			}
		}
	}
	return ""
}

// unescapeText decodes RFC 5545 TEXT escapes in one pass, so "\\n" yields a
// backslash followed by 'n' rather than a newline.
func unescapeText(s string) string {
	if !strings.Contains(s, `\`) {
		return s
	}

	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c != '\\' || i+1 == len(s) {
			b.WriteByte(c)
			continue
		}
		i++
		switch next := s[i]; next {
		case 'n', 'N':
			b.WriteByte('\n')
		case ',', ';', '\\':
			b.WriteByte(next)
		default:
			b.WriteByte('\\')
			b.WriteByte(next)
		}
	}
	return b.String()
}
