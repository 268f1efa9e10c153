// Package htmlutils prepares HTML text for Telegram messages.
//
// Telegram counts message length in UTF-16 code units and rejects
// messages with tags left open, so splitting has to track both.
package htmlutils

import (
	"regexp"
	"strings"
	"unicode/utf16"
)

var tagRegex = regexp.MustCompile(`<(/?)([a-zA-Z0-9-]+)([^>]*)>`)

// utf16Len returns the number of UTF-16 code units needed to encode the
// string. Characters outside the BMP (emoji, etc.) take surrogate pairs.
func utf16Len(s string) int {
	return len(utf16.Encode([]rune(s)))
}

// utf16Slice returns the longest prefix of s that fits in maxUnits
// UTF-16 code units without cutting a rune in half.
func utf16Slice(s string, maxUnits int) string {
	runes := []rune(s)
	units := 0

	for i, r := range runes {
		runeUnits := 1
		if r > 0xFFFF {
			runeUnits = 2
		}

		if units+runeUnits > maxUnits {
			return string(runes[:i])
		}

		units += runeUnits
	}

	return s
}

// TextLen returns the Telegram-visible length of an HTML string: the
// UTF-16 unit count of the text with all tags removed.
func TextLen(text string) int {
	return utf16Len(tagRegex.ReplaceAllString(text, ""))
}

// SplitHTML splits an HTML string into parts whose visible text each fits
// within limit UTF-16 code units. It prefers line breaks, then spaces,
// and closes open tags at every part boundary, reopening them in the
// next part so each part renders standalone.
func SplitHTML(text string, limit int) []string {
	if TextLen(text) <= limit {
		return []string{text}
	}

	s := &splitter{limit: limit}

	remaining := text
	for len(remaining) > 0 {
		tok, consumed := nextToken(remaining)
		if consumed == 0 {
			break
		}

		if tok.isTag {
			s.writeTag(tok.val)
		} else {
			s.writeText(tok.val)
		}

		remaining = remaining[consumed:]
	}

	s.flush()

	return s.parts
}

type token struct {
	val   string
	isTag bool
}

func nextToken(remaining string) (token, int) {
	match := tagRegex.FindStringIndex(remaining)
	if match == nil {
		return token{val: remaining}, len(remaining)
	}

	if match[0] == 0 {
		return token{val: remaining[:match[1]], isTag: true}, match[1]
	}

	return token{val: remaining[:match[0]]}, match[0]
}

type splitter struct {
	parts      []string
	current    strings.Builder
	openTags   []string
	currentLen int
	limit      int
}

func (s *splitter) writeTag(tag string) {
	matches := tagRegex.FindStringSubmatch(tag)
	if len(matches) >= 3 {
		if matches[1] == "/" {
			s.popTag(strings.ToLower(matches[2]))
		} else {
			s.openTags = append(s.openTags, tag)
		}
	}

	s.current.WriteString(tag)
}

func (s *splitter) popTag(name string) {
	for i := len(s.openTags) - 1; i >= 0; i-- {
		if strings.ToLower(tagName(s.openTags[i])) == name {
			s.openTags = append(s.openTags[:i], s.openTags[i+1:]...)

			return
		}
	}
}

func (s *splitter) writeText(text string) {
	remaining := text

	for len(remaining) > 0 {
		room := s.limit - s.currentLen
		if room <= 0 {
			s.flush()

			room = s.limit
		}

		if utf16Len(remaining) <= room {
			s.current.WriteString(remaining)
			s.currentLen += utf16Len(remaining)

			return
		}

		head, tail := splitAt(remaining, room)
		if head != "" {
			s.current.WriteString(head)
			s.currentLen += utf16Len(head)
		}

		s.flush()

		remaining = strings.TrimLeft(tail, " \t\n\r")
	}
}

// splitAt cuts text so the head fits in maxUnits, preferring a newline,
// then a space, then a hard cut.
func splitAt(text string, maxUnits int) (head, tail string) {
	window := utf16Slice(text, maxUnits)

	if pos := strings.LastIndex(window, "\n"); pos > 0 {
		return window[:pos+1], text[pos+1:]
	}

	if pos := strings.LastIndex(window, " "); pos > 0 {
		return window[:pos+1], text[pos+1:]
	}

	return window, text[len(window):]
}

func (s *splitter) flush() {
	if s.current.Len() == 0 {
		return
	}

	// A part holding nothing but reopened tags renders empty; drop it.
	tagsLen := 0
	for _, tag := range s.openTags {
		tagsLen += len(tag)
	}

	if s.current.Len() <= tagsLen {
		return
	}

	content := strings.TrimRight(s.current.String(), " \t\n")
	for i := len(s.openTags) - 1; i >= 0; i-- {
		content += "</" + tagName(s.openTags[i]) + ">"
	}

	s.parts = append(s.parts, content)
	s.current.Reset()
	s.currentLen = 0

	for _, tag := range s.openTags {
		s.current.WriteString(tag)
	}
}

func tagName(fullTag string) string {
	trimmed := strings.Trim(fullTag, "<>")

	parts := strings.Fields(trimmed)
	if len(parts) > 0 {
		return strings.TrimPrefix(parts[0], "/")
	}

	return ""
}
