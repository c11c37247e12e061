package formatter

import (
	"bytes"
	"strings"
)

// colorCodes maps a markup tag name to its SGR (ANSI) parameter code.
var colorCodes = map[string]string{
	"black":          "30",
	"red":            "31",
	"green":          "32",
	"yellow":         "33",
	"blue":           "34",
	"magenta":        "35",
	"cyan":           "36",
	"white":          "37",
	"bright_black":   "90",
	"bright_red":     "91",
	"bright_green":   "92",
	"bright_yellow":  "93",
	"bright_blue":    "94",
	"bright_magenta": "95",
	"bright_cyan":    "96",
	"bright_white":   "97",
	"bold":           "1",
	"b":              "1",
	"dim":            "2",
	"italic":         "3",
	"i":              "3",
	"underline":      "4",
	"u":              "4",
	"strike":         "9",
	"s":              "9",
}

const (
	ansiReset = "\x1b[0m"
	ansiCSI   = "\x1b["
)

// ApplyColorMarkup scans s for inline `<tag>...</tag>` spans (colors and
// styles, see colorCodes, comma-separated for combinations) and writes the
// result into buf. When colorize is false, tags are stripped and their
// textual content preserved verbatim — stripping never changes any
// character outside the tag delimiters themselves. Tags nest; an unclosed
// tag is implicitly closed at end-of-string. A `<` that does not begin a
// recognized tag (or matching `</name>` close) is emitted literally, as is
// any stray `>`.
func ApplyColorMarkup(s string, colorize bool, buf *bytes.Buffer) {
	var stack [][]string // each entry: the SGR codes opened by that tag

	i := 0
	for i < len(s) {
		c := s[i]
		if c != '<' {
			buf.WriteByte(c)
			i++
			continue
		}

		end := strings.IndexByte(s[i:], '>')
		if end < 0 {
			buf.WriteString(s[i:])
			break
		}
		inner := s[i+1 : i+end]

		if strings.HasPrefix(inner, "/") {
			name := inner[1:]
			if _, ok := resolveTag(name); ok && len(stack) > 0 {
				stack = stack[:len(stack)-1]
				if colorize {
					reapply(buf, stack)
				}
				i += end + 1
				continue
			}
			// Unrecognized or unmatched close tag: not a valid tag, so the
			// '<' (and everything after it) is emitted literally rather
			// than consumed.
			buf.WriteByte('<')
			i++
			continue
		}

		if codes, ok := resolveTag(inner); ok {
			stack = append(stack, codes)
			if colorize {
				reapply(buf, stack)
			}
			i += end + 1
			continue
		}

		// Not a valid tag: emit the '<' literally and continue scanning
		// from the next rune so '>' inside is handled normally.
		buf.WriteByte('<')
		i++
	}

	if colorize && len(stack) > 0 {
		buf.WriteString(ansiReset)
	}
}

func resolveTag(inner string) ([]string, bool) {
	parts := strings.Split(inner, ",")
	codes := make([]string, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		code, ok := colorCodes[part]
		if !ok {
			return nil, false
		}
		codes = append(codes, code)
	}
	if len(codes) == 0 {
		return nil, false
	}
	return codes, true
}

func reapply(buf *bytes.Buffer, stack [][]string) {
	buf.WriteString(ansiReset)
	if len(stack) == 0 {
		return
	}
	all := make([]string, 0, len(stack)*2)
	for _, codes := range stack {
		all = append(all, codes...)
	}
	buf.WriteString(ansiCSI)
	buf.WriteString(strings.Join(all, ";"))
	buf.WriteByte('m')
}

// StripColorMarkup removes markup tags without emitting ANSI codes,
// returning the rendered plain text. Equivalent to ApplyColorMarkup with
// colorize=false but returning a string for convenience callers.
func StripColorMarkup(s string) string {
	var buf bytes.Buffer
	ApplyColorMarkup(s, false, &buf)
	return buf.String()
}

// levelAnsi renders the ANSI escape sequence for a level's registered
// color/style markup (e.g. "bright_red,bold"), or "" if the tag string is
// empty or does not resolve to any known code.
func levelAnsi(tag string) string {
	if tag == "" {
		return ""
	}
	codes, ok := resolveTag(tag)
	if !ok {
		return ""
	}
	return ansiCSI + strings.Join(codes, ";") + "m"
}
