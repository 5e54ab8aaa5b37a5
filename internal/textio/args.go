package textio

import (
	"bufio"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"
)

// QuoteArgs joins args with spaces, quoting any that contain white space
// or are empty, so that SplitArgs recovers them.
func QuoteArgs(args []string) string {
	var sb strings.Builder
	for i, arg := range args {
		if i > 0 {
			sb.WriteByte(' ')
		}
		if arg == "" || strings.IndexFunc(arg, unicode.IsSpace) >= 0 {
			sb.WriteString(strconv.Quote(arg))
		} else {
			sb.WriteString(arg)
		}
	}
	return sb.String()
}

// SplitArgs splits a command line into arguments, honoring double or
// single quoted arguments.
func SplitArgs(line string) ([]string, error) {
	sc := bufio.NewScanner(strings.NewReader(line))
	sc.Split(ScanArgs)
	var args []string
	for sc.Scan() {
		tok := sc.Text()
		if len(tok) > 0 && (tok[0] == '"' || tok[0] == '\'') {
			s, err := unquote(tok)
			if err != nil {
				return nil, err
			}
			tok = s
		}
		args = append(args, tok)
	}
	return args, sc.Err()
}

func unquote(tok string) (string, error) {
	if tok[0] == '\'' {
		return strings.TrimPrefix(tok, "'"), nil
	}
	return strconv.Unquote(tok + `"`)
}

// ScanArgs is a bufio.SplitFunc for white space separated arguments. A
// quoted token is returned with its opening quote and without its closing
// one.
func ScanArgs(data []byte, atEOF bool) (advance int, token []byte, err error) {
	start := 0
	var r rune
	for width := 0; start < len(data); start += width {
		r, width = utf8.DecodeRune(data[start:])
		if !unicode.IsSpace(r) {
			break
		}
	}

	if start < len(data) && (r == '"' || r == '\'') {
		quote, esc := r, false
		for width, i := 0, start+1; i < len(data); i += width {
			r, width = utf8.DecodeRune(data[i:])
			switch {
			case esc:
				esc = false
			case r == '\\' && quote == '"':
				esc = true
			case r == quote:
				return i + width, data[start:i], nil
			}
		}
	} else {
		for width, i := 0, start; i < len(data); i += width {
			r, width = utf8.DecodeRune(data[i:])
			if unicode.IsSpace(r) {
				return i + width, data[start:i], nil
			}
		}
	}

	if atEOF && len(data) > start {
		return len(data), data[start:], nil
	}
	return start, nil, nil
}
