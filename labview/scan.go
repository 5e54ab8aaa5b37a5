package labview

import (
	"bufio"
	"io"
	"strings"
	"unicode"
)

// LineKind classifies a scanned line.
type LineKind int

// LineKind constants.
const (
	Blank LineKind = iota
	Data
	// Reset is a bare comment marker, closing any open section.
	Reset
	// Tag is a comment line naming a section.
	Tag
	// Content is a comment line read under the open section.
	Content
	// Comment is a comment line outside of any section.
	Comment
)

// Scanner reads a LabVIEW file line by line, tracking the header section
// state machine. Its zero value is not usable; use NewScanner.
type Scanner struct {
	sc      *bufio.Scanner
	grammar Grammar

	lineno  int
	raw     string
	body    string
	kind    LineKind
	rule    Rule
	section Section // governing the current line
	next    Section // governing the next line
	first   bool
	err     error
}

// NewScanner returns a scanner reading from r under the given grammar,
// which defaults to DefaultGrammar when nil.
func NewScanner(r io.Reader, g Grammar) *Scanner {
	if g == nil {
		g = DefaultGrammar
	}
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	return &Scanner{
		sc:      sc,
		grammar: g,
		first:   true,
	}
}

// Scan advances to the next line, returning false at EOF or on read error.
func (s *Scanner) Scan() bool {
	if s.err != nil {
		return false
	}
	if !s.sc.Scan() {
		s.err = s.sc.Err()
		return false
	}
	s.lineno++
	s.section = s.next
	s.rule = Rule{}
	s.body = ""
	s.raw = strings.TrimRightFunc(s.sc.Text(), unicode.IsSpace)

	switch {
	case s.raw == "":
		s.kind = Blank

	case s.raw[0] != '#':
		s.kind = Data

	case len(s.raw) <= 2:
		s.kind = Reset
		s.section, s.next = None, None

	default:
		// the line after a column tag, and the very first comment, may have
		// no space after the marker
		if s.section == Column || s.first {
			s.body = strings.TrimPrefix(s.raw[1:], " ")
			s.first = false
		} else {
			s.body = s.raw[2:]
		}

		if r, ok := s.grammar.Match(s.body); ok {
			s.kind = Tag
			s.rule = r
			s.section, s.next = r.Section, r.Section
			break
		}

		if s.section == None {
			s.kind = Comment
			break
		}

		s.kind = Content
		s.rule, _ = s.grammar.Rule(s.section)
		if s.section == Column {
			s.next = None
		}
	}
	return true
}

// Err returns any read error encountered by Scan.
func (s *Scanner) Err() error { return s.err }

// Line returns the current 1-based line number.
func (s *Scanner) Line() int { return s.lineno }

// Text returns the current line, with trailing space removed.
func (s *Scanner) Text() string { return s.raw }

// Bytes returns Text as a byte slice.
func (s *Scanner) Bytes() []byte { return []byte(s.raw) }

// Body returns the current comment line with its marker removed.
func (s *Scanner) Body() string { return s.body }

// Kind returns the classification of the current line.
func (s *Scanner) Kind() LineKind { return s.kind }

// Section returns the section governing the current line.
func (s *Scanner) Section() Section { return s.section }

// Rule returns the grammar rule for the current Tag or Content line.
func (s *Scanner) Rule() Rule { return s.rule }
