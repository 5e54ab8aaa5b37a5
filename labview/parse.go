package labview

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"unicode"

	"github.com/AI-multimodal/aimm-adapteres/internal/logging"
)

// Metadata maps a section key to its content: a []string, a
// map[string]string or a string, depending on the section's ContentKind.
type Metadata map[string]interface{}

// Strings returns the []string stored under key, if any.
func (md Metadata) Strings(key string) []string {
	ss, _ := md[key].([]string)
	return ss
}

// Record is the parsed content of one file: a table plus header metadata.
type Record struct {
	Columns     []string
	Rows        [][]float64
	Meta        Metadata
	Diagnostics []Diagnostic
}

// Column returns the values of the named column, if present.
func (rec *Record) Column(name string) ([]float64, bool) {
	for i, col := range rec.Columns {
		if col == name {
			vals := make([]float64, len(rec.Rows))
			for j, row := range rec.Rows {
				vals[j] = row[i]
			}
			return vals, true
		}
	}
	return nil, false
}

// Comments returns the user comment lines.
func (rec *Record) Comments() []string { return rec.Meta.Strings("user_comment") }

// Diagnostic records a header fragment that was read but looked malformed.
type Diagnostic struct {
	Line     int
	Section  Section
	Fragment string
	Message  string
}

// FormatError is returned when a file's table can not be assembled.
type FormatError struct {
	File string
	Line int
	Msg  string
	Err  error
}

func (e *FormatError) Error() string {
	var sb strings.Builder
	if e.File != "" {
		sb.WriteString(e.File)
		sb.WriteByte(':')
	}
	if e.Line > 0 {
		fmt.Fprintf(&sb, "%d:", e.Line)
	}
	if sb.Len() > 0 {
		sb.WriteByte(' ')
	}
	sb.WriteString(e.Msg)
	if e.Err != nil {
		sb.WriteString(": ")
		sb.WriteString(e.Err.Error())
	}
	return sb.String()
}

func (e *FormatError) Unwrap() error { return e.Err }

// ErrNoColumns is wrapped by the FormatError for data rows in a file that has
// no column headings.
var ErrNoColumns = errors.New("data rows without column headings")

// Option customizes parsing.
type Option func(*options)

type options struct {
	grammar  Grammar
	fixups   []Fixup
	devices  map[string]bool
	noDevice bool
	logger   *slog.Logger
	file     string
}

func newOptions(opts []Option) *options {
	o := &options{
		grammar: DefaultGrammar,
		fixups:  DefaultFixups,
	}
	WithDeviceNames(DefaultDeviceNames)(o)
	for _, opt := range opts {
		opt(o)
	}
	if o.logger == nil {
		o.logger = logging.Logger()
	}
	return o
}

// WithNoDevice strips device prefixes from column names.
func WithNoDevice(noDevice bool) Option {
	return func(o *options) { o.noDevice = noDevice }
}

// WithFixups replaces the column heading fixup list.
func WithFixups(fixups []Fixup) Option {
	return func(o *options) { o.fixups = fixups }
}

// WithDeviceNames replaces the lower case device prefixes recognized in
// no-device mode.
func WithDeviceNames(names []string) Option {
	return func(o *options) {
		o.devices = make(map[string]bool, len(names))
		for _, name := range names {
			o.devices[name] = true
		}
	}
}

// WithGrammar replaces the section grammar.
func WithGrammar(g Grammar) Option {
	return func(o *options) { o.grammar = g }
}

// WithLogger sets the logger that diagnostics are reported to.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) { o.logger = l }
}

// WithFilename names the source in errors and log records.
func WithFilename(name string) Option {
	return func(o *options) { o.file = name }
}

// ParseFile opens and parses the named file.
func ParseFile(path string, opts ...Option) (_ *Record, rerr error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := f.Close(); rerr == nil {
			rerr = cerr
		}
	}()
	opts = append([]Option{WithFilename(filepath.Base(path))}, opts...)
	return Parse(f, opts...)
}

// Parse reads a LabVIEW file, returning its table and header metadata.
func Parse(r io.Reader, opts ...Option) (*Record, error) {
	o := newOptions(opts)
	b := builder{
		options: o,
		rec:     &Record{Meta: make(Metadata)},
	}
	sc := NewScanner(r, o.grammar)
	for sc.Scan() {
		if err := b.line(sc); err != nil {
			return nil, err
		}
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return b.finish()
}

// ParseColumns reads only as far as the first data row, returning the
// column names and that row's width.
func ParseColumns(r io.Reader, opts ...Option) (columns []string, width int, err error) {
	o := newOptions(opts)
	sc := NewScanner(r, o.grammar)
	for sc.Scan() {
		switch sc.Kind() {
		case Content:
			if sc.Section() == Column {
				columns, _ = o.splitColumns(sc.Body())
			}
		case Data:
			if columns != nil {
				return columns, len(strings.Fields(sc.Text())), nil
			}
		}
	}
	return columns, 0, sc.Err()
}

type builder struct {
	*options
	rec      *Record
	headers  []string
	buf      []string
	rowLines []int
}

func (b *builder) line(sc *Scanner) error {
	switch sc.Kind() {
	case Data:
		return b.data(sc.Line(), sc.Text())

	case Tag:
		if rule := sc.Rule(); rule.Section != Column {
			b.buf = nil
		}
		if sc.Rule().Inline {
			b.content(sc.Line(), sc.Rule(), sc.Body())
		}

	case Content:
		b.content(sc.Line(), sc.Rule(), sc.Body())

	case Comment:
		b.logger.Debug("comment outside of any section",
			"file", b.file, "line", sc.Line(), "text", sc.Body())
	}
	return nil
}

func (b *builder) content(lineno int, rule Rule, text string) {
	text = applyFixups(text, rule.Fixups)
	md := b.rec.Meta

	switch rule.Kind {
	case Headers:
		cols, complaints := b.splitColumns(text)
		for _, msg := range complaints {
			b.diagnose(lineno, rule.Section, text, msg)
		}
		b.headers = cols
		md[rule.Key] = cols

	case JoinedLines:
		b.buf = append(b.buf, collapseSpace(text))
		md[rule.Key] = append([]string(nil), b.buf...)

	case RawLines:
		b.buf = append(b.buf, text)
		md[rule.Key] = append([]string(nil), b.buf...)

	case List:
		md[rule.Key] = splitNonEmpty(text, rule.Sep)

	case KeyValue:
		kv := make(map[string]string)
		for _, frag := range splitNonEmpty(text, rule.Sep) {
			i := strings.Index(frag, ": ")
			if i < 0 {
				b.diagnose(lineno, rule.Section, frag, "fragment has no key: value separator")
				kv[frag] = ""
				continue
			}
			kv[frag[:i]] = frag[i+2:]
		}
		md[rule.Key] = kv

	case Text:
		md[rule.Key] = text

	default:
		b.diagnose(lineno, rule.Section, text, fmt.Sprintf("unsupported content kind %v", rule.Kind))
	}
}

func (b *builder) diagnose(lineno int, s Section, fragment, msg string) {
	b.rec.Diagnostics = append(b.rec.Diagnostics, Diagnostic{
		Line:     lineno,
		Section:  s,
		Fragment: fragment,
		Message:  msg,
	})
	b.logger.Warn(msg,
		"file", b.file,
		"line", lineno,
		"section", s.String(),
		"fragment", fragment)
}

func (b *builder) data(lineno int, text string) error {
	fields := strings.Fields(text)
	row := make([]float64, len(fields))
	for i, field := range fields {
		v, err := strconv.ParseFloat(field, 64)
		if err != nil {
			return &FormatError{File: b.file, Line: lineno, Msg: "invalid data value", Err: err}
		}
		row[i] = v
	}
	b.rec.Rows = append(b.rec.Rows, row)
	b.rowLines = append(b.rowLines, lineno)
	return nil
}

func (b *builder) finish() (*Record, error) {
	rec := b.rec
	if len(b.headers) == 0 && len(rec.Rows) > 0 {
		return nil, &FormatError{File: b.file, Line: b.rowLines[0], Msg: "table", Err: ErrNoColumns}
	}
	for i, row := range rec.Rows {
		if len(row) != len(b.headers) {
			return nil, &FormatError{
				File: b.file,
				Line: b.rowLines[i],
				Msg:  fmt.Sprintf("row has %d values, want %d columns", len(row), len(b.headers)),
			}
		}
	}
	rec.Columns = MangleDuplicates(b.headers)
	return rec, nil
}

func splitNonEmpty(s, sep string) []string {
	parts := strings.Split(s, sep)
	out := parts[:0]
	for _, part := range parts {
		if part = strings.TrimLeftFunc(part, unicode.IsSpace); part != "" {
			out = append(out, part)
		}
	}
	return out
}
