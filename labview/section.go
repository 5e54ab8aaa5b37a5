package labview

import "strings"

// Section identifies the header block that governs how comment lines are
// read. Its zero value None means no block is open.
type Section int

// Section constants, in the order blocks were added to the file format.
const (
	None Section = iota
	Column
	UserComment
	ScanConfig
	Amplifier
	Analog
	Mono
	IDInfo
	Slit
	Motor
	Panel
	Beamline
	XIA
	Shutter
)

// ContentKind selects how a section's content lines are split and stored.
type ContentKind int

// ContentKind constants.
const (
	// Headers is the column heading line; stored as []string.
	Headers ContentKind = iota
	// JoinedLines collapses runs of whitespace and appends each line to a
	// []string.
	JoinedLines
	// RawLines appends each line unchanged to a []string.
	RawLines
	// List splits the line on Sep, replacing any prior []string.
	List
	// KeyValue splits the line on Sep and then each fragment on ": ",
	// replacing any prior map[string]string.
	KeyValue
	// Text stores the line as a single string.
	Text
)

// Fixup is a literal substitution applied to a line before it is split.
type Fixup struct {
	Old, New string
}

// Rule is one entry in a Grammar: how a section is recognized from its tag
// line and how the lines following it are read.
type Rule struct {
	Section Section
	Title   string

	// Substring matches any comment line containing Title, rather than
	// only one equal to it.
	Substring bool

	// Inline tag lines carry content themselves, so they are also read
	// as the section's first content line.
	Inline bool

	Key    string
	Kind   ContentKind
	Sep    string
	Fixups []Fixup
}

// Grammar is an ordered table of section rules; the first rule matching a
// comment line wins.
type Grammar []Rule

// DefaultGrammar is the section table for the beamline LabVIEW files.
var DefaultGrammar = Grammar{
	{Section: Column, Title: "Column Headings:", Key: "columns", Kind: Headers},
	{Section: UserComment, Title: "User Comment:", Key: "user_comment", Kind: JoinedLines},
	{Section: ScanConfig, Title: "Scan config:", Key: "scan_config", Kind: JoinedLines},
	{Section: Amplifier, Title: "Amplifier Sensitivities:", Key: "amplifier_sensitivities", Kind: KeyValue, Sep: "  "},
	{Section: Analog, Title: "Analog Input Voltages", Substring: true, Key: "analog_input_voltages", Kind: KeyValue, Sep: "  "},
	{Section: Mono, Title: "Mono Info:", Key: "mono_info", Kind: KeyValue, Sep: "; "},
	{Section: IDInfo, Title: "ID Info:", Key: "id_info", Kind: List, Sep: "  "},
	{Section: Slit, Title: "Slit Info:", Key: "slit_info", Kind: RawLines},
	{Section: Motor, Title: "Motor Positions:", Key: "motor_positions", Kind: RawLines},
	{Section: Panel, Title: "LabVIEW Control Panel", Substring: true, Inline: true, Key: "file", Kind: List, Sep: "; "},
	{Section: Beamline, Title: "Beamline", Substring: true, Inline: true, Key: "beamline", Kind: Text},
	{Section: XIA, Title: "XIA Filters:", Substring: true, Key: "xia_filter", Kind: KeyValue, Sep: "  ",
		Fixups: []Fixup{{"OUT", "OUT "}}},
	{Section: Shutter, Title: "XIA Shutter Unit:", Substring: true, Key: "xia_shutter_unit", Kind: KeyValue, Sep: "  ",
		Fixups: []Fixup{{"OUT", "OUT "}}},
}

// Match returns the first rule whose title matches the given comment text.
func (g Grammar) Match(text string) (Rule, bool) {
	for _, r := range g {
		if r.Substring {
			if strings.Contains(text, r.Title) {
				return r, true
			}
		} else if text == r.Title {
			return r, true
		}
	}
	return Rule{}, false
}

// Rule returns the rule defining the given section.
func (g Grammar) Rule(s Section) (Rule, bool) {
	for _, r := range g {
		if r.Section == s {
			return r, true
		}
	}
	return Rule{}, false
}

func applyFixups(line string, fixups []Fixup) string {
	for _, f := range fixups {
		line = strings.ReplaceAll(line, f.Old, f.New)
	}
	return line
}
