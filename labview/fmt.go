package labview

import (
	"fmt"
	"io"
	"sort"
)

var sectionNames = [...]string{
	None:        "None",
	Column:      "Column",
	UserComment: "UserComment",
	ScanConfig:  "ScanConfig",
	Amplifier:   "Amplifier",
	Analog:      "Analog",
	Mono:        "Mono",
	IDInfo:      "IDInfo",
	Slit:        "Slit",
	Motor:       "Motor",
	Panel:       "Panel",
	Beamline:    "Beamline",
	XIA:         "XIA",
	Shutter:     "Shutter",
}

func (s Section) String() string {
	if s >= 0 && int(s) < len(sectionNames) {
		return sectionNames[s]
	}
	return fmt.Sprintf("InvalidSection%d", int(s))
}

func (k LineKind) String() string {
	switch k {
	case Blank:
		return "Blank"
	case Data:
		return "Data"
	case Reset:
		return "Reset"
	case Tag:
		return "Tag"
	case Content:
		return "Content"
	case Comment:
		return "Comment"
	default:
		return fmt.Sprintf("InvalidLineKind%d", int(k))
	}
}

func (k ContentKind) String() string {
	switch k {
	case Headers:
		return "Headers"
	case JoinedLines:
		return "JoinedLines"
	case RawLines:
		return "RawLines"
	case List:
		return "List"
	case KeyValue:
		return "KeyValue"
	case Text:
		return "Text"
	default:
		return fmt.Sprintf("InvalidContentKind%d", int(k))
	}
}

// Format writes a one line summary of the receiver, "N×M [col ...]". With
// "%+v" it also lists the metadata keys and any diagnostics, one per line.
func (rec *Record) Format(f fmt.State, _ rune) {
	width := len(rec.Columns)
	fmt.Fprintf(f, "%d×%d %q", len(rec.Rows), width, rec.Columns)
	if !f.Flag('+') {
		return
	}
	keys := make([]string, 0, len(rec.Meta))
	for key := range rec.Meta {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		fmt.Fprintf(f, "\n%s: %v", key, rec.Meta[key])
	}
	for _, d := range rec.Diagnostics {
		io.WriteString(f, "\n")
		fmt.Fprintf(f, "! line %d %v: %s", d.Line, d.Section, d.Message)
	}
}
