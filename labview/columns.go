package labview

import (
	"strconv"
	"strings"
	"unicode"
)

// DefaultFixups corrects the known malformed column headings produced by
// the acquisition software, where a separator went missing or a stray
// character was emitted.
var DefaultFixups = []Fixup{
	{"*", " "},
	{"XMAP12:DT Corr I0", "XMAP12:DT_Corr_I0"},
	{"tempeXMAP4", "tempe  XMAP4"},
	{"scatter_Sum XMAP4", "scatter_Sum  XMAP4"},
	{"Stats1:TS20-", "Stats1:T  S20-"},
	{"Mono Energy (alt)", "Mono Energy"},
}

// DefaultDeviceNames are the lower case device prefixes stripped from
// column names in no-device mode, alongside any upper case prefix.
var DefaultDeviceNames = []string{"pncaux", "pncid", "s20ptc10"}

// SplitColumns tokenizes a column heading line (with its comment marker
// already removed) into column names.
func SplitColumns(line string, opts ...Option) []string {
	o := newOptions(opts)
	cols, _ := o.splitColumns(line)
	return cols
}

// splitColumns returns the column names and any complaints about fragments
// that look malformed but are not on the fixup list.
func (o *options) splitColumns(line string) (cols, complaints []string) {
	line = applyFixups(line, o.fixups)

	for _, term := range strings.Split(line, "  ") {
		if term = strings.TrimSpace(term); term != "" {
			cols = append(cols, term)
		}
	}

	if len(cols) == 1 && strings.ContainsRune(cols[0], ' ') {
		complaints = append(complaints, "no double-space separators; split on single spaces: "+strconv.Quote(cols[0]))
		cols = strings.Fields(cols[0])
	}

	for _, col := range cols {
		if i := strings.LastIndexByte(col, ' '); i >= 0 && strings.ContainsRune(col[i+1:], ':') {
			complaints = append(complaints, "term may join two columns: "+strconv.Quote(col))
		}
	}

	if o.noDevice {
		for i, col := range cols {
			cols[i] = o.stripDevice(col)
		}
	}
	return cols, complaints
}

// stripDevice removes the device part of a "DEVICE:channel" column name.
// Upper case or known device prefixes before the first colon are dropped;
// otherwise the name is cut at its last colon.
func (o *options) stripDevice(term string) string {
	first := strings.IndexByte(term, ':')
	if first < 0 {
		return term
	}
	if prefix := term[:first]; isUpper(prefix) || o.devices[prefix] {
		return term[first+1:]
	}
	last := strings.LastIndexByte(term, ':')
	return strings.TrimLeftFunc(term[:last], unicode.IsSpace)
}

// isUpper reports whether s has at least one cased letter and no lower case
// ones.
func isUpper(s string) bool {
	cased := false
	for _, r := range s {
		if unicode.IsLower(r) {
			return false
		}
		if unicode.IsUpper(r) {
			cased = true
		}
	}
	return cased
}

// MangleDuplicates suffixes repeated names with their occurrence index,
// so that "x", "x" becomes "x", "x.1". A suffixed name already in use is
// skipped over: "x", "x.1", "x" becomes "x", "x.1", "x.2".
func MangleDuplicates(names []string) []string {
	used := make(map[string]bool, len(names))
	next := make(map[string]int, len(names))
	out := make([]string, 0, len(names))
	for _, name := range names {
		mangled := name
		if used[name] {
			n := next[name]
			if n == 0 {
				n = 1
			}
			for used[name+"."+strconv.Itoa(n)] {
				n++
			}
			mangled = name + "." + strconv.Itoa(n)
			next[name] = n + 1
		}
		used[mangled] = true
		out = append(out, mangled)
	}
	return out
}

func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
