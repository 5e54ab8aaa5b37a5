package survey

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/russross/blackfriday"

	"github.com/AI-multimodal/aimm-adapteres/internal/textio"
)

// RenderTree writes the children of n as an outline, each line being
// "|-- key:" followed by a leaf's value; a branch's children follow it
// indented by four spaces.
func RenderTree(w io.Writer, n *Node) error {
	ew := &textio.ErrWriter{Writer: w}
	renderNodes(ew, n.Children)
	return ew.Err
}

func renderNodes(w io.Writer, nodes []*Node) {
	for _, c := range nodes {
		if !c.Branch {
			fmt.Fprintf(w, "|-- %s:%s\n", c.Key, c.Value)
			continue
		}
		fmt.Fprintf(w, "|-- %s:\n", c.Key)
		iw := textio.Indent("    ", w)
		renderNodes(iw, c.Children)
		iw.Close()
	}
}

// CountsMarkdown writes counts as a markdown table under a title.
func CountsMarkdown(w io.Writer, title string, counts []Count) error {
	ew := &textio.ErrWriter{Writer: w}
	fmt.Fprintf(ew, "# %s\n\n", title)
	io.WriteString(ew, "| Column | Files |\n| --- | ---: |\n")
	for _, c := range counts {
		fmt.Fprintf(ew, "| %s | %d |\n", escapeCell(c.Name), c.Files)
	}
	return ew.Err
}

// TreeMarkdown writes the children of n as a nested markdown list.
func TreeMarkdown(w io.Writer, title string, n *Node) error {
	ew := &textio.ErrWriter{Writer: w}
	fmt.Fprintf(ew, "# %s\n\n", title)
	treeMarkdown(ew, n.Children)
	return ew.Err
}

func treeMarkdown(w io.Writer, nodes []*Node) {
	for _, c := range nodes {
		if c.Branch {
			fmt.Fprintf(w, "- **%s**\n", c.Key)
			iw := textio.Indent("  ", w)
			treeMarkdown(iw, c.Children)
			iw.Close()
		} else {
			fmt.Fprintf(w, "- `%s`: %s\n", c.Key, c.Value)
		}
	}
}

func escapeCell(s string) string {
	return strings.ReplaceAll(s, "|", `\|`)
}

// HTML renders a markdown report as an HTML fragment.
func HTML(md []byte) []byte {
	return blackfriday.Run(md, blackfriday.WithExtensions(blackfriday.CommonExtensions))
}

// WriteHTML renders a report written by write as HTML into w.
func WriteHTML(w io.Writer, write func(io.Writer) error) error {
	var buf bytes.Buffer
	if err := write(&buf); err != nil {
		return err
	}
	_, err := w.Write(HTML(buf.Bytes()))
	return err
}
