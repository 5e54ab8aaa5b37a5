package tree

import (
	"strings"

	"github.com/AI-multimodal/aimm-adapteres/internal/catalog"
)

// Spec tags catalog entries collected from a tree.
const Spec = "XAS"

// Collect flattens the leaves of n that name an element into catalog
// entries for dataset. Each entry's key is its path from n joined with
// "-", which also becomes its fname; the sample name is the leaf name.
func Collect(n *Node, dataset string) []catalog.Entry {
	var entries []catalog.Entry
	n.Walk(func(path []string, leaf *Node) error {
		if elementSymbol(leaf.Meta) == nil {
			return nil
		}
		key := strings.Join(path, "-")
		meta := make(map[string]interface{}, len(leaf.Meta)+3)
		for k, v := range leaf.Meta {
			meta[k] = v
		}
		meta["dataset"] = dataset
		meta["sample"] = map[string]interface{}{"name": leaf.Name}
		meta["fname"] = key
		entries = append(entries, catalog.Entry{
			Container: dataset,
			Key:       key,
			Specs:     []string{Spec},
			Metadata:  meta,
			Table: catalog.Table{
				Columns: leaf.Record.Columns,
				Rows:    leaf.Record.Rows,
			},
		})
		return nil
	})
	return entries
}

func elementSymbol(meta map[string]interface{}) interface{} {
	common, _ := meta["common"].(map[string]interface{})
	element, _ := common["element"].(map[string]interface{})
	return element["symbol"]
}
