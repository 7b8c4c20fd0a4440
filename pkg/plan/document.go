package plan

import (
	"fmt"
	"os"
	"strconv"

	"sigs.k8s.io/yaml"

	dberror "relalg/pkg/error"
)

// Document is a plan file: table declarations and named queries over them.
//
//	tables:
//	  - name: sales
//	    keys: [{name: id, type: INT}]
//	    vals: [{name: amount, type: LONG, default: "0"}]
//	    source: sales.csv
//	queries:
//	  - name: total
//	    query:
//	      agg: {input: {load: sales}, plus: {amount: sum}}
type Document struct {
	Tables  []TableDef `json:"tables"`
	Queries []QueryDef `json:"queries"`
}

// AttrDef declares one attribute. Default is parsed with the attribute's
// type; an absent default is null.
type AttrDef struct {
	Name    string  `json:"name"`
	Type    string  `json:"type"`
	Default *string `json:"default,omitempty"`
}

// TableDef declares a table. Its tuples come from Source, a CSV file
// (optionally .zst compressed) with a header row, or from inline Rows.
// Either must be sorted by the keys unless Presort is set.
type TableDef struct {
	Name    string           `json:"name"`
	Keys    []AttrDef        `json:"keys"`
	Vals    []AttrDef        `json:"vals,omitempty"`
	Source  string           `json:"source,omitempty"`
	Rows    []map[string]any `json:"rows,omitempty"`
	Presort bool             `json:"presort,omitempty"`
}

type QueryDef struct {
	Name  string `json:"name"`
	Query *Node  `json:"query"`
}

// Node is one operator of a query. Exactly one field must be set.
type Node struct {
	Load    string       `json:"load,omitempty"`
	Empty   *EmptyNode   `json:"empty,omitempty"`
	Filter  *FilterNode  `json:"filter,omitempty"`
	Project *ProjectNode `json:"project,omitempty"`
	Rename  *RenameNode  `json:"rename,omitempty"`
	Sort    *SortNode    `json:"sort,omitempty"`
	Union   *UnionNode   `json:"union,omitempty"`
	Agg     *AggNode     `json:"agg,omitempty"`
	Join    *JoinNode    `json:"join,omitempty"`
}

type EmptyNode struct {
	Keys []AttrDef `json:"keys"`
	Vals []AttrDef `json:"vals,omitempty"`
}

// FilterNode keeps the input tuples whose attribute Attr compares to Value
// under Op (=, !=, <, <=, >, >=).
type FilterNode struct {
	Input *Node  `json:"input"`
	Attr  string `json:"attr"`
	Op    string `json:"op"`
	Value string `json:"value"`
}

// ProjectNode keeps the named value attributes.
type ProjectNode struct {
	Input *Node    `json:"input"`
	Vals  []string `json:"vals"`
}

type RenameNode struct {
	Input   *Node             `json:"input"`
	Mapping map[string]string `json:"mapping"`
}

type SortNode struct {
	Input *Node    `json:"input"`
	Order []string `json:"order"`
}

// UnionNode merges two inputs. Plus maps value names to stock plus
// functions: sum, product, min, max, any.
type UnionNode struct {
	Left  *Node             `json:"left"`
	Right *Node             `json:"right"`
	Plus  map[string]string `json:"plus,omitempty"`
}

type AggNode struct {
	Input *Node             `json:"input"`
	Keys  []string          `json:"keys,omitempty"`
	Plus  map[string]string `json:"plus,omitempty"`
}

// JoinNode joins two inputs on their shared keys. Times maps value names
// to stock times functions: multiply.
type JoinNode struct {
	Left  *Node             `json:"left"`
	Right *Node             `json:"right"`
	Times map[string]string `json:"times,omitempty"`
}

// Parse decodes a YAML or JSON plan document.
func Parse(data []byte) (*Document, error) {
	var doc Document
	if err := yaml.UnmarshalStrict(data, &doc); err != nil {
		return nil, dberror.Newf(dberror.ErrCategoryUser, dberror.CodeInvalidPlan,
			"cannot decode plan: %v", err).WithCause(err)
	}
	return &doc, nil
}

// ReadFile reads and parses the plan at path.
func ReadFile(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, dberror.Wrap(err, dberror.CodeSourceIO, "ReadFile", "plan")
	}
	doc, err := Parse(data)
	if err != nil {
		return nil, dberror.Wrap(err, dberror.CodeInvalidPlan, "ReadFile", "plan").WithDetail(path)
	}
	return doc, nil
}

func (n *Node) kind() (string, error) {
	var kinds []string
	if n.Load != "" {
		kinds = append(kinds, "load")
	}
	if n.Empty != nil {
		kinds = append(kinds, "empty")
	}
	if n.Filter != nil {
		kinds = append(kinds, "filter")
	}
	if n.Project != nil {
		kinds = append(kinds, "project")
	}
	if n.Rename != nil {
		kinds = append(kinds, "rename")
	}
	if n.Sort != nil {
		kinds = append(kinds, "sort")
	}
	if n.Union != nil {
		kinds = append(kinds, "union")
	}
	if n.Agg != nil {
		kinds = append(kinds, "agg")
	}
	if n.Join != nil {
		kinds = append(kinds, "join")
	}
	if len(kinds) != 1 {
		return "", invalidf("query node must have exactly one operator, found %v", kinds)
	}
	return kinds[0], nil
}

// scalar renders a decoded YAML scalar the way ParseField expects it.
func scalar(v any) (string, bool) {
	switch x := v.(type) {
	case nil:
		return "", false
	case string:
		return x, true
	case bool:
		return strconv.FormatBool(x), true
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64), true
	default:
		return fmt.Sprint(x), true
	}
}

func invalidf(format string, args ...any) *dberror.DBError {
	return dberror.Newf(dberror.ErrCategoryUser, dberror.CodeInvalidPlan, format, args...)
}
