package doctree

// Node is a recursive section in a document tree.
type Node struct {
	NodeID   string  `json:"node_id"`
	Title    string  `json:"title"`           // Section heading (empty only for synthetic roots)
	Level    int     `json:"level"`           // Heading depth 1..6
	Text     string  `json:"text"`            // Body text owned by this node, excluding children
	Summary  string  `json:"summary,omitempty"`
	Children []*Node `json:"nodes,omitzero"` // Subsections in document order; nil is omitted, empty is kept
}

// Tree is the assembled form of one document, before it is given an id.
type Tree struct {
	Name        string  `json:"doc_name"`
	Description string  `json:"doc_description,omitempty"`
	Structure   []*Node `json:"structure"`
}

// Record is one persisted document.
type Record struct {
	DocID          string   `json:"doc_id"`
	SourceFile     string   `json:"source_file"`
	Metadata       Metadata `json:"metadata"`
	DocName        string   `json:"doc_name"`
	DocDescription string   `json:"doc_description"`
	Structure      []*Node  `json:"structure"`
}

// Summary is the listing view of a Record.
type Summary struct {
	DocID          string `json:"doc_id"`
	SourceFile     string `json:"source_file"`
	DocName        string `json:"doc_name"`
	DocDescription string `json:"doc_description"`
	NodeCount      int    `json:"node_count"`
}

// Hit is a single search result.
type Hit struct {
	DocID       string `json:"doc_id"`
	DocName     string `json:"doc_name"`
	NodeID      string `json:"node_id"`
	NodePath    string `json:"node_path"`
	Title       string `json:"title"`
	Summary     string `json:"summary"`
	TextSnippet string `json:"text_snippet"`
	Score       int    `json:"score"`
}

// Name is the display name of r: its doc name, or the source file when the
// tree was saved without one.
func (r *Record) Name() string {
	if r.DocName == "" {
		return r.SourceFile
	}
	return r.DocName
}

// Summarize builds the listing view of r.
func (r *Record) Summarize() Summary {
	return Summary{
		DocID:          r.DocID,
		SourceFile:     r.SourceFile,
		DocName:        r.Name(),
		DocDescription: r.DocDescription,
		NodeCount:      CountNodes(r.Structure),
	}
}

// Walk visits nodes in pre-order. depth is 0 for roots. Returning false from
// fn skips the node's children.
func Walk(nodes []*Node, fn func(n *Node, depth int) bool) {
	var walk func(nodes []*Node, depth int)
	walk = func(nodes []*Node, depth int) {
		for _, n := range nodes {
			if n == nil {
				continue
			}
			if fn(n, depth) {
				walk(n.Children, depth+1)
			}
		}
	}
	walk(nodes, 0)
}

// CountNodes returns the number of nodes in the forest.
func CountNodes(nodes []*Node) int {
	count := 0
	Walk(nodes, func(*Node, int) bool {
		count++
		return true
	})
	return count
}

// FindNode returns the first node in pre-order with the given id, or nil.
func FindNode(nodes []*Node, nodeID string) *Node {
	var found *Node
	Walk(nodes, func(n *Node, _ int) bool {
		if found != nil {
			return false
		}
		if n.NodeID == nodeID {
			found = n
			return false
		}
		return true
	})
	return found
}

// Clone returns a deep copy of the forest.
func Clone(nodes []*Node) []*Node {
	if nodes == nil {
		return nil
	}
	out := make([]*Node, 0, len(nodes))
	for _, n := range nodes {
		if n == nil {
			continue
		}
		c := *n
		c.Children = Clone(n.Children)
		out = append(out, &c)
	}
	return out
}
