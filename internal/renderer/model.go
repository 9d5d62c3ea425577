package renderer

// NodeShape hints the visual shape of a graph node.
type NodeShape string

const (
	ShapeBox     NodeShape = "box"
	ShapeDiamond NodeShape = "diamond"
	ShapeRounded NodeShape = "rounded"
	ShapeCircle  NodeShape = "circle"
	ShapeRecord  NodeShape = "record"
)

// GraphModel is the coarse intermediate representation extracted from
// markup before handing it to an engine. It deliberately covers only
// the structure needed for layout: nodes, edges, and labels.
type GraphModel struct {
	Title string
	Nodes []*GraphNode
	Edges []GraphEdge
}

// GraphNode is a single node extracted from the markup.
type GraphNode struct {
	ID    string
	Label string
	Shape NodeShape
}

// GraphEdge connects two nodes, optionally labeled.
type GraphEdge struct {
	From  string
	To    string
	Label string
}

// node returns the node with the given id, creating it when absent.
func (m *GraphModel) node(id string) *GraphNode {
	for _, n := range m.Nodes {
		if n.ID == id {
			return n
		}
	}
	n := &GraphNode{ID: id, Label: id, Shape: ShapeBox}
	m.Nodes = append(m.Nodes, n)
	return n
}
