package diagram

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"github.com/matzehuels/archdiagram/pkg/diagram/icon"
)

var (
	// ErrEmptyName is returned by [Diagram.Validate] when the diagram has no title.
	ErrEmptyName = errors.New("diagram name must not be empty")

	// ErrInvalidNodeID is returned by [Diagram.AddNode] when neither an ID nor a
	// label is given, so no identifier can be derived.
	ErrInvalidNodeID = errors.New("node ID must not be empty")

	// ErrDuplicateNodeID is returned by [Diagram.AddNode] when a node with the
	// same ID already exists.
	ErrDuplicateNodeID = errors.New("duplicate node ID")

	// ErrDuplicateClusterID is returned by [Diagram.AddCluster] when a cluster
	// with the same ID already exists.
	ErrDuplicateClusterID = errors.New("duplicate cluster ID")

	// ErrUnknownSourceNode is returned when an edge's From node does not exist.
	ErrUnknownSourceNode = errors.New("unknown source node")

	// ErrUnknownTargetNode is returned when an edge's To node does not exist.
	ErrUnknownTargetNode = errors.New("unknown target node")

	// ErrUnknownCluster is returned when a node or cluster references a
	// cluster that does not exist.
	ErrUnknownCluster = errors.New("unknown cluster")

	// ErrClusterCycle is returned by [Diagram.Validate] when cluster parents
	// form a loop.
	ErrClusterCycle = errors.New("cluster nesting contains a cycle")

	// ErrInvalidStyle is returned for an edge style that is not solid, dashed,
	// dotted or bold.
	ErrInvalidStyle = errors.New("invalid edge style")

	// ErrInvalidDirection is returned for an unknown layout direction.
	ErrInvalidDirection = errors.New("invalid direction")

	// ErrInvalidCurveStyle is returned for an unknown curve style.
	ErrInvalidCurveStyle = errors.New("invalid curve style")
)

// Diagram is the top-level rendering context. It collects clusters, nodes and
// edges in declaration order; renderers emit them in that order so output is
// deterministic.
//
// The zero value is not usable - use [New].
// Diagram is not safe for concurrent use without external synchronization.
type Diagram struct {
	Name       string
	Direction  Direction
	CurveStyle CurveStyle
	Formats    []string

	GraphAttrs Attrs
	NodeAttrs  Attrs
	EdgeAttrs  Attrs

	clusters  []*Cluster
	clusterBy map[string]*Cluster
	nodes     []*Node
	nodeBy    map[string]*Node
	edges     []Edge
}

// Option configures a diagram created with [New].
type Option func(*Diagram)

// WithDirection sets the layout direction.
func WithDirection(dir Direction) Option {
	return func(d *Diagram) { d.Direction = dir }
}

// WithCurveStyle sets the edge routing style.
func WithCurveStyle(c CurveStyle) Option {
	return func(d *Diagram) { d.CurveStyle = c }
}

// WithFormats sets the default output formats.
func WithFormats(formats ...string) Option {
	return func(d *Diagram) { d.Formats = formats }
}

// WithGraphAttr overrides a graph-level Graphviz attribute.
func WithGraphAttr(key, value string) Option {
	return func(d *Diagram) { d.GraphAttrs = setAttr(d.GraphAttrs, key, value) }
}

// WithNodeAttr overrides a default node attribute.
func WithNodeAttr(key, value string) Option {
	return func(d *Diagram) { d.NodeAttrs = setAttr(d.NodeAttrs, key, value) }
}

// WithEdgeAttr overrides a default edge attribute.
func WithEdgeAttr(key, value string) Option {
	return func(d *Diagram) { d.EdgeAttrs = setAttr(d.EdgeAttrs, key, value) }
}

func setAttr(a Attrs, key, value string) Attrs {
	if a == nil {
		a = Attrs{}
	}
	a[key] = value
	return a
}

// New creates an empty diagram titled name. It lays out left to right with
// orthogonal edges. Formats stay empty unless set, so callers can apply their
// own default.
func New(name string, opts ...Option) *Diagram {
	d := &Diagram{
		Name:       name,
		Direction:  LeftRight,
		CurveStyle: Ortho,
		clusterBy:  make(map[string]*Cluster),
		nodeBy:     make(map[string]*Node),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Filename returns the base output file name derived from the title: words
// joined with underscores, lower-cased. "Web Services" becomes "web_services".
func (d *Diagram) Filename() string {
	return strings.ToLower(strings.Join(strings.Fields(d.Name), "_"))
}

// =============================================================================
// Building
// =============================================================================

// AddCluster adds c to the diagram. An empty ID is derived from the label.
// The parent, if any, must already exist.
func (d *Diagram) AddCluster(c Cluster) (*Cluster, error) {
	if c.ID == "" {
		c.ID = d.uniqueID(slug(c.Label), d.hasCluster)
	}
	if c.ID == "" {
		return nil, fmt.Errorf("cluster %q: %w", c.Label, ErrInvalidNodeID)
	}
	if d.hasCluster(c.ID) {
		return nil, fmt.Errorf("cluster %s: %w", c.ID, ErrDuplicateClusterID)
	}
	if c.Parent != "" && !d.hasCluster(c.Parent) {
		return nil, fmt.Errorf("cluster %s: parent %s: %w", c.ID, c.Parent, ErrUnknownCluster)
	}
	cl := &c
	cl.d = d
	d.clusters = append(d.clusters, cl)
	d.clusterBy[cl.ID] = cl
	return cl, nil
}

// NewCluster adds a top-level cluster labeled label and returns it.
// The ID is derived from the label; an empty label yields nil.
func (d *Diagram) NewCluster(label string) *Cluster {
	c, _ := d.AddCluster(Cluster{Label: label})
	return c
}

// NewCluster adds a cluster nested inside c. A nil c yields nil.
func (c *Cluster) NewCluster(label string) *Cluster {
	if c == nil {
		return nil
	}
	child, _ := c.d.AddCluster(Cluster{Label: label, Parent: c.ID})
	return child
}

// NewNode adds a node labeled label with the given icon inside c. A nil c
// yields nil, so a chain started from a rejected cluster ends in an error
// from [Diagram.Connect].
func (c *Cluster) NewNode(label string, i icon.Icon) *Node {
	if c == nil {
		return nil
	}
	n, _ := c.d.AddNode(Node{Label: label, Icon: i, Cluster: c.ID})
	return n
}

// NewNode adds an ungrouped node labeled label with the given icon.
// Like [Diagram.NewCluster], an empty label yields nil, which [Diagram.Connect]
// rejects.
func (d *Diagram) NewNode(label string, i icon.Icon) *Node {
	n, _ := d.AddNode(Node{Label: label, Icon: i})
	return n
}

// AddNode adds n to the diagram.
//
// An empty ID is derived from the label and made unique with a numeric suffix.
// Returns ErrInvalidNodeID if both are empty, ErrDuplicateNodeID if an explicit
// ID is taken, and ErrUnknownCluster if n.Cluster names no existing cluster.
// A zero icon defaults to [icon.Blank].
func (d *Diagram) AddNode(n Node) (*Node, error) {
	if n.ID == "" {
		n.ID = d.uniqueID(slug(n.Label), d.hasNode)
	}
	if n.ID == "" {
		return nil, ErrInvalidNodeID
	}
	if d.hasNode(n.ID) {
		return nil, fmt.Errorf("node %s: %w", n.ID, ErrDuplicateNodeID)
	}
	if n.Cluster != "" && !d.hasCluster(n.Cluster) {
		return nil, fmt.Errorf("node %s: cluster %s: %w", n.ID, n.Cluster, ErrUnknownCluster)
	}
	if n.Label == "" {
		n.Label = n.ID
	}
	if n.Icon.IsZero() {
		n.Icon = icon.Blank
	}
	node := &n
	d.nodes = append(d.nodes, node)
	d.nodeBy[node.ID] = node
	return node, nil
}

// AddEdge adds e as given. Both endpoints must exist and the style must be known.
// Multiple edges between the same pair of nodes are allowed.
func (d *Diagram) AddEdge(e Edge) error {
	if !d.hasNode(e.From) {
		return fmt.Errorf("edge %s->%s: %w", e.From, e.To, ErrUnknownSourceNode)
	}
	if !d.hasNode(e.To) {
		return fmt.Errorf("edge %s->%s: %w", e.From, e.To, ErrUnknownTargetNode)
	}
	if !e.Style.Valid() {
		return fmt.Errorf("edge %s->%s: %w: %q", e.From, e.To, ErrInvalidStyle, e.Style)
	}
	d.edges = append(d.edges, e)
	return nil
}

// Connect adds an edge from -> to. Endpoints and the arrow direction in e are
// overwritten.
func (d *Diagram) Connect(from, to *Node, e Edge) error {
	return d.connect(from, to, e, true, false)
}

// ConnectBack adds an edge from <- to: drawn between the same nodes, with the
// arrowhead at from.
func (d *Diagram) ConnectBack(from, to *Node, e Edge) error {
	return d.connect(from, to, e, false, true)
}

// ConnectBoth adds an edge with arrowheads at both ends.
func (d *Diagram) ConnectBoth(from, to *Node, e Edge) error {
	return d.connect(from, to, e, true, true)
}

func (d *Diagram) connect(from, to *Node, e Edge, forward, reverse bool) error {
	if from == nil || to == nil {
		return ErrInvalidNodeID
	}
	e.From, e.To = from.ID, to.ID
	e.Forward, e.Reverse = forward, reverse
	return d.AddEdge(e)
}

// =============================================================================
// Queries
// =============================================================================

// Nodes returns all nodes in declaration order.
func (d *Diagram) Nodes() []*Node { return d.nodes }

// Edges returns all edges in declaration order.
func (d *Diagram) Edges() []Edge { return d.edges }

// Clusters returns all clusters in declaration order.
func (d *Diagram) Clusters() []*Cluster { return d.clusters }

// NodeCount returns the number of nodes.
func (d *Diagram) NodeCount() int { return len(d.nodes) }

// EdgeCount returns the number of edges.
func (d *Diagram) EdgeCount() int { return len(d.edges) }

// Node returns the node with the given ID.
func (d *Diagram) Node(id string) (*Node, bool) {
	n, ok := d.nodeBy[id]
	return n, ok
}

// ClusterByID returns the cluster with the given ID.
func (d *Diagram) ClusterByID(id string) (*Cluster, bool) {
	c, ok := d.clusterBy[id]
	return c, ok
}

// Children returns the clusters directly nested in the cluster with the given
// ID, in declaration order. An empty ID returns the top-level clusters.
func (d *Diagram) Children(id string) []*Cluster {
	var out []*Cluster
	for _, c := range d.clusters {
		if c.Parent == id {
			out = append(out, c)
		}
	}
	return out
}

// NodesIn returns the nodes placed directly in the cluster with the given ID.
// An empty ID returns the ungrouped nodes.
func (d *Diagram) NodesIn(id string) []*Node {
	var out []*Node
	for _, n := range d.nodes {
		if n.Cluster == id {
			out = append(out, n)
		}
	}
	return out
}

// Depth returns the nesting depth of a cluster: 0 for top-level clusters.
// Unknown IDs and cyclic chains return -1.
func (d *Diagram) Depth(id string) int {
	depth := 0
	seen := make(map[string]bool)
	for {
		c, ok := d.clusterBy[id]
		if !ok || seen[id] {
			return -1
		}
		if c.Parent == "" {
			return depth
		}
		seen[id] = true
		id = c.Parent
		depth++
	}
}

// Incoming returns the edges that end at the node with the given ID.
func (d *Diagram) Incoming(id string) []Edge {
	var out []Edge
	for _, e := range d.edges {
		if e.To == id {
			out = append(out, e)
		}
	}
	return out
}

// Outgoing returns the edges that start at the node with the given ID.
func (d *Diagram) Outgoing(id string) []Edge {
	var out []Edge
	for _, e := range d.edges {
		if e.From == id {
			out = append(out, e)
		}
	}
	return out
}

// =============================================================================
// Validation
// =============================================================================

// Validate checks the whole diagram. The builder methods already enforce most
// of these rules; Validate also catches fields modified after insertion.
func (d *Diagram) Validate() error {
	if strings.TrimSpace(d.Name) == "" {
		return ErrEmptyName
	}
	if !d.Direction.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidDirection, d.Direction)
	}
	if !d.CurveStyle.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidCurveStyle, d.CurveStyle)
	}
	for _, c := range d.clusters {
		if c.Parent != "" && !d.hasCluster(c.Parent) {
			return fmt.Errorf("cluster %s: parent %s: %w", c.ID, c.Parent, ErrUnknownCluster)
		}
		if d.Depth(c.ID) < 0 {
			return fmt.Errorf("cluster %s: %w", c.ID, ErrClusterCycle)
		}
	}
	seen := make(map[string]bool, len(d.nodes))
	for _, n := range d.nodes {
		if n.ID == "" {
			return ErrInvalidNodeID
		}
		if seen[n.ID] {
			return fmt.Errorf("node %s: %w", n.ID, ErrDuplicateNodeID)
		}
		seen[n.ID] = true
		if n.Cluster != "" && !d.hasCluster(n.Cluster) {
			return fmt.Errorf("node %s: cluster %s: %w", n.ID, n.Cluster, ErrUnknownCluster)
		}
	}
	for _, e := range d.edges {
		if !seen[e.From] {
			return fmt.Errorf("edge %s->%s: %w", e.From, e.To, ErrUnknownSourceNode)
		}
		if !seen[e.To] {
			return fmt.Errorf("edge %s->%s: %w", e.From, e.To, ErrUnknownTargetNode)
		}
		if !e.Style.Valid() {
			return fmt.Errorf("edge %s->%s: %w: %q", e.From, e.To, ErrInvalidStyle, e.Style)
		}
	}
	return nil
}

func (d *Diagram) hasNode(id string) bool {
	_, ok := d.nodeBy[id]
	return ok
}

func (d *Diagram) hasCluster(id string) bool {
	_, ok := d.clusterBy[id]
	return ok
}

// uniqueID returns base, or base with the smallest "_N" suffix (N >= 2) not
// yet taken.
func (d *Diagram) uniqueID(base string, taken func(string) bool) string {
	if base == "" || !taken(base) {
		return base
	}
	for i := 2; ; i++ {
		id := base + "_" + strconv.Itoa(i)
		if !taken(id) {
			return id
		}
	}
}

// slug lower-cases s and collapses every run of non-alphanumerics into one
// underscore. "QUIC/WebTransport" becomes "quic_webtransport".
func slug(s string) string {
	var b strings.Builder
	pending := false
	for _, r := range strings.ToLower(s) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			if pending && b.Len() > 0 {
				b.WriteByte('_')
			}
			pending = false
			b.WriteRune(r)
			continue
		}
		pending = true
	}
	return b.String()
}
