package query

import "github.com/vaibhav938bit/neoquery/internal/schema"

// queryAST is the in-memory statement model. Each compilation owns
// exactly one instance; it never escapes the builder that created it.
type queryAST struct {
	match            []string
	optionalMatch    []string
	where            []string
	withClause       string
	returnClause     string
	additionalReturn []string
	orderBy          []string
	skip             int
	limit            int
	resultClass      *schema.NodeClass
	lookup           string
	isCount          bool
	subgraph         *shapeNode
}

func newQueryAST() *queryAST {
	return &queryAST{subgraph: newShapeNode(nil, "", "")}
}

// shapeNode records how one traversal hop maps back onto the nested
// object hierarchy: the hop's node variable, its relationship variable,
// the target class, and the hops nested below it. The root node carries
// children only.
type shapeNode struct {
	target          *schema.NodeClass
	variableName    string
	relVariableName string
	children        map[string]*shapeNode
	childOrder      []string
}

func newShapeNode(target *schema.NodeClass, variableName, relVariableName string) *shapeNode {
	return &shapeNode{
		target:          target,
		variableName:    variableName,
		relVariableName: relVariableName,
		children:        make(map[string]*shapeNode),
	}
}

func (s *shapeNode) child(name string) (*shapeNode, bool) {
	node, ok := s.children[name]
	return node, ok
}

func (s *shapeNode) addChild(name string, node *shapeNode) {
	if _, exists := s.children[name]; !exists {
		s.childOrder = append(s.childOrder, name)
	}
	s.children[name] = node
}
