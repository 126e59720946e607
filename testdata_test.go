package cildiff

// fakeNode is a minimal hand-built ASTNode used across this package's
// white-box tests, standing in for internal/cilparse's concrete type
// without importing it (which would be a cycle: internal/cilparse
// imports cildiff).
type fakeNode struct {
	flavor Flavor
	data   interface{}
	first  *fakeNode
	next   *fakeNode
	line   uint32
	branch CondBranch
}

func (n *fakeNode) Flavor() Flavor         { return n.flavor }
func (n *fakeNode) Data() interface{}      { return n.data }
func (n *fakeNode) Line() uint32           { return n.line }
func (n *fakeNode) CondBranch() CondBranch { return n.branch }

func (n *fakeNode) FirstChild() ASTNode {
	if n.first == nil {
		return nil
	}
	return n.first
}

func (n *fakeNode) NextSibling() ASTNode {
	if n.next == nil {
		return nil
	}
	return n.next
}

func withChildren(n *fakeNode, kids ...*fakeNode) *fakeNode {
	for i := 0; i+1 < len(kids); i++ {
		kids[i].next = kids[i+1]
	}
	if len(kids) > 0 {
		n.first = kids[0]
	}
	return n
}

func namedType(name string) *fakeNode {
	return &fakeNode{flavor: FlavorType, data: NameData{Name: name}}
}

func avRule(src, tgt, class string, perms ...string) *fakeNode {
	return &fakeNode{flavor: FlavorAllow, data: AVRuleData{Source: src, Target: tgt, Class: class, Perms: perms}}
}

func block(name string, kids ...*fakeNode) *fakeNode {
	return withChildren(&fakeNode{flavor: FlavorBlock, data: ContainerData{Name: name}}, kids...)
}

func optional(name string, kids ...*fakeNode) *fakeNode {
	return withChildren(&fakeNode{flavor: FlavorOptional, data: ContainerData{Name: name}}, kids...)
}

func root(kids ...*fakeNode) *fakeNode {
	return withChildren(&fakeNode{flavor: FlavorRoot, data: ContainerData{}}, kids...)
}
