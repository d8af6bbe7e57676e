package vela

import (
	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// MarshalJSON encodes the operand's [Operand.Native] value.
func (o Operand) MarshalJSON() ([]byte, error) {
	return json.Marshal(o.Native())
}

// MarshalYAML encodes the operand's [Operand.Native] value.
func (o Operand) MarshalYAML() (any, error) {
	return o.Native(), nil
}

// node is the document form of an AST node.
type node struct {
	Op            string  `json:"op"                  yaml:"op"`
	Token         string  `json:"token,omitempty"     yaml:"token,omitempty"`
	Type          string  `json:"type,omitempty"      yaml:"type,omitempty"`
	Value         any     `json:"value,omitempty"     yaml:"value,omitempty"`
	Line          int     `json:"line,omitempty"      yaml:"line,omitempty"`
	Column        int     `json:"column,omitempty"    yaml:"column,omitempty"`
	Deterministic bool    `json:"deterministic"       yaml:"deterministic"`
	Tail          bool    `json:"tail,omitempty"      yaml:"tail,omitempty"`
	Children      []*node `json:"children,omitempty"  yaml:"children,omitempty"`
}

func (a *AST) document() *node {
	n := &node{
		Op:            a.Op.String(),
		Deterministic: a.deterministic,
		Tail:          a.tail,
	}

	if a.Token != nil {
		n.Token = a.Token.Text
		n.Line = a.Token.Pos.Line
		n.Column = a.Token.Pos.Column
	}

	switch a.Op {
	case OpLiteral:
		n.Type = a.value.Type().String()
		n.Value = a.value.Native()
	case OpType:
		n.Type = a.typ.String()
	}

	for _, c := range a.Children {
		n.Children = append(n.Children, c.document())
	}

	return n
}

// MarshalJSON encodes the node and its descendants.
func (a *AST) MarshalJSON() ([]byte, error) {
	return json.Marshal(a.document())
}

// MarshalYAML encodes the node and its descendants.
func (a *AST) MarshalYAML() (any, error) {
	return a.document(), nil
}
