package vela

import (
	"bytes"
	"strings"
	"testing"

	"github.com/goccy/go-yaml"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOperand_String(t *testing.T) {
	tests := []struct {
		v    Operand
		want string
	}{
		{Real(6), "6"},
		{Real(-0.25), "-0.25"},
		{Real(2457504.93), "2457504.93"},
		{Real(1e21), "1e+21"},
		{Real(1e-7), "1e-07"},
		{Boolean(true), "true"},
		{String("a b"), "a b"},
		{List(Real(1), String("x"), List()), `[1, "x", []]`},
		{Operand{}, "<none>"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.v.String())
		})
	}
}

func TestOperand_MarshalJSON(t *testing.T) {
	data, err := json.Marshal(List(Real(1.5), String("a"), Boolean(true)))
	require.NoError(t, err)
	assert.JSONEq(t, `[1.5, "a", true]`, string(data))
}

func TestOperand_MarshalYAML(t *testing.T) {
	data, err := yaml.Marshal(List(String("a"), Boolean(false)))
	require.NoError(t, err)
	assert.Equal(t, "- a\n- false\n", string(data))
}

func TestAST_MarshalJSON(t *testing.T) {
	ast, err := Parse("x + 0")
	require.NoError(t, err)

	data, err := json.Marshal(ast)
	require.NoError(t, err)

	var doc struct {
		Op       string `json:"op"`
		Children []struct {
			Op       string `json:"op"`
			Token    string `json:"token"`
			Children []struct {
				Op    string `json:"op"`
				Token string `json:"token"`
				Type  string `json:"type"`
				Value any    `json:"value"`
			} `json:"children"`
		} `json:"children"`
	}

	require.NoError(t, json.Unmarshal(data, &doc))
	assert.Equal(t, "PROGRAM", doc.Op)
	require.Len(t, doc.Children, 1)
	assert.Equal(t, "ADD", doc.Children[0].Op)
	require.Len(t, doc.Children[0].Children, 2)
	assert.Equal(t, "x", doc.Children[0].Children[0].Token)
	assert.Equal(t, "REAL", doc.Children[0].Children[1].Type)
	assert.Equal(t, 0.0, doc.Children[0].Children[1].Value)
}

func TestAST_MarshalYAML(t *testing.T) {
	ast, err := Parse(`"s"`)
	require.NoError(t, err)

	data, err := yaml.Marshal(ast)
	require.NoError(t, err)
	assert.Contains(t, string(data), "op: LITERAL")
	assert.Contains(t, string(data), "value: s")
}

func TestAST_Fprint(t *testing.T) {
	ast, err := Parse("f(n: real): real { f(n) }")
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, ast.Fprint(&buf))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	assert.Equal(t, []string{
		"PROGRAM !det",
		`  FUNDEF "f" !det`,
		`    PARAMS "("`,
		`      PARAM "n"`,
		"        TYPE REAL",
		"    TYPE REAL",
		`    BLOCK "{"`,
		`      FUNCALL "f" tail`,
		`        IDENT "n"`,
	}, lines)
}
