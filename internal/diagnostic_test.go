package internal

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/gnoswap-labs/litmus/internal/alloy"
	"github.com/gnoswap-labs/litmus/internal/emitter"
	"github.com/gnoswap-labs/litmus/internal/syntax"
	"github.com/gnoswap-labs/litmus/internal/template"
	"github.com/gnoswap-labs/litmus/internal/transform"
	tt "github.com/gnoswap-labs/litmus/internal/types"
)

func TestDiagnose(t *testing.T) {
	t.Parallel()
	inst := template.Instance{Index: 2, Params: []string{"acquire", "gpu"}}

	tests := []struct {
		name     string
		err      error
		kind     string
		instance string
		line     int
		col      int
		message  string
	}{
		{
			name:    "io",
			err:     fmt.Errorf("error reading file: %w", errors.New("no such file")),
			kind:    "io",
			message: "error reading file: no such file",
		},
		{
			name:    "syntax",
			err:     &syntax.Error{Line: 4, Col: 7, Msg: "expected ']'"},
			kind:    "syntax",
			line:    4,
			col:     7,
			message: "expected ']'",
		},
		{
			name:     "semantic in instance",
			err:      &InstanceError{Instance: inst, Err: &transform.SemanticError{Line: 3, Col: 2, Msg: "undeclared address y"}},
			kind:     "semantic",
			instance: "#3 [acquire | gpu]",
			line:     3,
			col:      2,
			message:  "undeclared address y",
		},
		{
			name:    "untemplated instance",
			err:     &InstanceError{Err: &transform.SemanticError{Line: 1, Msg: "register r0 is never loaded"}},
			kind:    "semantic",
			line:    1,
			message: "register r0 is never loaded",
		},
		{
			name:    "mapping",
			err:     fmt.Errorf("i3: %w", &emitter.MappingError{Kind: "scope", Value: "cluster"}),
			kind:    "mapping",
			message: "no Alloy mapping for scope cluster",
		},
		{
			name:    "checker",
			err:     &alloy.ToolError{ExitCode: 2, Stderr: "java: not found\n"},
			kind:    "checker",
			message: "checker exited with code 2: java: not found",
		},
		{
			name:    "template",
			err:     &template.Error{Line: 9, Msg: "template uses $2 but only 1 parameters are given"},
			kind:    "template",
			line:    9,
			message: "template uses $2 but only 1 parameters are given",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			d := Diagnose("t.litmus", tc.err)
			assert.Equal(t, "t.litmus", d.Filename)
			assert.Equal(t, tt.SeverityError, d.Severity)
			assert.Equal(t, tc.kind, d.Kind)
			assert.Equal(t, tc.instance, d.Instance)
			assert.Equal(t, tc.line, d.Line)
			assert.Equal(t, tc.col, d.Col)
			assert.Equal(t, tc.message, d.Message)
		})
	}
}
