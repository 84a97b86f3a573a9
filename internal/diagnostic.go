package internal

import (
	"errors"

	"github.com/gnoswap-labs/litmus/internal/alloy"
	"github.com/gnoswap-labs/litmus/internal/emitter"
	"github.com/gnoswap-labs/litmus/internal/syntax"
	"github.com/gnoswap-labs/litmus/internal/template"
	"github.com/gnoswap-labs/litmus/internal/transform"
	tt "github.com/gnoswap-labs/litmus/internal/types"
)

// Diagnose turns a pipeline error into a Diagnostic for filename,
// recovering the source position when the error carries one.
func Diagnose(filename string, err error) tt.Diagnostic {
	d := tt.Diagnostic{
		Kind:     "io",
		Filename: filename,
		Message:  err.Error(),
		Severity: tt.SeverityError,
	}

	var instErr *InstanceError
	if errors.As(err, &instErr) && len(instErr.Instance.Params) > 0 {
		d.Instance = instErr.Instance.Name()
	}

	var (
		synErr  *syntax.Error
		semErr  *transform.SemanticError
		mapErr  *emitter.MappingError
		toolErr *alloy.ToolError
		tmplErr *template.Error
	)
	switch {
	case errors.As(err, &synErr):
		d.Kind, d.Line, d.Col, d.Message = "syntax", synErr.Line, synErr.Col, synErr.Msg
	case errors.As(err, &semErr):
		d.Kind, d.Line, d.Col, d.Message = "semantic", semErr.Line, semErr.Col, semErr.Msg
	case errors.As(err, &mapErr):
		d.Kind, d.Message = "mapping", mapErr.Error()
	case errors.As(err, &toolErr):
		d.Kind, d.Message = "checker", toolErr.Error()
	case errors.As(err, &tmplErr):
		d.Kind, d.Line, d.Message = "template", tmplErr.Line, tmplErr.Msg
	}
	return d
}
