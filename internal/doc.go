// Package internal drives the compilation and checking of litmus test files.
//
// A litmus file passes through these stages, each in its own package:
//
// template: a source ending in a "$$" section is expanded into one
// instance per parameter list.
//
// syntax: each instance is tokenized and parsed into a parse tree.
//
// transform: the parse tree is validated and lowered into the litmus AST,
// assigning instruction identifiers and rejecting illegal qualifiers.
//
// emitter: the AST is written out as Alloy text after the memory model,
// followed by the sanity and verification commands.
//
// alloy: the text is piped to the checker and its report is parsed.
//
// Engine ties the stages together. Instances of a templated file share
// nothing, so Run checks them in parallel. Reports can be kept in a Cache
// keyed by the emitted text, and StartWatching re-runs tests as they are
// saved. Diagnose converts any stage error into a positioned Diagnostic.
//
// Usage:
//
//	runner, err := alloy.NewRunner("", "")
//	if err != nil {
//	    // handle error
//	}
//	engine := internal.NewEngine(model, runner, internal.Options{Jobs: 4}, logger)
//
//	outcomes, err := engine.Run(ctx, "tests/sb.litmus")
//	if err != nil {
//	    d := internal.Diagnose("tests/sb.litmus", err)
//	    // report d
//	}
package internal
