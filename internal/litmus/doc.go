// Package litmus defines the abstract syntax tree of a litmus test.
//
// A litmus test is a short multi-threaded program written in a PTX-like
// assembly dialect. Every memory operation carries an ordering semantic,
// a scope and a memory proxy. The tree is built once by the transform
// package and consumed once by the emitter; nothing mutates it afterward.
//
// The tree has four closed families of nodes:
//   - Instruction: Load, Store, Atom, Fence, ProxyFence, AliasFence
//   - Value: NoValue, NamedValue, Integer, Arithmetic
//   - Condition: Equal, Not, And, Or
//   - qualifier enumerations: Semantic, Scope, Proxy, AtomicOp, AliasKind
//
// Each family is sealed by an unexported marker method so that only this
// package can add variants.
package litmus
