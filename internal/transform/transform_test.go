package transform

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gnoswap-labs/litmus/internal/litmus"
)

const storeBuffering = `
.global x
.global y

d0.b0.t0 {
  st.relaxed.gpu [x], 1
  fence.sc.gpu
  ld.relaxed.gpu r0, [y] == 0
}

d0.b1.t0 {
  st.relaxed.gpu [y], 1
  fence.sc.gpu
  ld.relaxed.gpu r1, [x] == 0
}

assert not (r0 == 0 and r1 == 0)
permit r0 == 1
check r1 != 1 flip
`

func TestBuild(t *testing.T) {
	t.Parallel()
	test, err := Build(storeBuffering, Options{})
	require.NoError(t, err)

	require.Len(t, test.Addresses, 2)
	require.Len(t, test.Threads, 2)

	insts := test.Instructions()
	require.Len(t, insts, 6)
	for i, inst := range insts {
		assert.Equal(t, "i"+string(rune('0'+i)), inst.ID(), "identifiers are global and follow encounter order")
	}

	st, ok := insts[0].(*litmus.Store)
	require.True(t, ok)
	assert.Equal(t, litmus.Relaxed, st.Sem)
	assert.Equal(t, litmus.GPU, st.Scope)
	assert.Equal(t, litmus.Generic, st.Proxy)
	assert.Equal(t, "x", st.Dst)
	assert.Equal(t, litmus.Int(1), st.Value)
	assert.Equal(t, 6, st.Line)

	fence, ok := insts[1].(*litmus.Fence)
	require.True(t, ok)
	assert.Equal(t, litmus.SC, fence.Sem)

	ld, ok := insts[5].(*litmus.Load)
	require.True(t, ok)
	assert.Equal(t, "r1", ld.Dst)
	assert.Equal(t, litmus.Int(0), ld.Return)

	require.Len(t, test.Commands, 3)
	assert.Equal(t, "assert_command0", test.Commands[0].Name)
	assert.Equal(t, litmus.ExpectImpossible, test.Commands[0].Expect)
	assert.Equal(t, litmus.Not{X: litmus.And{
		A: litmus.Equal{A: litmus.Reg("r0"), B: litmus.Int(0)},
		B: litmus.Equal{A: litmus.Reg("r1"), B: litmus.Int(0)},
	}}, test.Commands[0].Cond)

	assert.Equal(t, "permit_command1", test.Commands[1].Name, "one counter is shared by every command kind")
	assert.Equal(t, litmus.ExpectReachable, test.Commands[1].Expect)

	assert.Equal(t, "check_flip", test.Commands[2].Name)
	assert.Equal(t, litmus.Not{X: litmus.Equal{A: litmus.Reg("r1"), B: litmus.Int(1)}}, test.Commands[2].Cond)
}

func TestBuildNormalisation(t *testing.T) {
	t.Parallel()
	src := `
.global x
.texture t
.surface s
.const c
d0.b0.t0 {
  st [x], 1
  ld.volatile r0, [x]
  tld r1, [t]
  suld r2, [s]
  ldc r3, [c]
  sust.release.cta [s], 2
  red.add.gpu [x], 1
  suatom.exch.acq_rel.sys r4, [s], 3 == 2
  fence.gpu
  fence.proxy.texture
  fence.proxy.alias
}
`
	test, err := Build(src, Options{})
	require.NoError(t, err)
	insts := test.Instructions()
	require.Len(t, insts, 11)

	st := insts[0].(*litmus.Store)
	assert.Equal(t, litmus.Weak, st.Sem, "absent semantic defaults to weak")
	assert.Equal(t, litmus.ScopeNone, st.Scope)

	vol := insts[1].(*litmus.Load)
	assert.Equal(t, litmus.Relaxed, vol.Sem)
	assert.Equal(t, litmus.Sys, vol.Scope)
	assert.True(t, litmus.IsNoValue(vol.Return))

	assert.Equal(t, litmus.Texture, insts[2].(*litmus.Load).Proxy)
	assert.Equal(t, litmus.Surface, insts[3].(*litmus.Load).Proxy)
	assert.Equal(t, litmus.Constant, insts[4].(*litmus.Load).Proxy)
	assert.Equal(t, litmus.Surface, insts[5].(*litmus.Store).Proxy)

	red := insts[6].(*litmus.Atom)
	assert.True(t, red.IsReduction())
	assert.Equal(t, litmus.Relaxed, red.Sem)
	assert.Equal(t, litmus.OpAdd, red.AtomicOp)
	assert.True(t, litmus.IsNoValue(red.Return))

	atom := insts[7].(*litmus.Atom)
	assert.Equal(t, "r4", atom.Dst)
	assert.Equal(t, litmus.Surface, atom.Proxy)
	assert.Equal(t, litmus.AcqRel, atom.Sem)
	assert.Equal(t, litmus.Int(2), atom.Return)

	assert.Equal(t, litmus.AcqRel, insts[8].(*litmus.Fence).Sem)
	assert.Equal(t, litmus.Texture, insts[9].(*litmus.ProxyFence).Proxy)
	assert.IsType(t, &litmus.AliasFence{}, insts[10])
}

func TestBuildDefaultsToThreadScope(t *testing.T) {
	t.Parallel()
	src := `
.global x
d0.b0.t0 {
  ld.acquire r1, [x]
  st.release [x], 1
  atom.add.relaxed r2, [x], 1
  red.add [x], 1
  fence.sc
}
`
	test, err := Build(src, Options{})
	require.NoError(t, err)

	insts := test.Instructions()
	require.Len(t, insts, 5)
	ld := insts[0].(*litmus.Load)
	assert.Equal(t, litmus.Acquire, ld.Sem)
	assert.Equal(t, litmus.ScopeNone, ld.Scope)
	st := insts[1].(*litmus.Store)
	assert.Equal(t, litmus.Release, st.Sem)
	assert.Equal(t, litmus.ScopeNone, st.Scope)
	assert.Equal(t, litmus.ScopeNone, insts[2].(*litmus.Atom).Scope)
	assert.Equal(t, litmus.ScopeNone, insts[3].(*litmus.Atom).Scope)
	fence := insts[4].(*litmus.Fence)
	assert.Equal(t, litmus.SC, fence.Sem)
	assert.Equal(t, litmus.ScopeNone, fence.Scope)
}

func TestBuildAliases(t *testing.T) {
	t.Parallel()
	test, err := Build(".global x\n.global y virtually aliases x\n.global z physically aliases x\n", Options{})
	require.NoError(t, err)
	assert.Equal(t, litmus.AliasVirtual, test.Address("y").Alias)
	assert.Equal(t, "x", test.Address("y").Target)
	assert.Equal(t, litmus.AliasPhysical, test.Address("z").Alias)
	assert.Equal(t, litmus.AliasNone, test.Address("x").Alias)
}

func TestBuildErrors(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name    string
		input   string
		line    int
		message string
	}{
		{
			name:    "weak with scope",
			input:   ".global x\nd0.b0.t0 {\n  st.weak.gpu [x], 1\n}",
			line:    3,
			message: "weak operations cannot have a scope",
		},
		{
			name:    "implicit weak with scope",
			input:   ".global x\nd0.b0.t0 {\n  ld.cta r0, [x]\n}",
			line:    3,
			message: "weak operations cannot have a scope",
		},
		{
			name:    "volatile with scope",
			input:   ".global x\nd0.b0.t0 {\n\n  ld.volatile.sys r0, [x]\n}",
			line:    4,
			message: "volatile operations cannot have a scope",
		},
		{
			name:    "volatile atomic",
			input:   ".global x\nd0.b0.t0 {\n  atom.add.volatile.gpu r0, [x], 1\n}",
			line:    3,
			message: "illegal modifier .volatile",
		},
		{
			name:    "volatile reduction",
			input:   ".global x\nd0.b0.t0 {\n  red.add.volatile.gpu [x], 1\n}",
			line:    3,
			message: "illegal modifier .volatile",
		},
		{
			name:    "volatile fence",
			input:   "d0.b0.t0 {\n  fence.volatile.gpu\n}",
			line:    2,
			message: "illegal modifier .volatile",
		},
		{
			name:    "release load",
			input:   ".global x\nd0.b0.t0 { ld.release.gpu r0, [x] }",
			line:    2,
			message: "illegal modifier .release on ld",
		},
		{
			name:    "unknown mnemonic",
			input:   ".global x\nd0.b0.t0 { mov r0, 1 }",
			line:    2,
			message: "unknown operation mov",
		},
		{
			name:    "atom without operation",
			input:   ".global x\nd0.b0.t0 { atom.gpu r0, [x], 1 }",
			line:    2,
			message: "requires an atomic operation",
		},
		{
			name:    "undeclared address",
			input:   "d0.b0.t0 { st [x], 1 }",
			line:    1,
			message: "undeclared address x",
		},
		{
			name:    "register loaded twice",
			input:   ".global x\nd0.b0.t0 {\n  ld r0, [x]\n  ld r0, [x]\n}",
			line:    4,
			message: "register r0 already loaded on line 3",
		},
		{
			name:    "unbound register in command",
			input:   ".global x\nd0.b0.t0 { ld r0, [x] }\npermit r1 == 0",
			line:    3,
			message: "register r1 is never loaded",
		},
		{
			name:    "integer out of range",
			input:   ".global x\nd0.b0.t0 { st [x], 32 }",
			line:    2,
			message: "does not fit in 6-bit Int",
		},
		{
			name:    "duplicate address",
			input:   ".global x\n.shared x",
			line:    2,
			message: "address x declared twice",
		},
		{
			name:    "alias of undeclared address",
			input:   ".global y virtually aliases x",
			line:    1,
			message: "aliases undeclared address x",
		},
		{
			name:    "address shadows generated name",
			input:   ".global i0",
			line:    1,
			message: "collides with a generated name",
		},
		{
			name:    "duplicate command name",
			input:   ".global x\nd0.b0.t0 { ld r0, [x] }\npermit r0 == 0 a\nassert r0 == 0 a",
			line:    4,
			message: "command a defined twice",
		},
		{
			name:    "store with expected value",
			input:   ".global x\nd0.b0.t0 { st [x], 1 == 1 }",
			line:    2,
			message: "does not return a value",
		},
		{
			name:    "scoped proxy fence",
			input:   "d0.b0.t0 { fence.proxy.texture.gpu }",
			line:    1,
			message: "fence.proxy takes no semantic or scope",
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := Build(tt.input, Options{})
			require.Error(t, err)
			var serr *SemanticError
			require.ErrorAs(t, err, &serr)
			assert.Equal(t, tt.line, serr.Line)
			assert.Contains(t, serr.Msg, tt.message)
		})
	}
}

func TestSemanticErrorQuotesSource(t *testing.T) {
	t.Parallel()
	_, err := Build(".global x\nd0.b0.t0 {\n  st.weak.gpu [x], 1\n}", Options{})
	require.Error(t, err)
	assert.Equal(t, "line 3: 'st.weak.gpu [x], 1': weak operations cannot have a scope", err.Error())
}

func TestIntBits(t *testing.T) {
	t.Parallel()
	src := ".global x\nd0.b0.t0 { st [x], 100 }"
	_, err := Build(src, Options{})
	require.Error(t, err)

	_, err = Build(src, Options{IntBits: 8})
	assert.NoError(t, err)
}
