package emitter

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gnoswap-labs/litmus/internal/litmus"
	"github.com/gnoswap-labs/litmus/internal/transform"
)

const model = "// model"

func compile(t *testing.T, src string, opts Options) string {
	t.Helper()
	test, err := transform.Build(src, transform.Options{})
	require.NoError(t, err)
	out, err := Emit(model, test, opts)
	require.NoError(t, err)
	return out
}

func TestEmitEndToEnd(t *testing.T) {
	t.Parallel()
	src := `
.global x
d0.b0.t0 {
  st.relaxed.gpu [x], 1
}
d0.b1.t0 {
  ld.relaxed.gpu r1, [x] == 0
}
permit r1 == 0
`
	out := compile(t, src, Options{})

	expected := `// model
one sig x extends Address {}
fact { no x.alias }

// Thread d0_b0_t0
one sig d0 extends Device {}
one sig d0_b0 extends Block {} { this in d0.blocks }
one sig d0_b0_t0 extends Thread {} { this in d0_b0.threads }
// operation i0: st.relaxed.gpu.proxy_generic x, 1
one sig i0 extends Write {}
fact { i0 = d0_b0_t0.start }
fact { i0.scope in Device }
fact { i0.proxy = GenericProxy }
fact { i0.address = x }
fact { i0.value = 1 }
fact { no i0.~rmw }

// Thread d0_b1_t0
one sig d0_b1 extends Block {} { this in d0.blocks }
one sig d0_b1_t0 extends Thread {} { this in d0_b1.threads }
// operation i1: ld.relaxed.gpu.proxy_generic r1, x == 0
one sig i1 extends Read {}
fact { i1 = d0_b1_t0.start }
fact { i1.scope in Device }
fact { i1.proxy = GenericProxy }
fact { i1.address = x }
one sig r1 {
  value: one Int,
} {
  value = i1.value
}
pred r1_value { i1.value = 0 }
run sanity { ptx_mm } for 1 but 6 Int

run sanity_permit_command0 { } for 1 but 6 Int

run permit_command0 { ptx_mm and r1_value and ((r1.value = 0)) } for 1 but 6 Int

`
	assert.Equal(t, expected, out)
}

func TestEmitDeterministic(t *testing.T) {
	t.Parallel()
	src := `
.global x
.global y
d0.b0.t0 { st.relaxed.gpu [x], 1; ld.acquire.gpu r0, [y] == 0 }
d0.b1.t0 { st.relaxed.gpu [y], 1; ld.acquire.gpu r1, [x] == 0 }
d1.b0.t0 { atom.add.acq_rel.sys r2, [x], 1 == 1 }
permit r0 == 0 && r1 == 0
assert r2 != 5
`
	test, err := transform.Build(src, transform.Options{})
	require.NoError(t, err)

	first, err := Emit(model, test, Options{})
	require.NoError(t, err)
	for i := 0; i < 20; i++ {
		again, err := Emit(model, test, Options{})
		require.NoError(t, err)
		require.Equal(t, first, again)
	}
	assert.Less(t,
		strings.Index(first, "pred r0_value"),
		strings.Index(first, "pred r1_value"),
		"register predicates keep declaration order")
	assert.Contains(t, first, "run permit_command0 { ptx_mm and r0_value and r1_value and r2_value and (((r0.value = 0) and (r1.value = 0))) } for 1 but 6 Int")
	assert.Contains(t, first, "check assert_command1 { ptx_mm => r0_value => r1_value => r2_value => (not (r2.value = 5)) } for 1 but 6 Int")
	assert.Contains(t, first, "run sanity_assert_command1 { } for 1 but 6 Int")
}

func TestEmitSanityIgnoresOutcome(t *testing.T) {
	t.Parallel()
	// Store buffering with the forbidden outcome as expected values: the
	// register predicates together are unsatisfiable, the sanity run is not.
	src := `
.global x
.global y
d0.b0.t0 { st.release.gpu [x], 1; ld.acquire.gpu r0, [y] == 0 }
d0.b1.t0 { st.release.gpu [y], 1; ld.acquire.gpu r1, [x] == 0 }
assert r0 == 0 && r1 == 0 sb
`
	out := compile(t, src, Options{})

	sanity := "run sanity_sb { } for 1 but 6 Int\n"
	assert.Contains(t, out, sanity)
	assert.Contains(t, out, "check sb { ptx_mm => r0_value => r1_value => (((r0.value = 0) and (r1.value = 0))) } for 1 but 6 Int")

	other := compile(t, strings.Replace(src, "assert r0 == 0 && r1 == 0 sb", "permit r1 != 7 sb", 1), Options{})
	assert.Contains(t, other, sanity, "sanity text depends only on the command name")

	for _, line := range strings.Split(out, "\n") {
		if strings.HasPrefix(line, "run sanity_") {
			assert.NotContains(t, line, "_value")
			assert.NotContains(t, line, "ptx_mm")
		}
	}
}

func TestEmitThreadScopeDefault(t *testing.T) {
	t.Parallel()
	src := `
.global x
d0.b0.t0 {
  ld.acquire r1, [x]
  st.release [x], 1
  atom.add.relaxed r2, [x], 1
  fence.sc
}
`
	out := compile(t, src, Options{})

	assert.Contains(t, out, "one sig i0 extends ReadAcquire {}\nfact { i0 = d0_b0_t0.start }\nfact { i0.scope in Thread }")
	assert.Contains(t, out, "one sig i1 extends WriteRelease {}\nfact { i1 = i0.po }\nfact { i1.scope in Thread }")
	assert.Contains(t, out, "fact { i2_r.scope in Thread }")
	assert.Contains(t, out, "fact { i2_w.scope in Thread }")
	assert.Contains(t, out, "one sig i3 extends FenceSC {}")
	assert.Contains(t, out, "fact { i3.scope in Thread }")
}

func TestThreadNameCollision(t *testing.T) {
	t.Parallel()
	e := New(model, Options{})
	e.threads["d0_b0_t0"] = litmus.ThreadID{Device: 9}

	err := e.threadHeader(litmus.ThreadID{}, 7)
	var serr *transform.SemanticError
	require.ErrorAs(t, err, &serr)
	assert.Equal(t, 7, serr.Line)
	assert.Equal(t, "line 7: thread d0_b0_t0 multiply defined", err.Error())
}

func TestEmitAliases(t *testing.T) {
	t.Parallel()
	out := compile(t, ".global x\n.global y virtually aliases x\n.global z physically aliases x\n", Options{})

	assert.Contains(t, out, "one sig x extends Address {}\nfact { no x.alias }\n")
	assert.Contains(t, out, "fun y : Address { x }\n")
	assert.NotContains(t, out, "one sig y extends Address")
	assert.Contains(t, out, "one sig z extends Address {}\nfact { z.alias = x }\n")
}

func TestEmitAtomDecomposition(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name      string
		inst      string
		read      string
		write     string
		value     string
		predicate string
	}{
		{
			name:      "add acq_rel",
			inst:      "atom.add.acq_rel.gpu r0, [x], 2 == 1",
			read:      "ReadAcquire",
			write:     "WriteRelease",
			value:     "fun/add[i0_r.value, 2]",
			predicate: "pred r0_value { i0_r.value = 1 }",
		},
		{
			name:  "sub acquire",
			inst:  "atom.sub.acquire.gpu r0, [x], 1",
			read:  "ReadAcquire",
			write: "Write",
			value: "fun/sub[i0_r.value, 1]",
		},
		{
			name:  "exch release",
			inst:  "atom.exch.release.gpu r0, [x], 3",
			read:  "Read",
			write: "WriteRelease",
			value: "3",
		},
		{
			name:  "min relaxed",
			inst:  "atom.min.relaxed.gpu r0, [x], 4",
			read:  "Read",
			write: "Write",
			value: "(i0_r.value < 4 => i0_r.value else 4)",
		},
		{
			name:  "max reduction",
			inst:  "red.max.gpu [x], 5",
			read:  "Read",
			write: "Write",
			value: "(i0_r.value > 5 => i0_r.value else 5)",
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			out := compile(t, ".global x\nd0.b0.t0 {\n  "+tt.inst+"\n}\n", Options{})

			read := strings.Index(out, "one sig i0_r extends "+tt.read+" {}")
			write := strings.Index(out, "one sig i0_w extends "+tt.write+" {}")
			require.NotEqual(t, -1, read)
			require.NotEqual(t, -1, write)
			assert.Less(t, read, write, "the read precedes its paired write")

			assert.Contains(t, out, "fact { i0_w = i0_r.po }")
			assert.Contains(t, out, "fact { i0_r.address = x }")
			assert.Contains(t, out, "fact { i0_w.address = x }")
			assert.Contains(t, out, "fact { i0_r.scope in Device }")
			assert.Contains(t, out, "fact { i0_w.scope in Device }")
			assert.Contains(t, out, "fact { i0_w.value = "+tt.value+" }")
			assert.Contains(t, out, "fact { some i0_w.~rmw }")
			assert.Equal(t, 1, strings.Count(out, "extends Write"), "exactly one write sub-operation")
			if tt.predicate != "" {
				assert.Contains(t, out, tt.predicate)
			} else {
				assert.Contains(t, out, "// no specified return value")
			}
		})
	}
}

func TestEmitProgramOrder(t *testing.T) {
	t.Parallel()
	src := `
.global x
d0.b0.t0 {
  st [x], 1
  fence.sc.cta
  fence.proxy.surface
}
d0.b1.t0 { ld r0, [x] }
d0.b0.t0 {
  fence.proxy.alias
}
`
	out := compile(t, src, Options{})

	assert.Contains(t, out, "fact { i0 = d0_b0_t0.start }")
	assert.Contains(t, out, "fact { i1 = i0.po }")
	assert.Contains(t, out, "fact { i2 = i1.po }")
	assert.Contains(t, out, "fact { i3 = d0_b1_t0.start }")
	assert.Contains(t, out, "fact { i4 = i2.po }", "a continued thread keeps its chain")
	assert.Contains(t, out, "// (continued...)")
	assert.Equal(t, 1, strings.Count(out, "one sig d0_b0_t0 extends Thread"))
	assert.Equal(t, 1, strings.Count(out, "one sig d0 extends Device"))

	assert.Contains(t, out, "fact { i0.scope in Thread }")
	assert.Contains(t, out, "one sig i1 extends FenceSC {}")
	assert.Contains(t, out, "fact { i1.scope in Block }")
	assert.Contains(t, out, "one sig i2 extends ProxyFence {}")
	assert.Contains(t, out, "fact { i2.proxy_fence_proxy = SurfaceProxy }")
	assert.Contains(t, out, "one sig i4 extends AliasFence {}")
	assert.Contains(t, out, "// no specified return value")
}

func TestEmitOptions(t *testing.T) {
	t.Parallel()
	out := compile(t, ".global x\nd0.b0.t0 { ld r0, [x] }\ncheck r0 == 0\n",
		Options{Marker: "my_mm", Scope: 3, IntBits: 8})

	assert.Contains(t, out, "run sanity { my_mm } for 3 but 8 Int\n\n")
	assert.Contains(t, out, "run check_command0 { my_mm and ((r0.value = 0)) } for 3 but 8 Int\n\n")
}

func TestEmitListing(t *testing.T) {
	t.Parallel()
	listing := &Listing{}
	compile(t, ".global x\nd0.b0.t0 {\n  st.release.sys [x], 1\n}\npermit 1 == 1\n", Options{Listing: listing})
	assert.Equal(t, []int{2, 3, 5}, listing.Lines())
	require.NotEmpty(t, listing.Entries)
	assert.Equal(t, Entry{Line: 3, Text: "st.release.sys.proxy_generic x, 1"}, listing.Entries[1])
}

func TestMappingsCoverEveryValue(t *testing.T) {
	t.Parallel()
	for _, s := range litmus.Scopes() {
		_, err := scopeSet(s)
		assert.NoError(t, err, s.String())
	}
	for _, p := range litmus.Proxies() {
		_, err := proxySig(p)
		assert.NoError(t, err, p.String())
	}
	for _, op := range litmus.AtomicOps() {
		_, err := combine(op, "a", "b")
		assert.NoError(t, err, op.String())
	}
}

func TestMappingErrors(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		fn   func() error
		msg  string
	}{
		{
			name: "acquire store",
			fn: func() error {
				_, err := writeKind(litmus.Acquire)
				return err
			},
			msg: "no Alloy mapping for store semantic acquire",
		},
		{
			name: "release load",
			fn: func() error {
				_, err := readKind(litmus.Release)
				return err
			},
			msg: "no Alloy mapping for load semantic release",
		},
		{
			name: "relaxed fence",
			fn: func() error {
				_, err := fenceKind(litmus.Relaxed)
				return err
			},
			msg: "no Alloy mapping for fence semantic relaxed",
		},
		{
			name: "sc atomic",
			fn: func() error {
				_, _, err := splitAtomic(litmus.SC)
				return err
			},
			msg: "no Alloy mapping for atomic semantic sc",
		},
		{
			name: "unknown scope",
			fn: func() error {
				_, err := scopeSet(litmus.Scope(42))
				return err
			},
			msg: "no Alloy mapping for scope ?",
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			err := tt.fn()
			var merr *MappingError
			require.ErrorAs(t, err, &merr)
			assert.EqualError(t, err, tt.msg)
		})
	}
}

func TestEmitRejectsUnmappedInstruction(t *testing.T) {
	t.Parallel()
	test := &litmus.Test{
		Addresses: []*litmus.Address{{Name: "x", Space: "global"}},
		Threads: []*litmus.Thread{{
			Insts: []litmus.Instruction{&litmus.Store{Name: "i0", Sem: litmus.SC, Dst: "x", Value: litmus.Int(1)}},
		}},
	}
	_, err := Emit(model, test, Options{})
	var merr *MappingError
	require.ErrorAs(t, err, &merr)
	assert.Equal(t, "store semantic", merr.Kind)
	assert.Contains(t, err.Error(), "i0: ")
}
