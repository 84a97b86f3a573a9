package formatter

import (
	"os"
	"strings"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"

	"github.com/gnoswap-labs/litmus/internal/emitter"
	tt "github.com/gnoswap-labs/litmus/internal/types"
)

func TestMain(m *testing.M) {
	color.NoColor = true
	os.Exit(m.Run())
}

const source = `.global x
d0.b0.t0 {
  st.weak.gpu [x], 1
}
`

func TestGenerateFormattedDiagnostics(t *testing.T) {
	t.Parallel()
	code := NewSourceCode(source)

	diags := []tt.Diagnostic{
		{
			Kind:     "semantic",
			Filename: "sb.litmus",
			Line:     3,
			Col:      3,
			Message:  "weak operations cannot have a scope",
		},
		{
			Kind:     "syntax",
			Filename: "sb.litmus",
			Line:     3,
			Col:      11,
			Message:  "unknown qualifier",
			Instance: "#2 [weak]",
		},
	}

	expected := `error: semantic
 --> sb.litmus:3:3
  |
3 | st.weak.gpu [x], 1
  | ~~~~~~~~~~~~~~~~~~
  = weak operations cannot have a scope

error: syntax
 --> sb.litmus:3:11
  |
3 | st.weak.gpu [x], 1
  |         ~~~~~~~~~~
  = unknown qualifier
  = note: in template instance #2 [weak]

`

	assert.Equal(t, expected, GenerateFormattedDiagnostics(diags, code))
}

func TestGenerateFormattedDiagnosticsWithoutSource(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		diag     tt.Diagnostic
		snippet  *SourceCode
		expected string
	}{
		{
			name: "checker",
			diag: tt.Diagnostic{Kind: KindChecker, Filename: "mp.litmus", Message: "checker exited with code 1"},
			expected: `error: checker
 --> mp.litmus
  = checker exited with code 1

`,
		},
		{
			name:    "line out of range",
			diag:    tt.Diagnostic{Kind: "semantic", Filename: "mp.litmus", Line: 40, Message: "register r0 is never loaded"},
			snippet: NewSourceCode(source),
			expected: `error: semantic
  --> mp.litmus:40
   = register r0 is never loaded

`,
		},
		{
			name: "warning",
			diag: tt.Diagnostic{Kind: KindIO, Filename: "x.litmus", Message: "skipped", Severity: tt.SeverityWarning},
			expected: `warning: io
 --> x.litmus
  = skipped

`,
		},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tc.expected, GenerateFormattedDiagnostics([]tt.Diagnostic{tc.diag}, tc.snippet))
		})
	}
}

func TestUnderlineWithTabs(t *testing.T) {
	t.Parallel()
	lines := []string{"\tld.relaxed.gpu r0, [x]"}
	got := underlineAndMessage("oops", "  ", 1, 17, lines)
	assert.Equal(t, "  | "+strings.Repeat(" ", 15)+"~~~~~~~\n  = oops\n", got)
}

func TestGenerateFormattedOutcomes(t *testing.T) {
	t.Parallel()
	outcomes := []tt.Outcome{
		{Filename: "sb.litmus", Line: 9, Command: "sanity_sb", Sanity: true, SAT: true, Informational: true, Message: "SAT"},
		{Filename: "sb.litmus", Line: 9, Command: "sb", SAT: true, Message: "SAT, outcome permitted, matches expectation"},
		{
			Filename: "sb.litmus",
			Instance: "#2 [acquire]",
			Line:     10,
			Command:  "mp",
			SAT:      true,
			Broken:   true,
			Message:  "SAT, assertion violated, breaks expectation",
			Detail:   []string{"value=1"},
			Cached:   true,
		},
	}

	expected := `sb.litmus:9: sanity_sb: SAT
sb.litmus:9: sb: SAT, outcome permitted, matches expectation
sb.litmus:10 #2 [acquire]: mp: SAT, assertion violated, breaks expectation (cached)
    | value=1
`
	assert.Equal(t, expected, GenerateFormattedOutcomes(outcomes))
	assert.Equal(t, "3 queries checked, 1 broken expectations\n", Summary(outcomes))
	assert.Equal(t, "0 queries checked, 0 broken expectations\n", Summary(nil))
}

func TestGodbolt(t *testing.T) {
	t.Parallel()
	listing := &emitter.Listing{Entries: []emitter.Entry{
		{Line: 2, Text: "\n// Thread d0_b0_t0"},
		{Line: 3, Text: "st.weak.proxy_generic x, 1"},
		{Text: "\nrun sanity { ptx_mm } for 1 but 6 Int"},
	}}

	t.Run("listing only", func(t *testing.T) {
		t.Parallel()
		expected := `.file 1 "sb.litmus"
.loc 1 2 1

// Thread d0_b0_t0
.loc 1 3 1
st.weak.proxy_generic x, 1

run sanity { ptx_mm } for 1 but 6 Int
`
		assert.Equal(t, expected, Godbolt("sb.litmus", listing, nil))
	})

	t.Run("with outcomes", func(t *testing.T) {
		t.Parallel()
		outcomes := []tt.Outcome{
			{Line: 5, Command: "sb", Message: "SAT, assertion violated, breaks expectation", Detail: []string{"value=1"}},
			{Command: "stray", Message: "SAT"},
		}
		expected := `.file 1 "sb.litmus"

// Launching Alloy...

.loc 1 5 1
sb: SAT, assertion violated, breaks expectation
.loc 1 5 1
	value=1
stray: SAT
`
		assert.Equal(t, expected, Godbolt("sb.litmus", nil, outcomes))
	})
}
