package formatter

import (
	"fmt"
	"strings"

	"github.com/gnoswap-labs/litmus/internal/emitter"
	tt "github.com/gnoswap-labs/litmus/internal/types"
)

// Godbolt renders a listing as assembler-style text: a .file directive
// naming the source, then a .loc directive ahead of every fragment tied
// to a source line. Compiler explorers use the directives to highlight
// which source line produced which output.
func Godbolt(name string, listing *emitter.Listing, outcomes []tt.Outcome) string {
	var b strings.Builder
	fmt.Fprintf(&b, ".file 1 \"%s\"\n", name)
	if listing != nil {
		for _, e := range listing.Entries {
			loc(&b, e.Line, e.Text)
		}
	}
	if len(outcomes) == 0 {
		return b.String()
	}

	b.WriteString("\n// Launching Alloy...\n\n")
	for _, o := range outcomes {
		loc(&b, o.Line, o.Command+": "+o.Message)
		for _, d := range o.Detail {
			loc(&b, o.Line, "\t"+d)
		}
	}
	return b.String()
}

func loc(b *strings.Builder, line int, text string) {
	if line > 0 {
		fmt.Fprintf(b, ".loc 1 %d 1\n", line)
	}
	b.WriteString(text + "\n")
}
