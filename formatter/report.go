package formatter

import (
	"fmt"
	"strings"

	tt "github.com/gnoswap-labs/litmus/internal/types"
)

// GenerateFormattedOutcomes renders checker outcomes one per line,
// followed by their detail lines. Outcomes that match their
// expectation are green, broken ones red.
func GenerateFormattedOutcomes(outcomes []tt.Outcome) string {
	var builder strings.Builder
	for _, o := range outcomes {
		builder.WriteString(fileStyle.Sprint(location(o.Filename, o.Line, 0)))
		if o.Instance != "" {
			builder.WriteString(" " + noStyle.Sprint(o.Instance))
		}
		builder.WriteString(": ")

		style := noStyle
		switch {
		case o.Broken:
			style = errorStyle
		case !o.Informational:
			style = suggestionStyle
		}
		builder.WriteString(style.Sprintf("%s: %s", o.Command, o.Message))
		if o.Cached {
			builder.WriteString(lineStyle.Sprint(" (cached)"))
		}
		builder.WriteString("\n")

		for _, d := range o.Detail {
			builder.WriteString(lineStyle.Sprint("    | ") + noStyle.Sprintf("%s\n", d))
		}
	}
	return builder.String()
}

// Summary counts the outcomes and the broken expectations among them.
func Summary(outcomes []tt.Outcome) string {
	broken := 0
	for _, o := range outcomes {
		if o.Broken {
			broken++
		}
	}
	text := fmt.Sprintf("%d queries checked, %d broken expectations\n", len(outcomes), broken)
	if broken > 0 {
		return errorStyle.Sprint(text)
	}
	return suggestionStyle.Sprint(text)
}
