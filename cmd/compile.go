package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/gnoswap-labs/litmus/driver"
	"github.com/gnoswap-labs/litmus/formatter"
	"github.com/gnoswap-labs/litmus/internal"
	tt "github.com/gnoswap-labs/litmus/internal/types"
)

const stdinName = "<stdin>"

var (
	compileOutPath string
	godbolt        bool
)

var compileCmd = &cobra.Command{
	Use:   "compile [file]",
	Short: "Emit the Alloy specification of a litmus test without checking it",
	Long: `Emits the Alloy specification of a litmus test (stdin if no file is given).
Templated tests produce one specification per instance.
Example) litmus compile -o sb.als tests/sb.litmus`,
	Args: cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		name := stdinName
		var src []byte
		var err error
		if len(args) == 1 {
			name = args[0]
			src, err = os.ReadFile(name)
		} else {
			src, err = io.ReadAll(os.Stdin)
		}
		if err != nil {
			logger.Fatal("Failed to read input", zap.String("file", name), zap.Error(err))
		}

		engine, err := driver.New(loadConfig(), driver.EngineOptions{
			Skip:      skipInstances,
			Listing:   godbolt,
			NoChecker: true,
		}, logger)
		if err != nil {
			logger.Fatal("Failed to initialize engine", zap.Error(err))
		}

		out := io.Writer(os.Stdout)
		if compileOutPath != "" {
			f, err := os.Create(compileOutPath)
			if err != nil {
				logger.Fatal("Error creating output file", zap.Error(err))
			}
			defer f.Close()
			out = f
		}

		if err := runCompile(engine, name, string(src), godbolt, out); err != nil {
			d := internal.Diagnose(name, err)
			fmt.Fprint(os.Stderr, formatter.GenerateFormattedDiagnostics([]tt.Diagnostic{d}, formatter.NewSourceCode(string(src))))
			os.Exit(1)
		}
	},
}

func init() {
	compileCmd.Flags().StringVarP(&compileOutPath, "output", "o", "", "Output path (stdout if empty)")
	compileCmd.Flags().BoolVarP(&godbolt, "godbolt", "g", false, "Print a source-attributed listing instead of the specification")
	compileCmd.Flags().IntVarP(&skipInstances, "skip", "s", 0, "For templates, skip the first N instances")
}

type compiler interface {
	Compile(src string) ([]internal.Result, error)
}

// runCompile writes the specification, or the listing when godbolt is
// set, of every instance of src.
func runCompile(c compiler, name, src string, godbolt bool, out io.Writer) error {
	results, err := c.Compile(src)
	if err != nil {
		return err
	}

	for _, r := range results {
		if godbolt {
			fmt.Fprint(out, formatter.Godbolt(name, r.Listing, nil))
			continue
		}
		if len(results) > 1 || len(r.Instance.Params) > 0 {
			fmt.Fprintf(out, "// instance %s\n", r.Instance.Name())
		}
		fmt.Fprint(out, r.Spec)
	}
	return nil
}
