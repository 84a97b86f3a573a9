package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/gnoswap-labs/litmus/driver"
	"github.com/gnoswap-labs/litmus/formatter"
	tt "github.com/gnoswap-labs/litmus/internal/types"
)

var (
	skipInstances int
	noCache       bool
	checkJSON     bool
	jsonOutPath   string
)

var checkCmd = &cobra.Command{
	Use:   "check [paths...]",
	Short: "Compile litmus tests and run the Alloy checker on them",
	Run: func(cmd *cobra.Command, args []string) {
		if len(args) == 0 {
			fmt.Println("error: Please provide file or directory paths")
			os.Exit(1)
		}

		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()

		config := loadConfig()
		if noCache {
			config.CacheDir = ""
		}
		engine, err := driver.New(config, driver.EngineOptions{Skip: skipInstances}, logger)
		if err != nil {
			logger.Fatal("Failed to initialize engine", zap.Error(err))
		}

		opts := driver.Options{Workers: config.Jobs}
		if !quiet && !checkJSON {
			opts.Progress = os.Stderr
		}
		if !runCheck(ctx, logger, engine, args, opts, os.Stdout, checkJSON, jsonOutPath) {
			os.Exit(1)
		}
	},
}

func init() {
	checkCmd.Flags().IntVarP(&skipInstances, "skip", "s", 0, "For templates, skip the first N instances")
	checkCmd.Flags().BoolVar(&noCache, "no-cache", false, "Ignore cached checker reports")
	checkCmd.Flags().BoolVar(&checkJSON, "json", false, "Output results in JSON format")
	checkCmd.Flags().StringVarP(&jsonOutPath, "output", "o", "", "Output path (when using JSON)")
}

// runCheck checks paths and prints the results. It reports whether
// every test compiled and every expectation held.
func runCheck(ctx context.Context, logger *zap.Logger, engine driver.Engine, paths []string, opts driver.Options, out io.Writer, isJSON bool, jsonOutput string) bool {
	result, err := driver.ProcessFiles(ctx, logger, engine, paths, driver.ProcessFile, opts)
	if err != nil {
		logger.Error("Error processing files", zap.Error(err))
	}

	if isJSON {
		if err := writeJSON(result, out, jsonOutput); err != nil {
			logger.Error("Error writing JSON output", zap.Error(err))
			return false
		}
	} else {
		printResult(logger, result, out)
	}
	return err == nil && !result.Failed()
}

func printResult(logger *zap.Logger, result *driver.Result, out io.Writer) {
	printDiagnostics(logger, result.Diagnostics, out)
	fmt.Fprint(out, formatter.GenerateFormattedOutcomes(result.Outcomes))
	fmt.Fprint(out, formatter.Summary(result.Outcomes))
}

func printDiagnostics(logger *zap.Logger, diags []tt.Diagnostic, out io.Writer) {
	byFile := make(map[string][]tt.Diagnostic)
	for _, d := range diags {
		byFile[d.Filename] = append(byFile[d.Filename], d)
	}

	sortedFiles := make([]string, 0, len(byFile))
	for filename := range byFile {
		sortedFiles = append(sortedFiles, filename)
	}
	sort.Strings(sortedFiles)

	for _, filename := range sortedFiles {
		source, err := formatter.ReadSourceCode(filename)
		if err != nil {
			logger.Debug("Error reading source file", zap.String("file", filename), zap.Error(err))
		}
		fmt.Fprint(out, formatter.GenerateFormattedDiagnostics(byFile[filename], source))
	}
}

type jsonResult struct {
	Outcomes    []tt.Outcome    `json:"outcomes"`
	Diagnostics []tt.Diagnostic `json:"diagnostics"`
}

func writeJSON(result *driver.Result, out io.Writer, path string) error {
	d, err := json.MarshalIndent(jsonResult{Outcomes: result.Outcomes, Diagnostics: result.Diagnostics}, "", "  ")
	if err != nil {
		return err
	}
	d = append(d, '\n')

	if path == "" {
		_, err = out.Write(d)
		return err
	}
	return os.WriteFile(path, d, 0o644)
}
