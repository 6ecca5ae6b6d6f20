package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/spigell/resume-matcher/internal/analysis"
)

var parseCmd = &cobra.Command{
	Use:   "parse [path|-]",
	Short: "Parse a saved analysis answer without contacting the service",
	Args:  cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		runParse(cmd, args)
	},
}

func init() {
	rootCmd.AddCommand(parseCmd)

	parseCmd.Flags().StringP("output", "o", OutputText, "output format: text, json or raw")
	parseCmd.Flags().BoolP("envelope", "e", false, `input is the endpoint's {"result": ...} json instead of plain text`)
}

func runParse(cmd *cobra.Command, args []string) {
	logger := newLogger()

	path := "-"
	if len(args) == 1 {
		path = args[0]
	}

	data, err := readInput(path, cmd.InOrStdin())
	if err != nil {
		logger.Fatal("reading the analysis answer", zap.Error(err))
	}

	raw := string(data)
	if envelope, _ := cmd.Flags().GetBool("envelope"); envelope {
		resp, err := analysis.DecodeResponse(data)
		if err != nil {
			logger.Fatal("decoding the analysis answer", zap.Error(err))
		}
		raw = resp.Result
	}

	output, _ := cmd.Flags().GetString("output")
	if err := printResult(cmd.OutOrStdout(), output, raw); err != nil {
		logger.Fatal("printing the result", zap.Error(err))
	}
}

func readInput(path string, stdin io.Reader) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(stdin)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %q: %w", path, err)
	}
	return data, nil
}
