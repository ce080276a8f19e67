package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/MeKo-Tech/pogo/internal/ocrapp"
	"github.com/MeKo-Tech/pogo/internal/utils"
)

// benchCmd wraps the adaptive controller's tuning state to print a report
// of how detector/recognizer parallelism settled for a given image
// (spec.md §4.6, EXPANSION C "Benchmark harness").
var benchCmd = &cobra.Command{
	Use:   "bench [file]",
	Short: "Run a warm-up pass and report adaptive parallelism tuning",
	Long: `Submits a single image repeatedly for a fixed duration, letting each
engine's adaptive controller settle on a parallelism level, then reports the
final max capacity and oscillation state per stage.

Examples:
  pogo bench sample.jpg
  pogo bench sample.jpg --duration 5s`,
	Args:         cobra.ExactArgs(1),
	SilenceUsage: true,
	RunE:         runBenchCmd,
}

func init() {
	rootCmd.AddCommand(benchCmd)
	benchCmd.Flags().Duration("duration", 3*time.Second, "how long to keep submitting before reporting")
}

func runBenchCmd(cmd *cobra.Command, args []string) error {
	duration, err := cmd.Flags().GetDuration("duration")
	if err != nil {
		return fmt.Errorf("read duration flag: %w", err)
	}

	path := args[0]
	if !utils.IsSupportedImage(path) {
		return fmt.Errorf("unsupported image format: %s", path)
	}
	img, _, err := utils.LoadImage(path)
	if err != nil {
		return fmt.Errorf("load %s: %w", path, err)
	}

	cfg := GetConfig()
	app, err := ocrapp.Build(cmd.Context(), cfg)
	if err != nil {
		return fmt.Errorf("build OCR pipeline: %w", err)
	}
	defer func() {
		if err := app.Close(); err != nil {
			fmt.Fprintf(os.Stderr, "error closing pipeline: %v\n", err)
		}
	}()

	ctx := cmd.Context()
	deadline := time.Now().Add(duration)
	for time.Now().Before(deadline) {
		seq, err := app.Pipeline.Submit(ctx, img)
		if err != nil {
			return fmt.Errorf("submit: %w", err)
		}
		if _, err := app.Pipeline.Await(ctx, seq); err != nil {
			return fmt.Errorf("await: %w", err)
		}
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, "stage,max_capacity,is_oscillating")
	for _, s := range app.TuningReport() {
		fmt.Fprintf(out, "%s,%d,%t\n", s.Stage, s.MaxCapacity, s.IsOscillating)
	}
	return nil
}
