package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/MeKo-Tech/pogo/internal/ocrapp"
	"github.com/MeKo-Tech/pogo/internal/resultfmt"
	"github.com/MeKo-Tech/pogo/internal/utils"
)

const (
	outputFormatJSON = "json"
	outputFormatCSV  = "csv"
	outputFormatText = "text"
)

// imageCmd represents the image command.
var imageCmd = &cobra.Command{
	Use:   "image",
	Short: "Process images for OCR text detection and recognition",
	Long: `Process one or more image files to extract text using OCR.

Supported formats: JPEG, PNG, BMP, TIFF

Examples:
  pogo image photo.jpg
  pogo image *.png --format json
  pogo image document.jpg --output results.json`,
	Args:         cobra.ArbitraryArgs,
	SilenceUsage: true,
	RunE:         runImageCmd,
}

func runImageCmd(cmd *cobra.Command, args []string) error {
	if len(args) > 0 && (args[0] == "--help" || args[0] == "-h") {
		return cmd.Help()
	}
	if len(args) == 0 {
		return errors.New("no input files provided")
	}

	cfg := GetConfig()
	format := cfg.Output.Format
	outputFile := cfg.Output.File

	validFormats := []string{outputFormatText, outputFormatJSON, outputFormatCSV}
	if !slicesContain(validFormats, format) {
		return fmt.Errorf("invalid output format: %s (must be one of: %s)", format, strings.Join(validFormats, ", "))
	}

	if _, err := fmt.Fprintf(cmd.OutOrStdout(), "Processing %d image(s)\n", len(args)); err != nil {
		return fmt.Errorf("failed to write to stdout: %w", err)
	}

	app, err := ocrapp.Build(cmd.Context(), cfg)
	if err != nil {
		return fmt.Errorf("failed to build OCR pipeline: %w", err)
	}
	defer func() {
		if err := app.Close(); err != nil {
			fmt.Fprintf(os.Stderr, "Error closing pipeline: %v", err)
		}
	}()

	cons := utils.DefaultImageConstraints()
	var outputs []string
	for i, pth := range args {
		page, meta, err := processOneImage(cmd.Context(), app, cons, pth, i+1)
		if err != nil {
			return err
		}
		s, err := renderPage(format, meta.Path, page, len(args) > 1)
		if err != nil {
			return err
		}
		outputs = append(outputs, s)
	}

	final := strings.Join(outputs, "")
	if outputFile != "" {
		if err := os.WriteFile(outputFile, []byte(final), 0o600); err != nil {
			return fmt.Errorf("failed to write output file: %w", err)
		}
		if _, err := fmt.Fprintf(cmd.OutOrStdout(), "Results written to %s", outputFile); err != nil {
			return err
		}
		return nil
	}
	if _, err := fmt.Fprintln(cmd.OutOrStdout(), final); err != nil {
		return fmt.Errorf("failed to write final output: %w", err)
	}
	return nil
}

func processOneImage(ctx context.Context, app *ocrapp.App, cons utils.ImageConstraints, pth string, pageNumber int) (resultfmt.PageJSON, utils.ImageMetadata, error) {
	if !utils.IsSupportedImage(pth) {
		return resultfmt.PageJSON{}, utils.ImageMetadata{}, fmt.Errorf("unsupported image format: %s", pth)
	}
	img, meta, err := utils.LoadImage(pth)
	if err != nil {
		return resultfmt.PageJSON{}, meta, fmt.Errorf("failed to load %s: %w", pth, err)
	}
	if err := utils.ValidateImageConstraints(img, cons); err != nil {
		return resultfmt.PageJSON{}, meta, fmt.Errorf("%s: %w", pth, err)
	}
	res, err := app.Pipeline.ReadOne(ctx, img)
	if err != nil {
		return resultfmt.PageJSON{}, meta, fmt.Errorf("OCR failed for %s: %w", pth, err)
	}
	page := resultfmt.Page(pageNumber, res)
	if minConf := cfgMinRecConfidence(); minConf > 0 {
		page.Results = filterByConfidence(page.Results, minConf)
	}
	return page, meta, nil
}

// cfgMinRecConfidence reads the minimum recognition confidence filter from
// the active configuration.
func cfgMinRecConfidence() float64 {
	return GetConfig().Pipeline.Recognizer.MinConfidence
}

func filterByConfidence(results []resultfmt.RegionJSON, minConf float64) []resultfmt.RegionJSON {
	filtered := make([]resultfmt.RegionJSON, 0, len(results))
	for _, r := range results {
		if r.Confidence >= minConf {
			filtered = append(filtered, r)
		}
	}
	return filtered
}

func renderPage(format, path string, page resultfmt.PageJSON, multi bool) (string, error) {
	switch format {
	case outputFormatJSON:
		obj := struct {
			File string             `json:"file"`
			OCR  resultfmt.PageJSON `json:"ocr"`
		}{File: path, OCR: page}
		bts, err := json.MarshalIndent(obj, "", "  ")
		if err != nil {
			return "", fmt.Errorf("failed to marshal JSON: %w", err)
		}
		return string(bts), nil
	case outputFormatCSV:
		s := toCSVPage(page)
		if multi {
			s = "# " + path + s
		}
		return s, nil
	default:
		s := fmt.Sprintf("%s:%s", path, toPlainTextPage(page))
		return s, nil
	}
}

func toCSVPage(page resultfmt.PageJSON) string {
	var b strings.Builder
	b.WriteString("text,confidence,x,y,width,height\n")
	for _, r := range page.Results {
		rect := r.BoundingBox.Rectangle
		fmt.Fprintf(&b, "%q,%.4f,%.2f,%.2f,%.2f,%.2f\n", r.Text, r.Confidence, rect.X, rect.Y, rect.Width, rect.Height)
	}
	return b.String()
}

func toPlainTextPage(page resultfmt.PageJSON) string {
	var b strings.Builder
	for _, r := range page.Results {
		b.WriteString(r.Text)
		b.WriteString("\n")
	}
	return b.String()
}

func slicesContain(haystack []string, needle string) bool {
	for _, s := range haystack {
		if s == needle {
			return true
		}
	}
	return false
}

func addImageFlags(cmd *cobra.Command) {
	cmd.Flags().StringP("format", "f", "text", "output format (text, json, csv)")
	cmd.Flags().StringP("output", "o", "", "output file (default: stdout)")
	cmd.Flags().Float64("confidence", 0.5, "minimum detection confidence threshold")
	cmd.Flags().StringP("language", "l", "en", "recognition language")
	cmd.Flags().String("dict", "", "comma-separated dictionary file paths to merge for recognition")
	cmd.Flags().String("dict-langs", "", "comma-separated language codes to auto-select "+
		"dictionaries (e.g., en,de,fr)")
	cmd.Flags().Int("rec-height", 0, "recognizer input height (0=auto, typical: 48)")
	cmd.Flags().Float64("min-rec-conf", 0.0, "minimum recognition confidence (filter output)")
	cmd.Flags().String("det-model", "", "override detection model path (defaults to organized models path)")
	cmd.Flags().String("rec-model", "", "override recognition model path (defaults to organized models path)")

	cmd.Flags().Bool("gpu", false, "enable GPU acceleration using CUDA")
	cmd.Flags().Int("gpu-device", 0, "CUDA device ID to use (default: 0)")
	cmd.Flags().String("gpu-mem-limit", "auto", "GPU memory limit "+
		"(e.g., '2GB', '512MB', 'auto' for recommended limit)")
}

// bindImageFlags binds all flags to viper configuration keys.
func bindImageFlags(cmd *cobra.Command) {
	flagBindings := []struct {
		key  string
		flag string
	}{
		{"output.format", "format"},
		{"output.file", "output"},
		{"pipeline.detector.db_box_thresh", "confidence"},
		{"pipeline.recognizer.language", "language"},
		{"pipeline.recognizer.dict_path", "dict"},
		{"pipeline.recognizer.dict_langs", "dict-langs"},
		{"pipeline.recognizer.image_height", "rec-height"},
		{"pipeline.recognizer.min_confidence", "min-rec-conf"},
		{"pipeline.detector.model_path", "det-model"},
		{"pipeline.recognizer.model_path", "rec-model"},
		{"gpu.enabled", "gpu"},
		{"gpu.device", "gpu-device"},
		{"gpu.memory_limit", "gpu-mem-limit"},
	}

	for _, binding := range flagBindings {
		if err := viper.BindPFlag(binding.key, cmd.Flags().Lookup(binding.flag)); err != nil {
			panic(fmt.Sprintf("failed to bind flag %s: %v", binding.flag, err))
		}
	}
}

func init() {
	rootCmd.AddCommand(imageCmd)

	addImageFlags(imageCmd)
	bindImageFlags(imageCmd)

	imageCmd.SetHelpFunc(func(cmd *cobra.Command, args []string) {
		out := cmd.OutOrStdout()
		if _, err := fmt.Fprintln(out, cmd.Short); err != nil {
			return
		}
		if _, err := fmt.Fprintln(out, "Usage:"); err != nil {
			return
		}
		_, _ = fmt.Fprintln(out, cmd.UseLine())
		_, _ = fmt.Fprintln(out, "Flags:")
		_, _ = fmt.Fprintln(out, cmd.Flags().FlagUsages())
	})
}

// GetImageCommand returns the image command for testing purposes.
func GetImageCommand() *cobra.Command {
	return imageCmd
}
