package cmd

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"image"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/MeKo-Tech/pogo/internal/ocrapp"
	"github.com/MeKo-Tech/pogo/internal/resultfmt"
	"github.com/MeKo-Tech/pogo/internal/utils"
)

// batchCmd represents the batch command for parallel image processing.
var batchCmd = &cobra.Command{
	Use:   "batch [files...]",
	Short: "Process multiple images in parallel for OCR text detection and recognition",
	Long: `Process multiple image files in parallel to extract text using OCR.
This command is optimized for processing large numbers of images efficiently; the
underlying pipeline fans work across its detection and recognition stages on its
own, so batch's job is discovery, submission, and result formatting.

Supported formats: JPEG, PNG, BMP, TIFF

Examples:
  pogo batch *.jpg *.png
  pogo batch images/ --recursive
  pogo batch file1.jpg file2.png --format json --output results.json
  pogo batch images/ --stats`,
	Args:         cobra.MinimumNArgs(1),
	SilenceUsage: true,
	RunE:         runBatchCommand,
}

func init() {
	rootCmd.AddCommand(batchCmd)

	batchCmd.Flags().Float64("min-rec-conf", 0.0, "minimum recognition confidence threshold")

	batchCmd.Flags().StringP("format", "f", "text", "output format: text, json, csv")
	batchCmd.Flags().StringP("output", "o", "", "output file (default: stdout)")

	batchCmd.Flags().IntP("workers", "w", runtime.NumCPU(), "unused; kept for CLI compatibility "+
		"(the pipeline sizes its own worker pools from engine capacity)")

	batchCmd.Flags().BoolP("recursive", "r", false, "recursively scan directories")
	batchCmd.Flags().StringSlice("include", []string{"*.jpg", "*.jpeg", "*.png", "*.bmp", "*.tiff"},
		"file patterns to include")
	batchCmd.Flags().StringSlice("exclude", []string{}, "file patterns to exclude")

	batchCmd.Flags().Bool("quiet", false, "suppress progress output")
	batchCmd.Flags().Bool("stats", false, "show processing statistics")
}

func runBatchCommand(cmd *cobra.Command, args []string) error {
	minRecConf, _ := cmd.Flags().GetFloat64("min-rec-conf")
	format, _ := cmd.Flags().GetString("format")
	outputFile, _ := cmd.Flags().GetString("output")
	recursive, _ := cmd.Flags().GetBool("recursive")
	includePatterns, _ := cmd.Flags().GetStringSlice("include")
	excludePatterns, _ := cmd.Flags().GetStringSlice("exclude")
	quiet, _ := cmd.Flags().GetBool("quiet")
	showStats, _ := cmd.Flags().GetBool("stats")

	imageFiles, err := discoverImageFiles(args, recursive, includePatterns, excludePatterns)
	if err != nil {
		return fmt.Errorf("failed to discover image files: %w", err)
	}
	if len(imageFiles) == 0 {
		return errors.New("no image files found")
	}
	if !quiet {
		_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Found %d image files to process\n", len(imageFiles))
	}

	cfg := GetConfig()
	app, err := ocrapp.Build(cmd.Context(), cfg)
	if err != nil {
		return fmt.Errorf("failed to build OCR pipeline: %w", err)
	}
	defer func() {
		if err := app.Close(); err != nil {
			fmt.Fprintf(os.Stderr, "Error closing pipeline: %v\n", err)
		}
	}()

	startTime := time.Now()
	pages, failed, err := processImagesBatch(cmd.Context(), app, imageFiles, minRecConf)
	duration := time.Since(startTime)
	if err != nil {
		return fmt.Errorf("batch processing failed: %w", err)
	}

	output, err := formatBatchResults(pages, imageFiles, format)
	if err != nil {
		return fmt.Errorf("failed to format results: %w", err)
	}

	if outputFile != "" {
		if err := os.WriteFile(outputFile, []byte(output), 0o600); err != nil {
			return fmt.Errorf("failed to write output file: %w", err)
		}
		if !quiet {
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Results written to %s\n", outputFile)
		}
	} else {
		_, _ = fmt.Fprint(cmd.OutOrStdout(), output)
	}

	if showStats && !quiet {
		_, _ = fmt.Fprintf(cmd.OutOrStdout(), "\nProcessing Statistics:\n")
		_, _ = fmt.Fprintf(cmd.OutOrStdout(), "  Total images: %d\n", len(imageFiles))
		_, _ = fmt.Fprintf(cmd.OutOrStdout(), "  Failed: %d\n", failed)
		_, _ = fmt.Fprintf(cmd.OutOrStdout(), "  Duration: %v\n", duration.Round(time.Millisecond))
		if len(imageFiles) > 0 {
			avg := duration / time.Duration(len(imageFiles))
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "  Avg per image: %v\n", avg.Round(time.Millisecond))
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "  Throughput: %.1f images/sec\n", float64(len(imageFiles))/duration.Seconds())
		}
	}

	return nil
}

// processImagesBatch loads every path, then submits every successfully
// loaded image through a single Pipeline.ReadMany call so the batch runs
// with the pipeline's own bounded concurrency (C7) driving the workload,
// rather than one ReadOne submit-then-block round trip per file. A file
// that fails to load or decode never reaches the pipeline and is recorded
// as a nil page and counted in failed; a file whose image is accepted but
// whose OCR job itself fails (Result.Err) is recorded the same way, rather
// than aborting the rest of the batch.
func processImagesBatch(ctx context.Context, app *ocrapp.App, paths []string, minRecConf float64) ([]*resultfmt.PageJSON, int, error) {
	cons := utils.DefaultImageConstraints()
	pages := make([]*resultfmt.PageJSON, len(paths))
	failed := 0

	imgs := make([]image.Image, 0, len(paths))
	indices := make([]int, 0, len(paths))
	for i, pth := range paths {
		if !utils.IsSupportedImage(pth) {
			slog.Warn("skipping unsupported image", "file", pth)
			failed++
			continue
		}
		img, _, err := utils.LoadImage(pth)
		if err != nil {
			slog.Warn("failed to load image, skipping", "file", pth, "error", err)
			failed++
			continue
		}
		if err := utils.ValidateImageConstraints(img, cons); err != nil {
			slog.Warn("image does not meet constraints, skipping", "file", pth, "error", err)
			failed++
			continue
		}
		imgs = append(imgs, img)
		indices = append(indices, i)
	}

	if len(imgs) == 0 {
		return pages, failed, nil
	}

	results, err := app.Pipeline.ReadMany(ctx, imgs)
	if err != nil {
		return nil, failed, fmt.Errorf("pipeline read many: %w", err)
	}

	for j, res := range results {
		i := indices[j]
		if res.Err != nil {
			slog.Warn("OCR failed for image, skipping", "file", paths[i], "error", res.Err)
			failed++
			continue
		}

		page := resultfmt.Page(i+1, res)
		if minRecConf > 0 {
			page.Results = filterByConfidence(page.Results, minRecConf)
		}
		pages[i] = &page
	}

	return pages, failed, nil
}

// formatBatchResults formats the batch processing results in the specified format.
func formatBatchResults(pages []*resultfmt.PageJSON, imagePaths []string, format string) (string, error) {
	switch format {
	case outputFormatJSON:
		type entry struct {
			File string              `json:"file"`
			OCR  *resultfmt.PageJSON `json:"ocr"`
		}
		batch := struct {
			Images []entry `json:"images"`
		}{Images: make([]entry, len(pages))}
		for i, page := range pages {
			batch.Images[i] = entry{File: imagePaths[i], OCR: page}
		}
		bts, err := json.MarshalIndent(batch, "", "  ")
		return string(bts), err

	case outputFormatCSV:
		var csvData [][]string
		csvData = append(csvData, []string{"file", "region_index", "text", "confidence", "x", "y", "width", "height"})
		for i, page := range pages {
			file := imagePaths[i]
			if page == nil || len(page.Results) == 0 {
				csvData = append(csvData, []string{file, "0", "", "0", "0", "0", "0", "0"})
				continue
			}
			for j, r := range page.Results {
				rect := r.BoundingBox.Rectangle
				csvData = append(csvData, []string{
					file,
					strconv.Itoa(j),
					r.Text,
					fmt.Sprintf("%.3f", r.Confidence),
					fmt.Sprintf("%.2f", rect.X),
					fmt.Sprintf("%.2f", rect.Y),
					fmt.Sprintf("%.2f", rect.Width),
					fmt.Sprintf("%.2f", rect.Height),
				})
			}
		}
		var output strings.Builder
		writer := csv.NewWriter(&output)
		for _, row := range csvData {
			if err := writer.Write(row); err != nil {
				return "", err
			}
		}
		writer.Flush()
		return output.String(), nil

	default: // text
		var output strings.Builder
		for i, page := range pages {
			if page == nil {
				continue
			}
			if i > 0 {
				output.WriteString("\n")
			}
			output.WriteString(fmt.Sprintf("# %s\n", imagePaths[i]))
			output.WriteString(toPlainTextPage(*page))
		}
		return output.String(), nil
	}
}

// discoverImageFiles finds all image files matching the given patterns.
func discoverImageFiles(args []string, recursive bool, includePatterns, excludePatterns []string) ([]string, error) {
	var imageFiles []string

	for _, arg := range args {
		info, err := os.Stat(arg)
		if err != nil {
			return nil, fmt.Errorf("cannot access %s: %w", arg, err)
		}

		if info.IsDir() {
			files, err := discoverInDirectory(arg, recursive, includePatterns, excludePatterns)
			if err != nil {
				return nil, err
			}
			imageFiles = append(imageFiles, files...)
		} else if matchesPatterns(arg, includePatterns) && !matchesPatterns(arg, excludePatterns) {
			imageFiles = append(imageFiles, arg)
		}
	}

	return imageFiles, nil
}

// discoverInDirectory recursively discovers image files in a directory.
func discoverInDirectory(dir string, recursive bool, includePatterns, excludePatterns []string) ([]string, error) {
	var files []string

	walkFn := func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}

		if info.IsDir() {
			if !recursive && path != dir {
				return filepath.SkipDir
			}
			return nil
		}

		if matchesPatterns(path, includePatterns) && !matchesPatterns(path, excludePatterns) {
			files = append(files, path)
		}

		return nil
	}

	return files, filepath.Walk(dir, walkFn)
}

// matchesPatterns checks if a file path matches any of the given patterns.
func matchesPatterns(path string, patterns []string) bool {
	if len(patterns) == 0 {
		return false
	}

	base := filepath.Base(path)
	for _, pattern := range patterns {
		if matched, _ := filepath.Match(pattern, base); matched {
			return true
		}
	}
	return false
}
