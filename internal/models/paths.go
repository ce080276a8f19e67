// Package models resolves the on-disk layout of the ONNX weights and
// dictionary files the pipeline loads: detection/recognition/layout models
// under an organized type/variant tree, with a flat-directory fallback for
// older model drops.
package models

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// Filenames of the bundled model and dictionary assets.
const (
	DetectionMobile   = "PP-OCRv5_mobile_det.onnx"
	DetectionServer   = "PP-OCRv5_server_det.onnx"
	RecognitionMobile = "PP-OCRv5_mobile_rec.onnx"
	RecognitionServer = "PP-OCRv5_server_rec.onnx"

	LayoutPPLCNetX025Textline = "pplcnet_x0_25_textline_ori.onnx"
	LayoutPPLCNetX10Doc       = "pplcnet_x1_0_doc_ori.onnx"
	LayoutPPLCNetX10Textline  = "pplcnet_x1_0_textline_ori.onnx"
	LayoutUVDoc               = "uvdoc.onnx"
	LayoutDocTR               = "doctr.onnx"

	DictionaryPPOCRKeysV1 = "ppocr_keys_v1.txt"
)

// Model type and variant categories used to build the organized directory
// structure ($modelsDir/$Type/$Variant/$filename).
const (
	TypeDetection    = "detection"
	TypeRecognition  = "recognition"
	TypeLayout       = "layout"
	TypeDictionaries = "dictionaries"

	VariantMobile = "mobile"
	VariantServer = "server"
)

// DefaultModelsDir is the models directory name relative to the project
// root when nothing else overrides it.
const DefaultModelsDir = "models"

// EnvModelsDir overrides the resolved models directory entirely.
const EnvModelsDir = "GO_OAR_OCR_MODELS_DIR"

// ModelInfo describes one bundled model or dictionary asset.
type ModelInfo struct {
	Name        string
	Type        string
	Variant     string
	Description string
	Filename    string
}

// catalog is the single source of truth ListAvailableModels, and the
// Get*ModelPath helpers derive filenames from.
var catalog = []ModelInfo{
	{"mobile-detection", TypeDetection, VariantMobile, "Mobile detection model", DetectionMobile},
	{"server-detection", TypeDetection, VariantServer, "Server detection model", DetectionServer},
	{"mobile-recognition", TypeRecognition, VariantMobile, "Mobile recognition model", RecognitionMobile},
	{"server-recognition", TypeRecognition, VariantServer, "Server recognition model", RecognitionServer},
	{"pplcnet-x0.25-textline", TypeLayout, "", "PPLCNet x0.25 textline model", LayoutPPLCNetX025Textline},
	{"pplcnet-x1.0-doc", TypeLayout, "", "PPLCNet x1.0 document model", LayoutPPLCNetX10Doc},
	{"pplcnet-x1.0-textline", TypeLayout, "", "PPLCNet x1.0 textline model", LayoutPPLCNetX10Textline},
	{"uvdoc", TypeLayout, "", "UVDoc layout model", LayoutUVDoc},
	{"doctr", TypeLayout, "", "DocTR document rectification model", LayoutDocTR},
	{"ppocr-keys-v1", TypeDictionaries, "", "PPOCR character dictionary v1", DictionaryPPOCRKeysV1},
}

// ListAvailableModels returns metadata for every bundled model and
// dictionary asset pogo knows how to locate.
func ListAvailableModels() []ModelInfo {
	out := make([]ModelInfo, len(catalog))
	copy(out, catalog)
	return out
}

// findProjectRoot walks upward from the working directory until it finds a
// go.mod, the anchor for the default models/ location.
func findProjectRoot() (string, error) {
	dir, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("models: getwd: %w", err)
	}

	for {
		if _, statErr := os.Stat(filepath.Join(dir, "go.mod")); statErr == nil {
			return dir, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", errors.New("models: go.mod not found above working directory")
		}
		dir = parent
	}
}

// GetModelsDir resolves the models directory: an explicit override, then
// EnvModelsDir, then DefaultModelsDir rooted at the project root (or the
// working directory if that can't be found).
func GetModelsDir(modelsDir string) string {
	if modelsDir != "" {
		return modelsDir
	}
	if envDir := os.Getenv(EnvModelsDir); envDir != "" {
		return envDir
	}
	if root, err := findProjectRoot(); err == nil {
		return filepath.Join(root, DefaultModelsDir)
	}
	return DefaultModelsDir
}

// ResolveModelPath resolves filename to a full path, preferring the
// organized modelsDir/modelType[/variant]/filename layout and falling back
// to a flat modelsDir/filename for older model drops that predate it.
func ResolveModelPath(modelsDir, modelType, variant, filename string) string {
	base := GetModelsDir(modelsDir)

	if modelType != "" {
		organized := filepath.Join(base, modelType, filename)
		if variant != "" && (modelType == TypeDetection || modelType == TypeRecognition) {
			organized = filepath.Join(base, modelType, variant, filename)
		}
		if _, err := os.Stat(organized); err == nil {
			return organized
		}
	}

	return filepath.Join(base, filename)
}

func variantFilename(useServer bool, mobile, server string) (string, string) {
	if useServer {
		return server, VariantServer
	}
	return mobile, VariantMobile
}

// GetDetectionModelPath resolves the detection model path for the mobile
// or server variant.
func GetDetectionModelPath(modelsDir string, useServer bool) string {
	filename, variant := variantFilename(useServer, DetectionMobile, DetectionServer)
	return ResolveModelPath(modelsDir, TypeDetection, variant, filename)
}

// GetRecognitionModelPath resolves the recognition model path for the
// mobile or server variant.
func GetRecognitionModelPath(modelsDir string, useServer bool) string {
	filename, variant := variantFilename(useServer, RecognitionMobile, RecognitionServer)
	return ResolveModelPath(modelsDir, TypeRecognition, variant, filename)
}

// GetDictionaryPath resolves a dictionary file's path.
func GetDictionaryPath(modelsDir, filename string) string {
	return ResolveModelPath(modelsDir, TypeDictionaries, "", filename)
}

// GetLayoutModelPath resolves a layout-analysis model's path.
func GetLayoutModelPath(modelsDir, filename string) string {
	return ResolveModelPath(modelsDir, TypeLayout, "", filename)
}

// GetDocTRModelPath resolves the DocTR rectification model's path.
func GetDocTRModelPath(modelsDir string) string {
	return GetLayoutModelPath(modelsDir, LayoutDocTR)
}

// ValidateModelExists reports an error if modelPath does not exist.
func ValidateModelExists(modelPath string) error {
	if _, err := os.Stat(modelPath); os.IsNotExist(err) {
		return fmt.Errorf("model file not found: %s", modelPath)
	}
	return nil
}

// GetDictionaryPathsForLanguages resolves one dictionary file per language
// code under modelsDir/dictionaries, trying a few common naming patterns,
// then appends the default dictionary if it exists and isn't already
// included. The result is de-duplicated and ordered by the input languages.
func GetDictionaryPathsForLanguages(modelsDir string, languages []string) []string {
	base := GetModelsDir(modelsDir)
	seen := make(map[string]struct{}, len(languages)+1)
	out := make([]string, 0, len(languages)+1)

	addIfExists := func(path string) {
		if path == "" {
			return
		}
		if _, ok := seen[path]; ok {
			return
		}
		if _, err := os.Stat(path); err != nil {
			return
		}
		seen[path] = struct{}{}
		out = append(out, path)
	}

	for _, lang := range languages {
		if lang == "" {
			continue
		}
		for _, pattern := range []string{"ppocr_keys_%s.txt", "keys_%s.txt", "%s.txt"} {
			addIfExists(filepath.Join(base, TypeDictionaries, fmt.Sprintf(pattern, lang)))
		}
	}

	addIfExists(GetDictionaryPath(base, DictionaryPPOCRKeysV1))
	return out
}
