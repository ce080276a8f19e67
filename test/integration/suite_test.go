// Package integration_test runs the literal end-to-end scenarios from the
// engine's testable-properties section as cucumber/godog features, against
// mocked detector/recognizer engines the same way internal/pipeline's and
// internal/detector's own unit tests do (no real ONNX model is loaded).
package integration_test

import (
	"testing"

	"github.com/cucumber/godog"
)

func TestFeatures(t *testing.T) {
	suite := godog.TestSuite{
		ScenarioInitializer: InitializeScenario,
		Options: &godog.Options{
			Format:   "pretty",
			Paths:    []string{"features"},
			TestingT: t,
		},
	}
	if suite.Run() != 0 {
		t.Fatal("non-zero status returned, failed to run feature tests")
	}
}
