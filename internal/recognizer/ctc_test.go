package recognizer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MeKo-Tech/pogo/internal/onnxengine/mock"
)

func testDict() *Dictionary {
	return &Dictionary{Lines: []string{"h", "e", "l", "o", "w", "r", "d"}}
}

func TestDecodeGreedy_CollapsesRepeatsAndDropsBlanks(t *testing.T) {
	dict := testDict()
	// "h" "e" "l" "l" "o" with CTC blank/repeat padding around each symbol.
	indices := []int{0, 1, 1, 0, 2, 0, 3, 3, 3, 0, 3, 0, 4, 4, 0}
	logits := mock.NewGreedyPathLogits(indices, dict.Size(), false, 0.99, 0.0001)

	results := DecodeGreedy(logits.Data, logits.Shape, dict, false)
	require.Len(t, results, 1)
	assert.Equal(t, "hello", results[0].Text)
	assert.Greater(t, results[0].Confidence, 0.9)
}

func TestDecodeGreedy_AllBlankYieldsEmptyZeroConfidence(t *testing.T) {
	dict := testDict()
	indices := []int{0, 0, 0, 0}
	logits := mock.NewGreedyPathLogits(indices, dict.Size(), false, 0.99, 0.0001)

	results := DecodeGreedy(logits.Data, logits.Shape, dict, false)
	require.Len(t, results, 1)
	assert.Equal(t, "", results[0].Text)
	assert.Equal(t, 0.0, results[0].Confidence)
}

func TestDecodeGreedy_ClassesFirstLayout(t *testing.T) {
	dict := testDict()
	indices := []int{1, 0, 6} // "h" <blank> "r"
	logits := mock.NewGreedyPathLogits(indices, dict.Size(), true, 0.99, 0.0001)

	results := DecodeGreedy(logits.Data, logits.Shape, dict, true)
	require.Len(t, results, 1)
	assert.Equal(t, "hr", results[0].Text)
}

func TestDictionary_TokenMapping(t *testing.T) {
	dict := testDict()
	assert.Equal(t, "", dict.Token(0))
	assert.Equal(t, "h", dict.Token(1))
	assert.Equal(t, " ", dict.Token(dict.Size()-1))
	assert.Equal(t, "", dict.Token(dict.Size()))
}
