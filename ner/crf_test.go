package ner

import (
	"encoding/json"
	"os"
	"path"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCRFDecode(t *testing.T) {
	crf := &CRF{
		States:         []string{"O", "B-MAT", "I-MAT"},
		InitialWeights: []float64{0, 0, -100},
		FinalWeights:   []float64{0, 0, 0},
		Transitions: [][]float64{
			{0, 0, -100},
			{0, 0, 2},
			{0, 0, 2},
		},
	}

	// the transition bonus onto I-MAT outweighs the per-position emission
	// preference for O at the second position
	emissions := [][]float64{
		{0, 3, 0},
		{1, 0, 0},
	}
	assert.Equal(t, []string{"B-MAT", "I-MAT"}, crf.Decode(emissions))

	// without an open span the I-MAT path stays blocked
	emissions = [][]float64{
		{3, 0, 0},
		{1, 0, 0},
	}
	assert.Equal(t, []string{"O", "O"}, crf.Decode(emissions))

	assert.Nil(t, crf.Decode(nil))
}

func TestLoadCRFValidation(t *testing.T) {
	writeCRF := func(t *testing.T, crf CRF) string {
		t.Helper()
		buf, err := json.Marshal(crf)
		require.NoError(t, err)
		crfPath := path.Join(t.TempDir(), "crf.json")
		require.NoError(t, os.WriteFile(crfPath, buf, 0644))
		return crfPath
	}

	_, err := LoadCRF(writeCRF(t, CRF{}))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no states")

	_, err = LoadCRF(writeCRF(t, CRF{
		States:         []string{"O", "B-MAT"},
		WordWeights:    [][]float64{{0}},
		Bias:           []float64{0, 0},
		InitialWeights: []float64{0, 0},
		FinalWeights:   []float64{0, 0},
		Transitions:    [][]float64{{0, 0}, {0, 0}},
	}))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "shapes")

	_, err = LoadCRF(path.Join(t.TempDir(), "absent.json"))
	assert.Error(t, err)
}
