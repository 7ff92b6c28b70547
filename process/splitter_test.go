package process

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSplitSentences(t *testing.T) {
	text := "The samples were synthesized in air. Powder XRD confirmed the phase."
	sentences := SplitSentences(text)
	require.Equal(t, []string{
		"The samples were synthesized in air.",
		"Powder XRD confirmed the phase.",
	}, sentences)
}

func TestSplitSentencesKeepsAbbreviations(t *testing.T) {
	text := "As shown in Fig. 3, the lattice parameter increases. See also Smith et al. for details."
	sentences := SplitSentences(text)
	require.Len(t, sentences, 2)
	require.Contains(t, sentences[0], "Fig. 3")
}

func TestSplitSentencesSingleSentence(t *testing.T) {
	sentences := SplitSentences("Fe2O3 was heated to 100 degrees.")
	require.Equal(t, []string{"Fe2O3 was heated to 100 degrees."}, sentences)
}

func TestSplitSentencesEmptyText(t *testing.T) {
	require.Empty(t, SplitSentences(""))
	require.Empty(t, SplitSentences("   \n \n  "))
}
