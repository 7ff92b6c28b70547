package ner

import (
	"encoding/json"
	"fmt"
	"os"
)

// CRF holds the restored linear-chain weights: per-tag emission projections
// over the embedding space plus tag-transition scores.
type CRF struct {
	States         []string    `json:"states"`
	WordWeights    [][]float64 `json:"word_weights"`
	CharWeights    [][]float64 `json:"char_weights"`
	Bias           []float64   `json:"bias"`
	InitialWeights []float64   `json:"initial_weights"`
	FinalWeights   []float64   `json:"final_weights"`
	Transitions    [][]float64 `json:"transitions"`
}

func LoadCRF(path string) (*CRF, error) {
	buf, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var crf CRF
	if err = json.Unmarshal(buf, &crf); err != nil {
		return nil, err
	}
	if err = crf.validate(); err != nil {
		return nil, err
	}
	return &crf, nil
}

func (crf *CRF) validate() error {
	n := len(crf.States)
	if n == 0 {
		return fmt.Errorf("crf has no states")
	}
	if len(crf.WordWeights) != n || len(crf.Bias) != n ||
		len(crf.InitialWeights) != n || len(crf.FinalWeights) != n ||
		len(crf.Transitions) != n {
		return fmt.Errorf("crf weight shapes do not match %d states", n)
	}
	for i, row := range crf.Transitions {
		if len(row) != n {
			return fmt.Errorf("crf transition row %d has %d entries, want %d", i, len(row), n)
		}
	}
	return nil
}

// Emissions scores every state for one token embedding pair.
func (crf *CRF) Emissions(wordVec []float64, charVec []float64) []float64 {
	scores := make([]float64, len(crf.States))
	for s := range crf.States {
		score := crf.Bias[s]
		score += dot(crf.WordWeights[s], wordVec)
		if len(crf.CharWeights) == len(crf.States) {
			score += dot(crf.CharWeights[s], charVec)
		}
		scores[s] = score
	}
	return scores
}

// Decode runs Viterbi over the emission lattice and returns the best state
// sequence, one state per input position.
func (crf *CRF) Decode(emissions [][]float64) []string {
	if len(emissions) == 0 {
		return nil
	}
	n := len(crf.States)
	deltas := make([][]float64, len(emissions))
	backptrs := make([][]int, len(emissions))

	deltas[0] = make([]float64, n)
	backptrs[0] = make([]int, n)
	for s := 0; s < n; s++ {
		deltas[0][s] = crf.InitialWeights[s] + emissions[0][s]
		backptrs[0][s] = -1
	}

	for pos := 1; pos < len(emissions); pos++ {
		deltas[pos] = make([]float64, n)
		backptrs[pos] = make([]int, n)
		for s := 0; s < n; s++ {
			best := 0
			bestScore := deltas[pos-1][0] + crf.Transitions[0][s]
			for prev := 1; prev < n; prev++ {
				score := deltas[pos-1][prev] + crf.Transitions[prev][s]
				if score > bestScore {
					bestScore = score
					best = prev
				}
			}
			deltas[pos][s] = bestScore + emissions[pos][s]
			backptrs[pos][s] = best
		}
	}

	last := len(emissions) - 1
	finalState := 0
	finalScore := deltas[last][0] + crf.FinalWeights[0]
	for s := 1; s < n; s++ {
		if score := deltas[last][s] + crf.FinalWeights[s]; score > finalScore {
			finalScore = score
			finalState = s
		}
	}

	states := make([]string, len(emissions))
	for pos, s := last, finalState; pos >= 0; pos-- {
		states[pos] = crf.States[s]
		s = backptrs[pos][s]
	}
	return states
}

func dot(weights []float64, vec []float64) float64 {
	limit := len(weights)
	if len(vec) < limit {
		limit = len(vec)
	}
	ret := 0.0
	for i := 0; i < limit; i++ {
		ret += weights[i] * vec[i]
	}
	return ret
}
