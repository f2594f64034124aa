package ga

import (
	"testing"

	"dinoevo/internal/policy"
)

func filledIndividual(t *testing.T, actions, stateDim int, v float64) *policy.Individual {
	t.Helper()
	data := make([]float64, actions*stateDim)
	for i := range data {
		data[i] = v
	}
	ind, err := policy.NewIndividual(actions, stateDim, data)
	if err != nil {
		t.Fatalf("new individual: %v", err)
	}
	return ind
}

func sameWeights(a, b *policy.Individual) bool {
	wa, wb := a.Weights(), b.Weights()
	if len(wa) != len(wb) {
		return false
	}
	for i := range wa {
		if wa[i] != wb[i] {
			return false
		}
	}
	return true
}
