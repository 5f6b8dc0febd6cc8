package pipeline_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flowcore/pipeline/pipeline"
)

func TestCombineErrorsSkipsNilsAndJoinsMatching(t *testing.T) {
	errX := errors.New("x unset")
	errY := errors.New("y unset")

	require.NoError(t, pipeline.CombineErrors(nil, nil))

	combined := pipeline.CombineErrors(errX, nil, errY)
	require.Error(t, combined)
	assert.True(t, errors.Is(combined, errX))
	assert.True(t, errors.Is(combined, errY))
}

func TestSetNumThreadsChangesDefaultBudgetForNewNodes(t *testing.T) {
	pipeline.SetNumThreads(0)
	defer pipeline.SetNumThreads(0)

	zeroBudget := pipeline.GlobalThreadBudget()
	pipeline.SetNumThreads(4)
	fourBudget := pipeline.GlobalThreadBudget()

	assert.NotSame(t, zeroBudget, fourBudget)
}
