package utils

import (
	"errors"
	"sort"
	"testing"

	"github.com/bloomberg/go-testgroup"
	"github.com/samber/lo"
)

func TestProcessGroup(t *testing.T) {
	testgroup.RunInParallel(t, &ProcessGroupTests{})
}

type ProcessGroupTests struct {
}

func (g *ProcessGroupTests) ProcessesEverything(t *testgroup.T) {
	input := lo.Range(100)

	group := ParallelFor(input, func(i int) (int, error) {
		return i * 2, nil
	}, ParallelOptions{Routines: 4})

	var result []int
	for o := range group.Output {
		result = append(result, o)
	}

	t.Require.NoError(group.Error())
	sort.Ints(result)
	t.Equal(lo.Map(input, func(i int, _ int) int { return i * 2 }), result)
}

func (g *ProcessGroupTests) EmptyInput(t *testgroup.T) {
	group := ParallelFor([]int{}, func(i int) (int, error) {
		return i, nil
	})

	count := 0
	for range group.Output {
		count++
	}

	t.Require.NoError(group.Error())
	t.Equal(0, count)
}

func (g *ProcessGroupTests) ProcessorErrorAborts(t *testgroup.T) {
	group := ParallelFor(lo.Range(1000), func(i int) (int, error) {
		if i == 10 {
			return 0, errors.New("boom")
		}
		return i, nil
	}, ParallelOptions{Routines: 2})

	count := 0
	for range group.Output {
		count++
	}

	t.EqualError(group.Error(), "boom")
	t.True(group.Aborted())
	t.Less(count, 1000)
}

func (g *ProcessGroupTests) AbortKeepsFirstError(t *testgroup.T) {
	group := ParallelFor(lo.Range(1000), func(i int) (int, error) {
		return i, nil
	}, ParallelOptions{Routines: 2})

	for range group.Output {
		group.Abort(errors.New("first"))
		group.Abort(errors.New("second"))
	}

	t.EqualError(group.Error(), "first")
}
