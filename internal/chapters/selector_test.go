package chapters_test

import (
	"testing"

	"github.com/brogergvhs/noveld/internal/chapters"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func makeJobs(n int) []chapters.Job {
	out := make([]chapters.Job, n)
	for i := range out {
		out[i] = chapters.Job{Index: i, Info: chapters.Info{Number: chapters.ToChinese(i + 1), Name: "x"}}
	}
	return out
}

func indexes(jobs []chapters.Job) []int {
	out := make([]int, len(jobs))
	for i, j := range jobs {
		out[i] = j.Index
	}
	return out
}

func TestSelect(t *testing.T) {
	t.Parallel()

	all := makeJobs(10)

	t.Run("no filter returns everything", func(t *testing.T) {
		got, err := chapters.Select(all, "", "")
		require.NoError(t, err)
		assert.Len(t, got, 10)
	})

	t.Run("range is inclusive and 1-based", func(t *testing.T) {
		got, err := chapters.Select(all, "3-5", "")
		require.NoError(t, err)
		assert.Equal(t, []int{2, 3, 4}, indexes(got))
	})

	t.Run("range past the end is clamped", func(t *testing.T) {
		got, err := chapters.Select(all, "9-50", "")
		require.NoError(t, err)
		assert.Equal(t, []int{8, 9}, indexes(got))
	})

	t.Run("malformed range is an error", func(t *testing.T) {
		_, err := chapters.Select(all, "5", "")
		assert.Error(t, err)

		_, err = chapters.Select(all, "7-2", "")
		assert.Error(t, err)
	})

	t.Run("list keeps discovery order and drops duplicates", func(t *testing.T) {
		got, err := chapters.Select(all, "", "7, 2,2,11,0, 4")
		require.NoError(t, err)
		assert.Equal(t, []int{1, 3, 6}, indexes(got))
	})

	t.Run("list with garbage is an error", func(t *testing.T) {
		_, err := chapters.Select(all, "", "1,two")
		assert.Error(t, err)
	})
}
