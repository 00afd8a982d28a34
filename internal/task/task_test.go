package task

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTaskDerivation(t *testing.T) {
	base := "/src"
	tk := New(base, filepath.Join(base, "01_a", "10_run.sh.abort_fail"))

	assert.Equal(t, filepath.Join("01_a", "10_run.sh.abort_fail"), tk.RelName())
	assert.Equal(t, "//01_a/10_run.sh.abort_fail", tk.DisplayName())

	priority, ok := tk.Priority()
	require.True(t, ok)
	assert.Equal(t, "0110", priority)

	assert.Equal(t, "a", tk.OutputRelDir())
	assert.True(t, tk.Options().Has(AbortFailOpt))
	assert.False(t, tk.Options().Has(AllowFailOpt))
	assert.Equal(t, filepath.Join(base, "01_a"), tk.Dir())
}

func TestClassifyExit(t *testing.T) {
	assert.Equal(t, Success, ClassifyExit(true, NormalOpt))
	assert.Equal(t, Failure, ClassifyExit(false, NormalOpt))
	assert.Equal(t, AllowFail, ClassifyExit(false, AllowFailOpt))
	assert.Equal(t, AbortFail, ClassifyExit(false, AbortFailOpt))
	assert.Equal(t, AbortFail, ClassifyExit(false, AbortFailOpt|AllowFailOpt),
		"abort dominates when both options are present")
}

func TestExitClassOrderingAndMarker(t *testing.T) {
	assert.True(t, Failure.Worse(AllowFail))
	assert.True(t, AbortFail.Worse(Failure))
	assert.False(t, Success.Worse(AllowFail))

	assert.Equal(t, "SUCCESS", Success.Marker())
	assert.Equal(t, "SUCCESS", AllowFail.Marker())
	assert.Equal(t, "FAILURE", Failure.Marker())
	assert.Equal(t, "ABORT", AbortFail.Marker())
}

func TestWorstClass(t *testing.T) {
	assert.Equal(t, Failure, WorstClass(Success, Failure))
	assert.Equal(t, AbortFail, WorstClass(AbortFail, Failure))
	assert.Equal(t, AllowFail, WorstClass(Success, AllowFail))
}
