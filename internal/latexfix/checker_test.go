package latexfix

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBalanceCheck(t *testing.T) {
	bc := NewBalanceChecker(nil)

	t.Run("Imbalance", func(t *testing.T) {
		// figure 两开一闭，恰好一条 Issue
		text := `\begin{figure}a\end{figure}\begin{figure}b`
		issues := bc.Check(text)
		require.Len(t, issues, 1)
		assert.Equal(t, IssueEnvironmentImbalance, issues[0].Kind)
		assert.Equal(t, "figure", issues[0].EnvName)
		assert.Equal(t, 2, issues[0].BeginCount)
		assert.Equal(t, 1, issues[0].EndCount)
		assert.Equal(t, SeverityError, issues[0].Severity)
	})

	t.Run("Balanced", func(t *testing.T) {
		text := `\begin{figure}a\end{figure}\begin{equation}b\end{equation}`
		assert.Empty(t, bc.Check(text))
	})

	t.Run("OutsideAllowList", func(t *testing.T) {
		// 配平检查覆盖所有环境，不只是受保护的几类
		text := `\begin{myenv}x`
		issues := bc.Check(text)
		require.Len(t, issues, 1)
		assert.Equal(t, "myenv", issues[0].EnvName)
	})

	t.Run("DeterministicOrder", func(t *testing.T) {
		text := `\begin{zeta}\begin{alpha}`
		issues := bc.Check(text)
		require.Len(t, issues, 2)
		assert.Equal(t, "alpha", issues[0].EnvName)
		assert.Equal(t, "zeta", issues[1].EnvName)
	})
}

func TestCountEnvironments(t *testing.T) {
	text := `\begin{align*}x\end{align*}\begin{table}\end{table}\end{table}`
	counts := CountEnvironments(text)
	assert.Equal(t, EnvCount{Begin: 1, End: 1}, counts["align*"])
	assert.Equal(t, EnvCount{Begin: 1, End: 2}, counts["table"])
}

func TestSuggestEnvironment(t *testing.T) {
	assert.Equal(t, "figure", SuggestEnvironment("figur"))
	assert.Equal(t, "equation", SuggestEnvironment("equaton"))
	assert.Empty(t, SuggestEnvironment("zzzzqqq"))
}
