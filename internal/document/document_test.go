package document

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadReplacesInvalidUTF8(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "main.tex")

	// 0xFF 不是合法的 UTF-8 字节
	require.NoError(t, os.WriteFile(path, []byte("ok\xffend"), 0o644))

	doc, err := Load(path, nil)
	require.NoError(t, err)
	assert.Equal(t, "ok�end", doc.Text)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.tex"), nil)
	assert.Error(t, err)
}

func TestWithTextImmutable(t *testing.T) {
	doc := &Document{Path: "a.tex", Text: "one"}
	next := doc.WithText("two")
	assert.Equal(t, "one", doc.Text)
	assert.Equal(t, "two", next.Text)
	assert.Equal(t, doc.Path, next.Path)
}

func TestLogPath(t *testing.T) {
	doc := &Document{Path: filepath.Join("paper", "main.tex")}
	assert.Equal(t, filepath.Join("paper", "main.log"), doc.LogPath())
}

func TestHasBibliography(t *testing.T) {
	cases := []struct {
		text string
		want bool
	}{
		{`\bibliography{refs}`, true},
		{`\addbibresource{refs.bib}`, true},
		{`\begin{filecontents}{refs.bib}`, true},
		{`no bib here`, false},
	}
	for _, c := range cases {
		doc := &Document{Text: c.text}
		assert.Equal(t, c.want, doc.HasBibliography(), c.text)
	}
}

func TestCountStats(t *testing.T) {
	doc := &Document{Text: `
\cite{a} \citep{b} \ref{fig:x}
\includegraphics{f1} \includegraphics{f2}
\begin{table}x\end{table}
\begin{equation}y\end{equation} \begin{align}z\end{align}
`}
	stats := doc.CountStats()
	assert.Equal(t, 2, stats.Citations)
	assert.Equal(t, 1, stats.Refs)
	assert.Equal(t, 2, stats.Figures)
	assert.Equal(t, 1, stats.Tables)
	assert.Equal(t, 2, stats.Equations)
}
