package segment

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// reassemble 按区域拼回原文，用于验证分区不变式
func reassemble(text string, spans []Span) string {
	var b strings.Builder
	for _, sp := range spans {
		b.WriteString(text[sp.Start:sp.End])
	}
	return b.String()
}

func assertPartition(t *testing.T, text string, spans []Span) {
	t.Helper()
	require.NotEmpty(t, spans)
	assert.Equal(t, 0, spans[0].Start)
	assert.Equal(t, len(text), spans[len(spans)-1].End)
	for i := 1; i < len(spans); i++ {
		assert.Equal(t, spans[i-1].End, spans[i].Start, "区域必须连续且不重叠")
	}
	assert.Equal(t, text, reassemble(text, spans))
}

func kinds(spans []Span) []SpanKind {
	ks := make([]SpanKind, len(spans))
	for i, sp := range spans {
		ks[i] = sp.Kind
	}
	return ks
}

func TestSegmentPartitionInvariant(t *testing.T) {
	s := New(nil)

	inputs := []string{
		"",
		"plain text only",
		"before $x+y$ after",
		"a $$E=mc^2$$ b % comment\nnext line",
		`\begin{equation}a=b\end{equation}`,
		`text \cite{key} more \ref{fig:one} end`,
		`broken $$ never closes`,
		`\begin{figure} no closer`,
		"mixed $a$ and \\(b\\) and \\[c\\] done",
	}

	for _, input := range inputs {
		spans := s.Segment(input)
		if input == "" {
			assert.Empty(t, spans)
			continue
		}
		assertPartition(t, input, spans)
	}
}

func TestSegmentComment(t *testing.T) {
	s := New(nil)

	text := "text % a comment\nnext"
	spans := s.Segment(text)
	assertPartition(t, text, spans)
	assert.Equal(t, []SpanKind{KindPlain, KindComment, KindPlain}, kinds(spans))
	cm := spans[1]
	assert.Equal(t, "% a comment", text[cm.Start:cm.End])

	// 转义的 \% 不是注释
	escaped := `rate is 50\% high`
	spans = s.Segment(escaped)
	assertPartition(t, escaped, spans)
	for _, sp := range spans {
		assert.NotEqual(t, KindComment, sp.Kind)
	}
}

func TestSegmentMathKinds(t *testing.T) {
	s := New(nil)

	t.Run("DisplayBeforeInline", func(t *testing.T) {
		// $$ 必须整体识别，不能拆成两个 $
		text := "a $$x$$ b"
		spans := s.Segment(text)
		assertPartition(t, text, spans)
		assert.Equal(t, []SpanKind{KindPlain, KindDisplayMath, KindPlain}, kinds(spans))
		assert.Equal(t, "$$x$$", text[spans[1].Start:spans[1].End])
	})

	t.Run("Inline", func(t *testing.T) {
		text := "a $x+y$ b"
		spans := s.Segment(text)
		assertPartition(t, text, spans)
		assert.Equal(t, []SpanKind{KindPlain, KindInlineMath, KindPlain}, kinds(spans))
	})

	t.Run("Delimited", func(t *testing.T) {
		text := `a \(x\) b \[y\] c`
		spans := s.Segment(text)
		assertPartition(t, text, spans)
		assert.Equal(t,
			[]SpanKind{KindPlain, KindDelimitedMath, KindPlain, KindDelimitedMath, KindPlain},
			kinds(spans))
	})

	t.Run("UnterminatedFallsThrough", func(t *testing.T) {
		// 未闭合的 $$：不挂起，落入普通文本
		text := "broken $$ never closes"
		spans := s.Segment(text)
		assertPartition(t, text, spans)
		for _, sp := range spans {
			assert.Equal(t, KindPlain, sp.Kind)
		}
	})
}

func TestSegmentNamedEnvironment(t *testing.T) {
	s := New(nil)

	text := `before \begin{equation}a=b\end{equation} after`
	spans := s.Segment(text)
	assertPartition(t, text, spans)
	require.Len(t, spans, 3)
	assert.Equal(t, KindNamedEnvironment, spans[1].Kind)
	assert.Equal(t, "equation", spans[1].EnvName)

	// 星号变体名字必须两边一致
	text = `\begin{align*}x\end{align*}`
	spans = s.Segment(text)
	require.Len(t, spans, 1)
	assert.Equal(t, "align*", spans[0].EnvName)

	// \begin 和 \end 名字不一致时不匹配
	text = `\begin{align}x\end{gather}`
	spans = s.Segment(text)
	assertPartition(t, text, spans)
	for _, sp := range spans {
		assert.NotEqual(t, KindNamedEnvironment, sp.Kind)
	}

	// 允许列表之外的环境不受保护
	text = `\begin{itemize}\item x\end{itemize}`
	spans = s.Segment(text)
	assertPartition(t, text, spans)
	for _, sp := range spans {
		assert.NotEqual(t, KindNamedEnvironment, sp.Kind)
	}
}

func TestSegmentCommandDefinition(t *testing.T) {
	s := New(nil)

	// 宏定义正文里的 # 和 $ 不能被误读
	text := `\newcommand{\foo}[1]{bar #1 $baz}rest`
	spans := s.Segment(text)
	assertPartition(t, text, spans)
	assert.Equal(t, KindCommandDefinition, spans[0].Kind)

	text = `\def\foo{#1 and $x}tail`
	spans = s.Segment(text)
	assertPartition(t, text, spans)
	assert.Equal(t, KindCommandDefinition, spans[0].Kind)
}

func TestSegmentSkipCommands(t *testing.T) {
	s := New(nil)

	text := `see \cite{smith2020} and \citep{a_b} and \ref{fig:x} and \url{http://e.com/a_b} done`
	spans := s.Segment(text)
	assertPartition(t, text, spans)

	var commands []string
	for _, sp := range spans {
		if sp.Kind == KindCommand {
			commands = append(commands, text[sp.Start:sp.End])
		}
	}
	assert.Equal(t, []string{
		`\cite{smith2020}`, `\citep{a_b}`, `\ref{fig:x}`, `\url{http://e.com/a_b}`,
	}, commands)

	text = `\href{http://a.com}{link text}`
	spans = s.Segment(text)
	require.Len(t, spans, 1)
	assert.Equal(t, KindCommand, spans[0].Kind)
}

func TestSegmentPriorityCommentOverMath(t *testing.T) {
	s := New(nil)

	// 先出现的注释会把同一行里的 $ 吃进注释
	text := "x % dollar $ inside comment\n$y$"
	spans := s.Segment(text)
	assertPartition(t, text, spans)
	assert.Equal(t, []SpanKind{KindPlain, KindComment, KindPlain, KindInlineMath}, kinds(spans))
}

func TestSegmentNonASCIIOffsets(t *testing.T) {
	s := New(nil)

	// 数学前面有多字节字符时字节偏移和 rune 偏移不同，区域边界必须按字节对齐
	text := "précédé — $a+b$ % café\nfin"
	spans := s.Segment(text)
	assertPartition(t, text, spans)
	assert.Equal(t, []SpanKind{KindPlain, KindInlineMath, KindPlain, KindComment, KindPlain}, kinds(spans))
	assert.Equal(t, "$a+b$", text[spans[1].Start:spans[1].End])
	assert.Equal(t, "% café", text[spans[3].Start:spans[3].End])
}

func TestScanEnvironmentDelimiters(t *testing.T) {
	text := `\begin{figure}a\end{figure}\begin{myenv}\begin{figure*}x\end{figure*}`
	delims := ScanEnvironmentDelimiters(text)
	require.Len(t, delims, 5)

	assert.Equal(t, "figure", delims[0].Name)
	assert.Equal(t, RoleBegin, delims[0].Role)
	assert.Equal(t, 0, delims[0].Position)

	assert.Equal(t, "figure", delims[1].Name)
	assert.Equal(t, RoleEnd, delims[1].Role)

	// 允许列表之外的环境也要计数
	assert.Equal(t, "myenv", delims[2].Name)

	assert.Equal(t, "figure*", delims[3].Name)
	assert.Equal(t, "figure*", delims[4].Name)
	assert.Equal(t, RoleEnd, delims[4].Role)
}
