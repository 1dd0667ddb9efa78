package logparse

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nerdneilsfield/go-latex-fixer/internal/latexfix"
)

const sampleLog = `This is pdfTeX, Version 3.14159265
(./main.tex
! Undefined control sequence.
l.42 \badcommand
       {argument}
Some context line.

! Missing $ inserted.
<inserted text>
                $
l.57 model_name

LaTeX Warning: Citation ` + "`smith2020'" + ` on page 3 undefined on input line 120.
LaTeX Warning: Reference ` + "`fig:missing'" + ` on page 4 undefined on input line 133.
)
`

func TestParseErrors(t *testing.T) {
	p := NewParser(nil)
	issues := p.Parse(sampleLog)

	var errors, warnings []*latexfix.Issue
	for _, is := range issues {
		if is.Severity == latexfix.SeverityError {
			errors = append(errors, is)
		} else {
			warnings = append(warnings, is)
		}
	}

	// `! ` 行数等于错误 Issue 数
	assert.Equal(t, strings.Count(sampleLog, "\n! "), len(errors))
	require.Len(t, errors, 2)

	assert.Equal(t, latexfix.IssueUndefinedCommand, errors[0].Kind)
	assert.Equal(t, "Undefined control sequence.", errors[0].Message)
	assert.Equal(t, 42, errors[0].Line)
	assert.Len(t, errors[0].Context, 5)

	assert.Equal(t, latexfix.IssueMissingMath, errors[1].Kind)
	assert.Equal(t, 57, errors[1].Line)

	require.Len(t, warnings, 2)
	assert.Equal(t, latexfix.IssueUndefinedCitation, warnings[0].Kind)
	assert.Equal(t, "smith2020", warnings[0].Key)
	assert.Equal(t, latexfix.IssueUndefinedReference, warnings[1].Kind)
	assert.Equal(t, "fig:missing", warnings[1].Key)
}

func TestClassify(t *testing.T) {
	cases := []struct {
		message string
		want    latexfix.IssueKind
	}{
		{"Undefined control sequence.", latexfix.IssueUndefinedCommand},
		{"Missing $ inserted.", latexfix.IssueMissingMath},
		{"Missing } inserted.", latexfix.IssueMissingBrace},
		{"Missing { inserted.", latexfix.IssueMissingBrace},
		{"LaTeX Error: Environment foobar undefined.", latexfix.IssueUndefinedEnvironment},
		{"LaTeX Error: File `missing.sty' not found.", latexfix.IssueMissingFile},
		{"Misplaced alignment tab character &.", latexfix.IssueMisplacedAlignTab},
		{"Something totally new.", latexfix.IssueOther},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, classify(c.message), "message: %s", c.message)
	}
}

func TestParseUnrecognizedErrorStillCounted(t *testing.T) {
	p := NewParser(nil)

	// 识别不出的错误行不能被丢弃，归为 Other
	log := "! Weird new error nobody has seen.\ncontext\n"
	issues := p.Parse(log)
	require.Len(t, issues, 1)
	assert.Equal(t, latexfix.IssueOther, issues[0].Kind)
	assert.Equal(t, "Weird new error nobody has seen.", issues[0].Message)
}

func TestParseEnvironmentName(t *testing.T) {
	p := NewParser(nil)

	log := "! LaTeX Error: Environment tabluar undefined.\nl.12 \\begin{tabluar}\n"
	issues := p.Parse(log)
	require.Len(t, issues, 1)
	assert.Equal(t, latexfix.IssueUndefinedEnvironment, issues[0].Kind)
	assert.Equal(t, "tabluar", issues[0].EnvName)
	assert.Equal(t, 12, issues[0].Line)
}

func TestParseEmptyLog(t *testing.T) {
	p := NewParser(nil)
	assert.Empty(t, p.Parse(""))
}
