package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/sergi/go-diff/diffmatchpatch"

	"github.com/nerdneilsfield/go-latex-fixer/internal/document"
	"github.com/nerdneilsfield/go-latex-fixer/internal/latexfix"
)

// maxDiffLines 预演模式下最多展示的变更行数
const maxDiffLines = 20

// Report 一次流水线运行的结构化报告
type Report struct {
	RunID  string            `json:"run_id"`
	Input  string            `json:"input"`
	Issues []*latexfix.Issue `json:"issues,omitempty"`
	Fixes  []*latexfix.Fix   `json:"fixes,omitempty"`
	Stats  document.Stats    `json:"stats"`
}

// WriteJSON 把报告序列化到 stdout
func (r *Report) WriteJSON() error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(r)
}

func severityColor(s latexfix.Severity) *color.Color {
	switch s {
	case latexfix.SeverityError:
		return color.New(color.FgRed, color.Bold)
	case latexfix.SeverityWarning:
		return color.New(color.FgYellow)
	default:
		return color.New(color.FgCyan)
	}
}

// renderIssues 按严重程度着色输出发现的问题
func renderIssues(issues []*latexfix.Issue) {
	if len(issues) == 0 {
		color.Green("没有发现问题")
		return
	}

	fmt.Printf("发现 %d 个问题:\n", len(issues))
	for _, issue := range issues {
		c := severityColor(issue.Severity)
		c.Printf("  [%s] %s", issue.Severity, issue.Kind)
		if issue.Line > 0 {
			fmt.Printf(" (l.%d)", issue.Line)
		}
		fmt.Printf(": %s\n", issue.Message)

		if issue.Kind == latexfix.IssueUndefinedEnvironment && issue.EnvName != "" {
			if suggestion := latexfix.SuggestEnvironment(issue.EnvName); suggestion != "" {
				fmt.Printf("      也许你想用的是 %q\n", suggestion)
			}
		}
		if issue.Key != "" {
			fmt.Printf("      key: %s\n", issue.Key)
		}
	}
}

// renderFixes 输出应用的修复列表
func renderFixes(fixes []*latexfix.Fix) {
	if len(fixes) == 0 {
		fmt.Println("不需要修复")
		return
	}

	fmt.Printf("应用了 %d 个修复:\n", len(fixes))
	for _, fix := range fixes {
		fmt.Printf("  - [%s] %s\n", fix.Name, fix.Description)
	}
}

// renderStats 输出文档内容统计
func renderStats(stats document.Stats) {
	fmt.Println("内容统计:")
	fmt.Printf("  引用: %d  交叉引用: %d  图: %d  表: %d  公式: %d\n",
		stats.Citations, stats.Refs, stats.Figures, stats.Tables, stats.Equations)
}

// renderDiff 按行展示变更预览，最多 maxDiffLines 行
func renderDiff(before, after string) {
	if before == after {
		fmt.Println("没有变更")
		return
	}

	dmp := diffmatchpatch.New()
	chars1, chars2, lines := dmp.DiffLinesToChars(before, after)
	diffs := dmp.DiffCharsToLines(dmp.DiffMain(chars1, chars2, false), lines)

	shown := 0
	total := 0
	for _, d := range diffs {
		if d.Type == diffmatchpatch.DiffEqual {
			continue
		}
		prefix := "+ "
		c := color.New(color.FgGreen)
		if d.Type == diffmatchpatch.DiffDelete {
			prefix = "- "
			c = color.New(color.FgRed)
		}
		for _, line := range strings.Split(strings.TrimRight(d.Text, "\n"), "\n") {
			total++
			if shown < maxDiffLines {
				c.Printf("%s%s\n", prefix, line)
				shown++
			}
		}
	}
	if total > shown {
		fmt.Printf("... 还有 %d 行变更\n", total-shown)
	}
}
