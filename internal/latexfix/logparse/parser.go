// Package logparse 把外部排版引擎的编译日志解析成类型化的 Issue 列表。
// 分类是尽力而为的：识别不出的错误行仍然产出 Other 类型的 Issue 而不是被丢弃，
// 所以检测到的 `! ` 行数总是等于产出的错误 Issue 数。
package logparse

import (
	"regexp"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/nerdneilsfield/go-latex-fixer/internal/latexfix"
)

const (
	errorMarker     = "! "
	maxContextLines = 5
)

// classifyRule 错误消息的分类规则，按顺序第一条命中的生效
type classifyRule struct {
	kind     latexfix.IssueKind
	contains []string // 消息必须包含的全部子串
	any      []string // contains 之外，命中任意一个即可（可为空）
}

var classifyRules = []classifyRule{
	{kind: latexfix.IssueUndefinedCommand, contains: []string{"Undefined control sequence"}},
	{kind: latexfix.IssueMissingMath, contains: []string{"Missing $ inserted"}},
	{kind: latexfix.IssueMissingBrace, any: []string{"Missing } inserted", "Missing { inserted"}},
	{kind: latexfix.IssueUndefinedEnvironment, contains: []string{"Environment", "undefined"}},
	{kind: latexfix.IssueMissingFile, contains: []string{"File", "not found"}},
	{kind: latexfix.IssueMisplacedAlignTab, contains: []string{"Misplaced alignment tab"}},
}

var (
	lineNumRe   = regexp.MustCompile(`l\.(\d+)`)
	quotedKeyRe = regexp.MustCompile("`([^']+)'")
	envNameRe   = regexp.MustCompile(`Environment (\w+\*?) undefined`)
)

// Parser 编译日志解析器
type Parser struct {
	logger *zap.Logger
}

// NewParser 创建日志解析器
func NewParser(logger *zap.Logger) *Parser {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Parser{logger: logger}
}

// Parse 扫描日志行产出有序的 Issue 列表。
// 以 `! ` 开头的行开启一条错误 Issue，消息是该行剩余部分，
// 上下文是紧跟的至多 5 行，行号从上下文里的 l.N 标记回看提取。
// 引用和文献的 undefined 警告在全文范围单独扫描（不限于 `! ` 块）。
func (p *Parser) Parse(logContent string) []*latexfix.Issue {
	var issues []*latexfix.Issue
	lines := strings.Split(logContent, "\n")

	for i, line := range lines {
		if !strings.HasPrefix(line, errorMarker) {
			continue
		}

		issue := &latexfix.Issue{
			Kind:     latexfix.IssueOther,
			Severity: latexfix.SeverityError,
			Message:  line[len(errorMarker):],
		}

		// 收集上下文行并回看行号
		for j := i + 1; j < len(lines) && j <= i+maxContextLines; j++ {
			issue.Context = append(issue.Context, lines[j])
		}
		for _, ctx := range issue.Context {
			if m := lineNumRe.FindStringSubmatch(ctx); m != nil {
				issue.Line, _ = strconv.Atoi(m[1])
				break
			}
		}

		issue.Kind = classify(issue.Message)
		if issue.Kind == latexfix.IssueUndefinedEnvironment {
			if m := envNameRe.FindStringSubmatch(issue.Message); m != nil {
				issue.EnvName = m[1]
			}
		}
		issues = append(issues, issue)
	}

	// 引用、文献未定义的警告
	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		var kind latexfix.IssueKind
		switch {
		case strings.Contains(line, "Citation") && strings.Contains(line, "undefined"):
			kind = latexfix.IssueUndefinedCitation
		case strings.Contains(line, "Reference") && strings.Contains(line, "undefined"):
			kind = latexfix.IssueUndefinedReference
		default:
			continue
		}
		key := ""
		if m := quotedKeyRe.FindStringSubmatch(line); m != nil {
			key = m[1]
		}
		issues = append(issues, &latexfix.Issue{
			Kind:     kind,
			Severity: latexfix.SeverityWarning,
			Message:  trimmed,
			Key:      key,
		})
	}

	p.logger.Debug("parsed compiler log",
		zap.Int("lines", len(lines)),
		zap.Int("issues", len(issues)))

	return issues
}

// classify 按固定顺序的子串规则判断错误类型，没有命中时归为 Other
func classify(message string) latexfix.IssueKind {
	for _, rule := range classifyRules {
		if !containsAll(message, rule.contains) {
			continue
		}
		if len(rule.any) > 0 && !containsAny(message, rule.any) {
			continue
		}
		return rule.kind
	}
	return latexfix.IssueOther
}

func containsAll(s string, subs []string) bool {
	for _, sub := range subs {
		if !strings.Contains(s, sub) {
			return false
		}
	}
	return true
}

func containsAny(s string, subs []string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
