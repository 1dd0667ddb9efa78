package latexfix

import (
	"fmt"
	"sort"

	"github.com/lithammer/fuzzysearch/fuzzy"
	"go.uber.org/zap"

	"github.com/nerdneilsfield/go-latex-fixer/internal/segment"
)

// knownEnvironments 建议候选：受保护的环境加上常见的正文环境
var knownEnvironments = append([]string{
	"abstract", "itemize", "enumerate", "description", "table", "table*",
	"center", "quote", "verbatim", "theorem", "proof", "algorithm", "document",
}, segment.EnvAllowList...)

// BalanceChecker 环境配平校验器。
// 只统计每个环境名的 \begin/\end 出现次数，不定位具体哪一处缺失；
// 数量相等但配对交错的情况检测不出来，这是已知限制。
type BalanceChecker struct {
	logger *zap.Logger
}

// NewBalanceChecker 创建配平校验器
func NewBalanceChecker(logger *zap.Logger) *BalanceChecker {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &BalanceChecker{logger: logger}
}

// Check 统计全文所有环境（不限于允许列表）的 begin/end 数量，
// 每个不配平的名字产出一条 Issue。
func (bc *BalanceChecker) Check(text string) []*Issue {
	counts := CountEnvironments(text)

	names := make([]string, 0, len(counts))
	for name := range counts {
		names = append(names, name)
	}
	sort.Strings(names)

	var issues []*Issue
	for _, name := range names {
		c := counts[name]
		if c.Begin == c.End {
			continue
		}
		issues = append(issues, &Issue{
			Kind:     IssueEnvironmentImbalance,
			Severity: SeverityError,
			Message: fmt.Sprintf(`mismatched environment: \begin{%s} (%dx) vs \end{%s} (%dx)`,
				name, c.Begin, name, c.End),
			EnvName:    name,
			BeginCount: c.Begin,
			EndCount:   c.End,
		})
	}

	if len(issues) > 0 {
		bc.logger.Debug("environment imbalance detected", zap.Int("count", len(issues)))
	}
	return issues
}

// EnvCount 一个环境名的定界符计数
type EnvCount struct {
	Begin int
	End   int
}

// CountEnvironments 按环境名统计 \begin 和 \end 出现次数
func CountEnvironments(text string) map[string]EnvCount {
	counts := make(map[string]EnvCount)
	for _, d := range segment.ScanEnvironmentDelimiters(text) {
		c := counts[d.Name]
		if d.Role == segment.RoleBegin {
			c.Begin++
		} else {
			c.End++
		}
		counts[d.Name] = c
	}
	return counts
}

// SuggestEnvironment 为未定义的环境名给出最接近的已知环境名，没有合适候选时返回空串
func SuggestEnvironment(name string) string {
	ranks := fuzzy.RankFindNormalizedFold(name, knownEnvironments)
	if len(ranks) == 0 {
		return ""
	}
	sort.Sort(ranks)
	return ranks[0].Target
}
