package latexfix

import (
	"fmt"
	"regexp"
)

// htmlRule 一条 HTML 标签替换规则
type htmlRule struct {
	name string
	re   *regexp.Regexp
	repl string
}

// htmlRules 混进 LaTeX 的 HTML 风格标签及其替换。
// 这些标签出现在普通文本里（通常来自网页复制或生成器输出），
// 不是完整的 HTML 文档，按片段做正则替换即可。
var htmlRules = []htmlRule{
	{"html_bold", regexp.MustCompile(`(?i)<b>(.*?)</b>`), `\textbf{$1}`},
	{"html_italic", regexp.MustCompile(`(?i)<i>(.*?)</i>`), `\textit{$1}`},
	{"html_emphasis", regexp.MustCompile(`(?i)<em>(.*?)</em>`), `\emph{$1}`},
	{"html_br", regexp.MustCompile(`(?i)<br\s*/?>`), `\\`},
	{"html_p_open", regexp.MustCompile(`(?i)<p>`), "\n\n"},
	{"html_p_close", regexp.MustCompile(`(?i)</p>`), ""},
	{"html_code", regexp.MustCompile(`(?i)<code>(.*?)</code>`), `\texttt{$1}`},
	{"html_subscript", regexp.MustCompile(`(?i)<sub>(.*?)</sub>`), `$$_{$1}$$`},
	{"html_superscript", regexp.MustCompile(`(?i)<sup>(.*?)</sup>`), `$$^{$1}$$`},
	{"html_block", regexp.MustCompile(`(?i)</?(?:div|span|section|h[1-6])[^>]*>`), ""},
}

// fixHTMLTags 替换普通区域里的 HTML 风格标签。
// 每种至少命中一次的标签记一条 Fix，汇总该类型的替换次数。
func (e *Engine) fixHTMLTags(text string) (string, []*Fix) {
	var fixes []*Fix

	for _, rule := range htmlRules {
		count := 0
		text = e.replaceInPlain(text, func(chunk string) string {
			count += len(rule.re.FindAllStringIndex(chunk, -1))
			return rule.re.ReplaceAllString(chunk, rule.repl)
		})
		if count > 0 {
			fixes = append(fixes, &Fix{
				Name:        rule.name,
				Description: fmt.Sprintf("replaced %d HTML %s tags", count, rule.name),
			})
		}
	}
	return text, fixes
}
