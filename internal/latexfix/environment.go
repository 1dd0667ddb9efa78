package latexfix

import (
	"fmt"
	"sort"
	"strings"
)

// fixEnvironmentMismatch 修复环境开闭数量不配平的情况。
// begin 多于 end：在文档末尾补齐缺少的 \end；
// end 多于 begin：从最后一次出现往前删除多余的 \end。
// 删除只考虑落在普通区域里的出现——匹配成对的受保护环境内部的
// 闭合符不能被当成多余的删掉。每插入或删除一次记一条 Fix。
func (e *Engine) fixEnvironmentMismatch(text string) (string, []*Fix) {
	var fixes []*Fix

	counts := CountEnvironments(text)
	names := make([]string, 0, len(counts))
	for name := range counts {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		c := counts[name]
		switch {
		case c.Begin > c.End:
			for i := 0; i < c.Begin-c.End; i++ {
				text = strings.TrimRight(text, " \t\r\n") + fmt.Sprintf("\n\\end{%s}\n", name)
				fixes = append(fixes, &Fix{
					Name:        "add_end_" + name,
					Description: fmt.Sprintf(`added missing \end{%s}`, name),
				})
			}
		case c.End > c.Begin:
			token := fmt.Sprintf(`\end{%s}`, name)
			for i := 0; i < c.End-c.Begin; i++ {
				idx, ok := e.lastPlainOccurrence(text, token)
				if !ok {
					break
				}
				text = text[:idx] + text[idx+len(token):]
				fixes = append(fixes, &Fix{
					Name:        "remove_end_" + name,
					Description: fmt.Sprintf(`removed extra \end{%s}`, name),
				})
			}
		}
	}
	return text, fixes
}

// lastPlainOccurrence 找 token 在普通区域内的最后一次出现。
// 每次调用重新切分，因为上一次删除会移动偏移量。
func (e *Engine) lastPlainOccurrence(text, token string) (int, bool) {
	ranges := e.plainRanges(text)
	searchEnd := len(text)
	for searchEnd > 0 {
		idx := strings.LastIndex(text[:searchEnd], token)
		if idx < 0 {
			return 0, false
		}
		if inRanges(ranges, idx) {
			return idx, true
		}
		searchEnd = idx
	}
	return 0, false
}
