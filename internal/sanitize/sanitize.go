package sanitize

import (
	"regexp"
	"strings"

	"github.com/dlclark/regexp2"
	"go.uber.org/zap"

	"github.com/nerdneilsfield/go-latex-fixer/internal/segment"
)

const (
	tabularBegin = `\begin{tabular}`
	tabularEnd   = `\end{tabular}`
)

var tabularRe = regexp.MustCompile(`(?s)\\begin\{tabular\}.*?\\end\{tabular\}`)

// Sanitizer 对普通区域做字符级净化，受保护区域原样返回。
// 纯函数集合，没有副作用，可以安全地并发用于不同文档。
type Sanitizer struct {
	tables    *Tables
	seg       *segment.Segmenter
	specialRe *regexp2.Regexp
	cellRe    *regexp.Regexp
	special   map[string]string
	cell      map[string]string
	logger    *zap.Logger
}

// New 创建净化器。tables 为 nil 时使用内置表。
func New(tables *Tables, logger *zap.Logger) *Sanitizer {
	if tables == nil {
		tables = DefaultTables()
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	s := &Sanitizer{
		tables:  tables,
		seg:     segment.New(logger),
		special: make(map[string]string, len(tables.Special)),
		cell:    make(map[string]string, len(tables.TableCell)),
		logger:  logger,
	}

	// 组合模式：匹配任意一个表键，但要求前面不是转义字符，
	// 这样已经转义过的出现保持不动（幂等性要求）
	keys := make([]string, 0, len(tables.Special))
	for _, r := range tables.Special {
		s.special[r.From] = r.To
		keys = append(keys, regexp.QuoteMeta(r.From))
	}
	s.specialRe = regexp2.MustCompile(`(?<!\\)(`+strings.Join(keys, "|")+`)`, 0)

	cellKeys := make([]string, 0, len(tables.TableCell))
	for _, r := range tables.TableCell {
		s.cell[r.From] = r.To
		cellKeys = append(cellKeys, regexp.QuoteMeta(r.From))
	}
	s.cellRe = regexp.MustCompile(strings.Join(cellKeys, "|"))

	return s
}

// NormalizeNonASCII 全文替换非 ASCII 字符。
// 不需要区域感知：每条规则都是单字符到固定字面输出。
func (s *Sanitizer) NormalizeNonASCII(text string) string {
	for _, r := range s.tables.NonASCII {
		text = strings.ReplaceAll(text, r.From, r.To)
	}
	return text
}

// EscapeSpecial 对一段普通文本应用特殊字符转义表
func (s *Sanitizer) EscapeSpecial(text string) string {
	out, err := s.specialRe.ReplaceFunc(text, func(m regexp2.Match) string {
		return s.special[m.String()]
	}, -1, -1)
	if err != nil {
		// 固定模式加固定输入不会出错，保底返回原文
		s.logger.Warn("special-char escape failed", zap.Error(err))
		return text
	}
	return out
}

// EscapeTableCell 对 tabular 单元格文本应用小替换表
func (s *Sanitizer) EscapeTableCell(text string) string {
	return s.cellRe.ReplaceAllStringFunc(text, func(key string) string {
		return s.cell[key]
	})
}

// applyToPlain 逐区域处理：普通区域经过 fn，受保护区域逐字节保留
func (s *Sanitizer) applyToPlain(text string, fn func(string) string) string {
	var b strings.Builder
	b.Grow(len(text))
	for _, sp := range s.seg.Segment(text) {
		chunk := text[sp.Start:sp.End]
		if sp.Kind == segment.KindPlain {
			b.WriteString(fn(chunk))
		} else {
			b.WriteString(chunk)
		}
	}
	return b.String()
}

// SanitizeDocument 完整净化：先做全文非 ASCII 归一化，
// 再对普通区域做特殊字符转义。满足幂等性：再跑一遍结果不变。
func (s *Sanitizer) SanitizeDocument(text string) string {
	text = s.NormalizeNonASCII(text)
	return s.applyToPlain(text, s.EscapeSpecial)
}

// SanitizeTabular 只净化一个表格片段的 tabular 正文。
// 正文内部仍按区域切分，数学等受保护区域不动。
func (s *Sanitizer) SanitizeTabular(table string) string {
	if !strings.Contains(table, tabularBegin) || !strings.Contains(table, tabularEnd) {
		return table
	}
	before, rest, _ := strings.Cut(table, tabularBegin)
	body, after, _ := strings.Cut(rest, tabularEnd)
	body = s.applyToPlain(body, s.EscapeTableCell)
	return before + tabularBegin + body + tabularEnd + after
}

// SanitizeTablesOnly 只处理文档中的 tabular 环境，其余部分原样保留
func (s *Sanitizer) SanitizeTablesOnly(text string) string {
	var b strings.Builder
	b.Grow(len(text))
	last := 0
	for _, loc := range tabularRe.FindAllStringIndex(text, -1) {
		b.WriteString(text[last:loc[0]])
		b.WriteString(s.SanitizeTabular(text[loc[0]:loc[1]]))
		last = loc[1]
	}
	b.WriteString(text[last:])
	return b.String()
}
