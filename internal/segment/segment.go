package segment

import (
	"regexp"
	"unicode/utf8"

	"go.uber.org/zap"
)

// SpanKind 区域类型
type SpanKind int

const (
	KindPlain             SpanKind = iota // 普通文本，可以安全地做字符转义
	KindComment                           // 行注释（未转义的 % 到行尾）
	KindCommandDefinition                 // 宏定义（\newcommand、\def 等）
	KindDisplayMath                       // $$...$$ display 数学
	KindInlineMath                        // $...$ 行内数学
	KindDelimitedMath                     // \(...\) 或 \[...\] 数学
	KindNamedEnvironment                  // 允许列表中的 \begin{x}...\end{x} 环境
	KindCommand                           // 需要逐字节保留参数的命令（\cite、\ref 等）
)

func (k SpanKind) String() string {
	switch k {
	case KindPlain:
		return "plain"
	case KindComment:
		return "comment"
	case KindCommandDefinition:
		return "command_definition"
	case KindDisplayMath:
		return "display_math"
	case KindInlineMath:
		return "inline_math"
	case KindDelimitedMath:
		return "delimited_math"
	case KindNamedEnvironment:
		return "named_environment"
	case KindCommand:
		return "command"
	default:
		return "unknown"
	}
}

// Span 文档中的一段连续区域，区间为 [Start, End)，偏移量以字节计
type Span struct {
	Start   int
	End     int
	Kind    SpanKind
	EnvName string // 仅 KindNamedEnvironment 时非空
}

// Protected 报告该区域是否必须原样保留
func (s Span) Protected() bool {
	return s.Kind != KindPlain
}

// DelimiterRole 环境定界符的角色
type DelimiterRole int

const (
	RoleBegin DelimiterRole = iota
	RoleEnd
)

func (r DelimiterRole) String() string {
	if r == RoleBegin {
		return "begin"
	}
	return "end"
}

// EnvDelimiter 文档中一个 \begin{name} 或 \end{name} 出现的位置
type EnvDelimiter struct {
	Name     string
	Role     DelimiterRole
	Position int
}

// Segmenter 把原始 LaTeX 文本切分为受保护区域和普通区域。
// 匹配按固定优先级进行：注释 → 宏定义 → $$ → $ → \(、\[ → 命名环境 → 跳过命令。
// 在同一起点上，第一个成功的匹配器获胜；扫描从左到右，不会重新进入已覆盖的偏移量。
type Segmenter struct {
	matchers []matcher
	logger   *zap.Logger
}

// New 创建切分器
func New(logger *zap.Logger) *Segmenter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Segmenter{
		matchers: buildMatchers(),
		logger:   logger,
	}
}

// Segment 返回覆盖整个文档的有序区域列表。
// 不变式：区域连续且不重叠，spans[i].End == spans[i+1].Start，
// 并且所有区域的并集恰好等于 [0, len(text))。
// 未闭合的结构（比如没有配对 $$ 的 display 数学）不会挂起：
// 对应的匹配器直接失败，该偏移量落入更低优先级的规则，最终成为普通文本。
func (s *Segmenter) Segment(text string) []Span {
	var spans []Span

	// regexp2 以 rune 为单位计偏移量，区域以字节为单位，两套位置并行推进
	plainStart := 0
	pos := 0
	runePos := 0
	for pos < len(text) {
		c := text[pos]
		// 所有受保护结构都以 %、$ 或 \ 开头，其余字节直接属于普通文本
		if c != '%' && c != '$' && c != '\\' {
			if c < utf8.RuneSelf {
				pos++
			} else {
				_, size := utf8.DecodeRuneInString(text[pos:])
				pos += size
			}
			runePos++
			continue
		}

		matched := false
		for _, m := range s.matchers {
			end, name, ok := m.matchAt(text, pos, runePos)
			if !ok {
				continue
			}
			if plainStart < pos {
				spans = append(spans, Span{Start: plainStart, End: pos, Kind: KindPlain})
			}
			spans = append(spans, Span{Start: pos, End: end, Kind: m.kind, EnvName: name})
			runePos += utf8.RuneCountInString(text[pos:end])
			pos = end
			plainStart = pos
			matched = true
			break
		}
		if !matched {
			pos++
			runePos++
		}
	}

	if plainStart < len(text) {
		spans = append(spans, Span{Start: plainStart, End: len(text), Kind: KindPlain})
	}

	s.logger.Debug("segmented document",
		zap.Int("length", len(text)),
		zap.Int("spans", len(spans)))

	return spans
}

var envDelimiterRe = regexp.MustCompile(`\\(begin|end)\{(\w+\*?)\}`)

// ScanEnvironmentDelimiters 扫描文档中所有 \begin{x} 和 \end{x} 出现的位置。
// 与 Segment 的允许列表无关：配平检查必须覆盖所有环境，而不只是受保护的那几类。
func ScanEnvironmentDelimiters(text string) []EnvDelimiter {
	var delims []EnvDelimiter
	for _, m := range envDelimiterRe.FindAllStringSubmatchIndex(text, -1) {
		role := RoleBegin
		if text[m[2]:m[3]] == "end" {
			role = RoleEnd
		}
		delims = append(delims, EnvDelimiter{
			Name:     text[m[4]:m[5]],
			Role:     role,
			Position: m[0],
		})
	}
	return delims
}
