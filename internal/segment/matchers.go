package segment

import (
	"github.com/dlclark/regexp2"
)

// EnvAllowList 按原样保护内容的命名环境。
// 注意：匹配是扁平的，\begin{x}...\end{x} 的正文不会再递归扫描同名环境的嵌套实例。
// 同名环境嵌套时外层会在第一个 \end{x} 处被截断，这是已知的简化。
var EnvAllowList = []string{
	"equation", "equation*", "align", "align*", "gather", "gather*",
	"math", "displaymath", "figure", "figure*", "lstlisting",
	"tabular", "tabular*", "array",
}

// matcher 尝试在给定偏移量上识别一种受保护结构
type matcher struct {
	kind SpanKind
	re   *regexp2.Regexp
}

// matchAt 在给定位置上尝试匹配。只有恰好从该位置开始的匹配才算成功，
// 引擎扫描到更远位置找到的匹配属于别的偏移量，忽略。
// regexp2 的偏移量按 rune 计，调用方同时提供字节位置和 rune 位置。
func (m matcher) matchAt(text string, bytePos, runePos int) (end int, envName string, ok bool) {
	match, err := m.re.FindStringMatchStartingAt(text, runePos)
	if err != nil || match == nil || match.Index != runePos {
		return 0, "", false
	}
	if m.kind == KindNamedEnvironment {
		if g := match.GroupByNumber(1); g != nil {
			envName = g.String()
		}
	}
	return bytePos + len(match.String()), envName, true
}

// buildMatchers 构造有序的匹配器列表，顺序即优先级。
// 使用 regexp2 是因为多处需要环视：未转义的 % 要求 (?<!\\)，
// 单个 $ 不能把 $$ 拆成两半，转义检测要求向后看一个字符。
func buildMatchers() []matcher {
	mk := func(kind SpanKind, pattern string) matcher {
		return matcher{kind: kind, re: regexp2.MustCompile(pattern, regexp2.Singleline)}
	}

	ms := []matcher{
		// 1. 行注释：未转义的 % 到行尾
		mk(KindComment, `(?<!\\)%[^\n]*`),
		// 2. 宏定义：正文里的 # 参数标记会被误读成别的结构，必须先于数学匹配。
		//    大括号参数只捕获一层嵌套，不做递归配对。
		mk(KindCommandDefinition,
			`\\(?:(?:re)?newcommand|providecommand|DeclareMathOperator)\*?(?:\{[^}]*\}|\[[^\]]*\])*\{[^}]*\}`),
		mk(KindCommandDefinition, `\\def\\[a-zA-Z@]+[^{]*\{[^}]*\}`),
		// 3. display 数学先于行内数学
		mk(KindDisplayMath, `\$\$.*?\$\$`),
		mk(KindInlineMath, `(?<!\$)\$(?!\$).*?(?<!\$)\$(?!\$)`),
		mk(KindDelimitedMath, `\\\(.*?\\\)`),
		mk(KindDelimitedMath, `\\\[.*?\\\]`),
		// 4. 允许列表中的命名环境，\begin 和 \end 必须是同一个字面名字
		mk(KindNamedEnvironment,
			`\\begin\{(equation\*?|align\*?|gather\*?|math|displaymath|figure\*?|lstlisting|tabular\*?|array)\}.*?\\end\{\1\}`),
		// 5. 参数必须逐字节保留的命令
		mk(KindCommand, `\\(?:ref|autoref|label)\{[^}]*\}`),
		mk(KindCommand, `\\cite[a-z]*\{[^}]*\}`),
		mk(KindCommand, `\\url\{[^}]*\}`),
		mk(KindCommand, `\\href\{[^}]*\}\{[^}]*\}`),
	}
	return ms
}
