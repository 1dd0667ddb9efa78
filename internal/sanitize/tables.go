package sanitize

// Replacement 一条字符替换规则
type Replacement struct {
	From string
	To   string
}

// SpecialChars 普通文本中的特殊字符到 LaTeX 转义序列的映射。
// 通过带负向后顾的组合模式应用，已经转义过的出现不会被二次转义。
var SpecialChars = []Replacement{
	{"&", `\&`},
	{"%", `\%`},
	{"#", `\#`},
	{"_", `\_`},
	{"^", `\textasciicircum{}`},
	{"<", `$<$`},
	{">", `$>$`},
	{"≤", `$\leq$`},     // ≤
	{"≥", `$\geq$`},     // ≥
	{"≠", `$\neq$`},     // ≠
	{"±", `$\pm$`},      // ±
	{"×", `$\times$`},   // ×
	{"÷", `$\div$`},     // ÷
	{"°", `$^{\circ}$`}, // °
	{"∞", `$\infty$`},   // ∞
	{"√", `$\sqrt{}$`},  // √
	{"∑", `$\sum$`},     // ∑
	{"∏", `$\prod$`},    // ∏
	{"|", `\textbar{}`},
	{"∈", `$\in$`},       // ∈
	{"∉", `$\notin$`},    // ∉
	{"∀", `$\forall$`},   // ∀
	{"∃", `$\exists$`},   // ∃
	{"∅", `$\emptyset$`}, // ∅
	{"​", ""},            // 零宽空格
	{" ", " "},           // 窄版不换行空格
}

// NonASCIIChars 非 ASCII 字符到 LaTeX 安全写法的映射。
// 每条都是单字符到固定字面输出，与嵌套无关，
// 所以作为全文替换在分区感知的转义之前直接应用。
var NonASCIIChars = []Replacement{
	{"–", "--"},            // –
	{"’", "'"},             // '
	{"‘", "`"},             // '
	{"“", "``"},            // "
	{"”", "''"},            // "
	{"²", `$^2$`},          // ²
	{"³", `$^3$`},          // ³
	{"¼", `$\frac{1}{4}$`}, // ¼
	{"½", `$\frac{1}{2}$`}, // ½
	{"¾", `$\frac{3}{4}$`}, // ¾
	{"∆", `$\Delta$`},      // ∆
	{"∇", `$\nabla$`},      // ∇
	{"∂", `$\partial$`},    // ∂
	{"—", "---"},           // —
	{"…", `\ldots{}`},      // …
	{"é", `\'e`},           // é
	{"è", "\\`e"},          // è
	{"ü", `\"u`},           // ü
	{"ö", `\"o`},           // ö
	{"ä", `\"a`},           // ä
}

// TableCellChars tabular 正文里使用的小替换表。
// 通用表的多数替换（比如把 < 和 > 换成数学模式）在 tabular
// 的对齐语法里不安全，所以表格内容只处理这四个字符。
var TableCellChars = []Replacement{
	{">", `$>$`},
	{"<", `$<$`},
	{"=", `$=$`},
	{"|", `\textbar{}`},
}

// Tables 三张替换表的一次性只读配置，进程启动时构造一次，
// 以引用方式传入各组件，没有隐藏的全局可变状态。
type Tables struct {
	Special   []Replacement
	NonASCII  []Replacement
	TableCell []Replacement
}

// DefaultTables 返回内置替换表
func DefaultTables() *Tables {
	return &Tables{
		Special:   SpecialChars,
		NonASCII:  NonASCIIChars,
		TableCell: TableCellChars,
	}
}
