package latexfix

// Severity 问题严重程度
type Severity int

const (
	SeverityInfo Severity = iota
	SeverityWarning
	SeverityError
)

func (s Severity) String() string {
	switch s {
	case SeverityInfo:
		return "info"
	case SeverityWarning:
		return "warning"
	case SeverityError:
		return "error"
	default:
		return "unknown"
	}
}

// IssueKind 问题类型
type IssueKind int

const (
	IssueOther IssueKind = iota
	IssueUndefinedCommand
	IssueMissingMath
	IssueMissingBrace
	IssueUndefinedEnvironment
	IssueMissingFile
	IssueMisplacedAlignTab
	IssueUndefinedCitation
	IssueUndefinedReference
	IssueEnvironmentImbalance
)

func (k IssueKind) String() string {
	switch k {
	case IssueUndefinedCommand:
		return "undefined_command"
	case IssueMissingMath:
		return "missing_math"
	case IssueMissingBrace:
		return "missing_brace"
	case IssueUndefinedEnvironment:
		return "undefined_env"
	case IssueMissingFile:
		return "missing_file"
	case IssueMisplacedAlignTab:
		return "misplaced_tab"
	case IssueUndefinedCitation:
		return "undefined_citation"
	case IssueUndefinedReference:
		return "undefined_reference"
	case IssueEnvironmentImbalance:
		return "env_imbalance"
	default:
		return "other"
	}
}

// Issue 校验或日志分类产出的一条发现。
// 校验器和日志分类器共用这套词汇，一次流水线运行内有效，不跨运行持久化。
type Issue struct {
	Kind     IssueKind `json:"kind"`
	Severity Severity  `json:"severity"`
	Message  string    `json:"message"`
	Line     int       `json:"line,omitempty"`    // 0 表示不适用
	Context  []string  `json:"context,omitempty"` // 日志里紧跟的上下文行
	Key      string    `json:"key,omitempty"`     // 未定义引用或文献的键

	// 环境配平问题附带的计数
	EnvName    string `json:"env_name,omitempty"`
	BeginCount int    `json:"begin_count,omitempty"`
	EndCount   int    `json:"end_count,omitempty"`
}

// Fix 修复引擎应用的一次修复动作记录
type Fix struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Applied     bool   `json:"applied"`
}
