package latexfix

import (
	"strings"

	"go.uber.org/zap"

	"github.com/nerdneilsfield/go-latex-fixer/internal/segment"
)

// repairPass 一个修复遍。每遍读取上一遍产出的文档，返回新文档和应用的修复。
type repairPass struct {
	name  string
	apply func(e *Engine, text string) (string, []*Fix)
}

// Engine 修复引擎。按固定顺序执行各修复遍：
// HTML 标签替换 → 环境配平修复 → 缺失图片注释 → 数学模式转义（预留空遍）。
// 多遍流水线天然串行，内部不做并行。
// 保证：任何一遍都不会改写非普通区域内的字节，每遍替换前重新切分来强制这一点。
type Engine struct {
	seg       *segment.Segmenter
	baseDir   string
	imageExts []string
	logger    *zap.Logger
	passes    []repairPass
}

// NewEngine 创建修复引擎。baseDir 是文档所在目录，用于图片路径解析；
// imageExts 为空时使用默认扩展名列表。
func NewEngine(baseDir string, imageExts []string, logger *zap.Logger) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	if len(imageExts) == 0 {
		imageExts = defaultImageExts
	}
	e := &Engine{
		seg:       segment.New(logger),
		baseDir:   baseDir,
		imageExts: imageExts,
		logger:    logger,
	}
	e.passes = []repairPass{
		{name: "html_tags", apply: (*Engine).fixHTMLTags},
		{name: "environment_mismatch", apply: (*Engine).fixEnvironmentMismatch},
		{name: "missing_figures", apply: (*Engine).fixMissingFigures},
		{name: "math_mode_escape", apply: (*Engine).fixMathModeEscape},
	}
	return e
}

// Repair 对文档执行全部修复遍。issues 是此前计算好的发现（可以为 nil，
// 各遍自行做有限的重推导）。返回改写后的文档和应用的修复列表；
// 没有任何修复时原样返回文档。
func (e *Engine) Repair(text string, issues []*Issue) (string, []*Fix) {
	if len(issues) > 0 {
		e.logger.Debug("repairing with known issues", zap.Int("issues", len(issues)))
	}

	var all []*Fix
	for _, p := range e.passes {
		var fixes []*Fix
		text, fixes = p.apply(e, text)
		for _, f := range fixes {
			f.Applied = true
		}
		all = append(all, fixes...)
		e.logger.Debug("repair pass finished",
			zap.String("pass", p.name),
			zap.Int("fixes", len(fixes)))
	}

	if len(all) == 0 {
		e.logger.Info("no fixes needed")
	} else {
		e.logger.Info("applied fixes", zap.Int("count", len(all)))
	}
	return text, all
}

// replaceInPlain 只在普通区域内做替换，受保护区域逐字节保留
func (e *Engine) replaceInPlain(text string, fn func(string) string) string {
	var b strings.Builder
	b.Grow(len(text))
	for _, sp := range e.seg.Segment(text) {
		chunk := text[sp.Start:sp.End]
		if sp.Kind == segment.KindPlain {
			b.WriteString(fn(chunk))
		} else {
			b.WriteString(chunk)
		}
	}
	return b.String()
}

// plainRanges 返回当前文档中普通区域的区间，供按位置判断的修复遍使用
func (e *Engine) plainRanges(text string) [][2]int {
	var ranges [][2]int
	for _, sp := range e.seg.Segment(text) {
		if sp.Kind == segment.KindPlain {
			ranges = append(ranges, [2]int{sp.Start, sp.End})
		}
	}
	return ranges
}

func inRanges(ranges [][2]int, pos int) bool {
	for _, r := range ranges {
		if pos >= r[0] && pos < r[1] {
			return true
		}
	}
	return false
}
