package latexfix

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/nerdneilsfield/go-latex-fixer/internal/segment"
)

// missingFigureMarker 注释掉缺失图片行时加的前缀，原始行保留在标记之后
const missingFigureMarker = "% FIXME: missing file - "

var defaultImageExts = []string{".png", ".pdf", ".jpg", ".jpeg", ".eps"}

var includegraphicsRe = regexp.MustCompile(`\\includegraphics(?:\[[^\]]*\])?\{([^}]+)\}`)

// fixMissingFigures 把引用了磁盘上不存在的图片的整行注释掉。
// 路径相对文档目录解析，先按字面路径再逐个补上常见图片扩展名。
// 可达范围是普通区域加上 figure 环境正文：\includegraphics 几乎总在
// figure 环境里，而整行注释不会像字符转义那样破坏环境内容；
// 其他受保护区域（数学、lstlisting、注释）不处理。
// 已经是注释的行不再处理。每个缺失图片记一条 Fix。
func (e *Engine) fixMissingFigures(text string) (string, []*Fix) {
	var fixes []*Fix

	for {
		ranges := e.figureScanRanges(text)
		applied := false

		for _, m := range includegraphicsRe.FindAllStringSubmatchIndex(text, -1) {
			if !inRanges(ranges, m[0]) {
				continue
			}
			figPath := text[m[2]:m[3]]
			if e.figureExists(figPath) {
				continue
			}

			lineStart := strings.LastIndexByte(text[:m[0]], '\n') + 1
			lineEnd := strings.IndexByte(text[m[1]:], '\n')
			if lineEnd == -1 {
				lineEnd = len(text)
			} else {
				lineEnd += m[1]
			}
			line := text[lineStart:lineEnd]
			if strings.HasPrefix(strings.TrimSpace(line), "%") {
				continue
			}

			text = text[:lineStart] + missingFigureMarker + line + text[lineEnd:]
			fixes = append(fixes, &Fix{
				Name:        "comment_missing_figure",
				Description: fmt.Sprintf("commented out missing figure: %s", figPath),
			})
			// 插入标记移动了偏移量，重新扫描剩余部分
			applied = true
			break
		}

		if !applied {
			break
		}
	}
	return text, fixes
}

// figureScanRanges 返回缺图扫描的可达区间：普通区域和 figure 环境
func (e *Engine) figureScanRanges(text string) [][2]int {
	var ranges [][2]int
	for _, sp := range e.seg.Segment(text) {
		plain := sp.Kind == segment.KindPlain
		figureEnv := sp.Kind == segment.KindNamedEnvironment &&
			(sp.EnvName == "figure" || sp.EnvName == "figure*")
		if plain || figureEnv {
			ranges = append(ranges, [2]int{sp.Start, sp.End})
		}
	}
	return ranges
}

// figureExists 相对文档目录检查图片文件是否存在
func (e *Engine) figureExists(figPath string) bool {
	full := filepath.Join(e.baseDir, figPath)
	if _, err := os.Stat(full); err == nil {
		return true
	}
	for _, ext := range e.imageExts {
		if _, err := os.Stat(full + ext); err == nil {
			return true
		}
	}
	return false
}
