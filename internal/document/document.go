package document

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"

	"go.uber.org/zap"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// Document 一份不可变的 LaTeX 源文档。
// 加载后不再修改，所有变换都产出新的 Document。
type Document struct {
	Path string
	Text string
}

// Load 读取文档。输入按 UTF-8 解码，畸形字节序列替换成 U+FFFD 而不是拒绝。
func Load(path string, logger *zap.Logger) (*Document, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read document: %w", err)
	}

	text, _, err := transform.String(unicode.UTF8.NewDecoder(), string(raw))
	if err != nil {
		return nil, fmt.Errorf("failed to decode document: %w", err)
	}

	logger.Debug("loaded document",
		zap.String("path", path),
		zap.Int("bytes", len(raw)),
		zap.Int("chars", len([]rune(text))))

	return &Document{Path: path, Text: text}, nil
}

// Dir 返回文档所在目录，用于解析图片等相对路径
func (d *Document) Dir() string {
	return filepath.Dir(d.Path)
}

// WithText 返回文本被替换后的新文档，原文档不变
func (d *Document) WithText(text string) *Document {
	return &Document{Path: d.Path, Text: text}
}

// Save 把文档文本写到指定路径
func (d *Document) Save(path string) error {
	if err := os.WriteFile(path, []byte(d.Text), 0o644); err != nil {
		return fmt.Errorf("failed to write document: %w", err)
	}
	return nil
}

// LogPath 返回文档对应的编译日志路径（main.tex → main.log），用于自动探测
func (d *Document) LogPath() string {
	base := d.Path[:len(d.Path)-len(filepath.Ext(d.Path))]
	return base + ".log"
}

var (
	bibRe = regexp.MustCompile(`\\bibliography\{|\\begin\{filecontents\}\{.*\.bib\}|\\addbibresource\{`)

	citeRe     = regexp.MustCompile(`\\cite[a-z]*\{`)
	refRe      = regexp.MustCompile(`\\ref\{`)
	figureRe   = regexp.MustCompile(`\\includegraphics`)
	tableRe    = regexp.MustCompile(`\\begin\{table`)
	equationRe = regexp.MustCompile(`\\begin\{(?:equation|align)`)
)

// HasBibliography 检查文档是否引用了文献库，决定编译时要不要跑 bibtex
func (d *Document) HasBibliography() bool {
	return bibRe.MatchString(d.Text)
}

// Stats 文档内容统计
type Stats struct {
	Citations int `json:"citations"`
	Refs      int `json:"refs"`
	Figures   int `json:"figures"`
	Tables    int `json:"tables"`
	Equations int `json:"equations"`
}

// CountStats 统计引用、图、表、公式的数量
func (d *Document) CountStats() Stats {
	return Stats{
		Citations: len(citeRe.FindAllString(d.Text, -1)),
		Refs:      len(refRe.FindAllString(d.Text, -1)),
		Figures:   len(figureRe.FindAllString(d.Text, -1)),
		Tables:    len(tableRe.FindAllString(d.Text, -1)),
		Equations: len(equationRe.FindAllString(d.Text, -1)),
	}
}
