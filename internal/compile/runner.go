// Package compile 调用外部排版引擎把净化后的文档编译成 PDF。
// 编译产生的日志交给 logparse 分类，本包只负责执行序列和超时控制。
package compile

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/nerdneilsfield/go-latex-fixer/internal/document"
)

// ErrEngineNotFound 排版引擎没有安装
var ErrEngineNotFound = errors.New("pdflatex not found in PATH")

// DefaultTimeout 单条命令的默认超时
const DefaultTimeout = 60 * time.Second

// Step 编译序列里的一步
type Step struct {
	Command string
	Args    []string
}

// StepResult 一步的执行结果
type StepResult struct {
	Step     Step
	ExitOK   bool
	TimedOut bool
}

// Result 完整编译的结果
type Result struct {
	Success bool
	PDFPath string
	Output  string // 所有步骤的合并输出，供日志分类器解析
	Steps   []StepResult
}

// Runner 编译执行器。超时按单条命令施加，整个流水线的取消由调用方的 ctx 负责。
type Runner struct {
	timeout time.Duration
	logger  *zap.Logger
}

// NewRunner 创建编译执行器。timeout 为零时使用默认超时。
func NewRunner(timeout time.Duration, logger *zap.Logger) *Runner {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Runner{timeout: timeout, logger: logger}
}

// Available 检查排版引擎是否可用
func (r *Runner) Available() bool {
	_, err := exec.LookPath("pdflatex")
	return err == nil
}

// BuildSequence 根据文档构造编译序列：
// pdflatex → （有文献库时 bibtex → pdflatex）→ pdflatex
func BuildSequence(doc *document.Document) []Step {
	name := filepath.Base(doc.Path)
	base := strings.TrimSuffix(name, filepath.Ext(name))

	steps := []Step{
		{Command: "pdflatex", Args: []string{"-interaction=nonstopmode", "-halt-on-error", name}},
	}
	if doc.HasBibliography() {
		steps = append(steps,
			Step{Command: "bibtex", Args: []string{base}},
			Step{Command: "pdflatex", Args: []string{"-interaction=nonstopmode", name}},
		)
	}
	steps = append(steps,
		Step{Command: "pdflatex", Args: []string{"-interaction=nonstopmode", name}},
	)
	return steps
}

// Compile 执行编译序列。第一遍 pdflatex 失败视为致命，后续步骤的
// 非零退出只记录不中断（nonstopmode 下残留错误是常态）。
// 成功与否以最终是否产出 PDF 为准。
func (r *Runner) Compile(ctx context.Context, doc *document.Document) (*Result, error) {
	if !r.Available() {
		return nil, ErrEngineNotFound
	}

	cwd := doc.Dir()
	steps := BuildSequence(doc)
	result := &Result{Success: true}
	var output strings.Builder

	for i, step := range steps {
		r.logger.Info("running compile step",
			zap.Int("step", i+1),
			zap.Int("total", len(steps)),
			zap.String("command", step.Command))

		sr, out := r.runStep(ctx, cwd, step)
		output.WriteString(out)
		result.Steps = append(result.Steps, sr)

		if sr.TimedOut {
			result.Success = false
			continue
		}
		if !sr.ExitOK && step.Command == "pdflatex" && i == 0 {
			result.Success = false
			break
		}
	}

	result.Output = output.String()

	name := filepath.Base(doc.Path)
	pdfPath := filepath.Join(cwd, strings.TrimSuffix(name, filepath.Ext(name))+".pdf")
	if _, err := os.Stat(pdfPath); err == nil {
		result.PDFPath = pdfPath
	} else {
		result.Success = false
	}

	return result, nil
}

// runStep 带超时执行一条命令
func (r *Runner) runStep(ctx context.Context, cwd string, step Step) (StepResult, string) {
	stepCtx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	cmd := exec.CommandContext(stepCtx, step.Command, step.Args...)
	cmd.Dir = cwd

	var buf bytes.Buffer
	cmd.Stdout = &buf
	cmd.Stderr = &buf

	err := cmd.Run()
	sr := StepResult{Step: step, ExitOK: err == nil}
	if stepCtx.Err() == context.DeadlineExceeded {
		sr.TimedOut = true
		r.logger.Warn("compile step timed out",
			zap.String("command", step.Command),
			zap.Duration("timeout", r.timeout))
	} else if err != nil {
		r.logger.Warn("compile step failed",
			zap.String("command", step.Command),
			zap.Error(err))
	}

	return sr, buf.String()
}

// ReadLog 读取引擎写出的 .log 文件，不存在时返回空串
func ReadLog(doc *document.Document) (string, error) {
	raw, err := os.ReadFile(doc.LogPath())
	if err != nil {
		if os.IsNotExist(err) {
			return "", nil
		}
		return "", fmt.Errorf("failed to read compile log: %w", err)
	}
	return string(raw), nil
}
