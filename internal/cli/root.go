package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/nerdneilsfield/go-latex-fixer/internal/compile"
	"github.com/nerdneilsfield/go-latex-fixer/internal/config"
	"github.com/nerdneilsfield/go-latex-fixer/internal/document"
	"github.com/nerdneilsfield/go-latex-fixer/internal/latexfix"
	"github.com/nerdneilsfield/go-latex-fixer/internal/latexfix/logparse"
	"github.com/nerdneilsfield/go-latex-fixer/internal/logger"
	"github.com/nerdneilsfield/go-latex-fixer/internal/sanitize"
)

var (
	// 命令行标志变量
	cfgFile       string
	logFile       string // 编译日志路径，交给诊断分类器
	customTables  string // 替换表叠加文件（TOML）
	checkOnly     bool   // 只检查不改写
	fixMode       bool   // 启用修复引擎
	autoDetectLog bool   // 自动探测 .log 文件
	dryRun        bool   // 预演模式，只显示将要执行的变更
	tablesOnly    bool   // 只净化表格环境
	compileAfter  bool   // 处理后调用排版引擎编译
	jsonOutput    bool   // 输出 JSON 报告
	maxRounds     int    // 编译-修复的最大轮数，0 表示用配置值
	debugMode     bool
	verboseMode   bool
)

// NewRootCommand 创建根命令
func NewRootCommand(version, commit, buildDate string) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "latexfixer [flags] input_file [output_file]",
		Short: "latexfixer 是一个 LaTeX 文档净化与自动修复工具",
		Long: `latexfixer 把 LaTeX 源文档切分为受保护区域（数学、注释、宏定义、命名环境）
和普通文本区域，只对普通区域做字符级净化，校验环境开闭是否配平，
并根据编译日志做尽力而为的自动修复。

典型用法:
  latexfixer draft.tex cleaned.tex          净化文档
  latexfixer --check draft.tex              只检查，不改写
  latexfixer --fix --log main.log main.tex  按编译日志修复
  latexfixer --fix --compile main.tex       编译-修复循环`,
		Version: fmt.Sprintf("%s (commit %s, built %s)", version, commit, buildDate),
		Args:    cobra.RangeArgs(1, 2),
		Run: func(cmd *cobra.Command, args []string) {
			log := logger.NewLoggerWithVerbose(debugMode, verboseMode)
			defer func() {
				_ = log.Sync()
			}()

			if err := runPipeline(args, log); err != nil {
				if !errors.Is(err, errUnresolvedIssues) {
					log.Error("执行失败", zap.Error(err))
				}
				os.Exit(1)
			}
		},
	}

	rootCmd.Flags().StringVarP(&cfgFile, "config", "c", "", "配置文件路径")
	rootCmd.Flags().StringVar(&logFile, "log", "", "编译日志文件路径")
	rootCmd.Flags().StringVar(&customTables, "tables", "", "替换表叠加文件（TOML）")
	rootCmd.Flags().BoolVar(&checkOnly, "check", false, "只检查问题，不改写文档")
	rootCmd.Flags().BoolVar(&fixMode, "fix", false, "运行修复引擎")
	rootCmd.Flags().BoolVar(&autoDetectLog, "auto-detect", false, "自动探测文档对应的 .log 文件")
	rootCmd.Flags().BoolVar(&dryRun, "dry-run", false, "预演模式，显示变更但不写文件")
	rootCmd.Flags().BoolVar(&tablesOnly, "tables-only", false, "只净化表格环境")
	rootCmd.Flags().BoolVar(&compileAfter, "compile", false, "处理后调用排版引擎编译")
	rootCmd.Flags().BoolVar(&jsonOutput, "json", false, "输出 JSON 格式的报告")
	rootCmd.Flags().IntVar(&maxRounds, "max-rounds", 0, "编译-修复的最大轮数（默认取配置）")
	rootCmd.Flags().BoolVar(&debugMode, "debug", false, "调试模式")
	rootCmd.Flags().BoolVarP(&verboseMode, "verbose", "v", false, "显示详细日志")

	return rootCmd
}

// errUnresolvedIssues 修复后仍有未解决的问题。
// 流水线照常产出尽力而为的输出，只通过退出码向调用方传达。
var errUnresolvedIssues = errors.New("unresolved issues remain")

// runPipeline 执行一次完整的流水线运行
func runPipeline(args []string, log *zap.Logger) error {
	cfg, err := config.LoadConfig(cfgFile)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if maxRounds > 0 {
		cfg.MaxFixRounds = maxRounds
	}

	runID := uuid.New().String()
	log = log.With(zap.String("run_id", runID))

	inputPath := args[0]
	outputPath := inputPath
	if len(args) == 2 {
		outputPath = args[1]
	}

	doc, err := document.Load(inputPath, log)
	if err != nil {
		return err
	}

	tablesPath := customTables
	if tablesPath == "" {
		tablesPath = cfg.CustomTablesPath
	}
	tables, err := config.LoadTables(tablesPath)
	if err != nil {
		return err
	}

	report := &Report{RunID: runID, Input: inputPath, Stats: doc.CountStats()}

	switch {
	case checkOnly:
		err = runCheck(doc, report, log)
	case fixMode:
		err = runFix(doc, outputPath, cfg, report, log)
	default:
		err = runClean(doc, outputPath, tables, report, log)
	}
	if err != nil && !errors.Is(err, errUnresolvedIssues) {
		return err
	}

	// 未解决的问题只影响退出码，报告必须照常写出
	if jsonOutput {
		if werr := report.WriteJSON(); werr != nil {
			return werr
		}
	}
	return err
}

// runCheck 只检查：环境配平加上（可选的）编译日志分类
func runCheck(doc *document.Document, report *Report, log *zap.Logger) error {
	issues := latexfix.NewBalanceChecker(log).Check(doc.Text)

	logContent, err := loadLogContent(doc)
	if err != nil {
		return err
	}
	if logContent != "" {
		issues = append(issues, logparse.NewParser(log).Parse(logContent)...)
	}

	report.Issues = issues
	if !jsonOutput {
		renderIssues(issues)
		renderStats(report.Stats)
	}

	if len(issues) > 0 {
		return errUnresolvedIssues
	}
	return nil
}

// runClean 净化文档：非 ASCII 归一化加区域感知的字符转义
func runClean(doc *document.Document, outputPath string, tables *sanitize.Tables, report *Report, log *zap.Logger) error {
	san := sanitize.New(tables, log)

	var cleaned string
	if tablesOnly {
		cleaned = san.SanitizeTablesOnly(doc.Text)
	} else {
		cleaned = san.SanitizeDocument(doc.Text)
	}

	report.Issues = latexfix.NewBalanceChecker(log).Check(cleaned)

	if dryRun {
		renderDiff(doc.Text, cleaned)
		renderIssues(report.Issues)
		return nil
	}

	if err := doc.WithText(cleaned).Save(outputPath); err != nil {
		return err
	}
	log.Info("净化完成",
		zap.String("output", outputPath),
		zap.Int("issues", len(report.Issues)))

	if !jsonOutput {
		renderIssues(report.Issues)
		renderStats(report.Stats)
	}
	return nil
}

// runFix 修复文档。--compile 时进入编译-修复循环，
// 否则按给定（或自动探测）的日志做单轮修复。
func runFix(doc *document.Document, outputPath string, cfg *config.Config, report *Report, log *zap.Logger) error {
	if compileAfter {
		// 编译需要文档先落盘，和预演模式互斥
		if dryRun {
			return errors.New("--dry-run cannot be combined with --compile")
		}
		return runFixWithCompile(doc, outputPath, cfg, report, log)
	}

	logContent, err := loadLogContent(doc)
	if err != nil {
		return err
	}

	parser := logparse.NewParser(log)
	var issues []*latexfix.Issue
	if logContent != "" {
		issues = parser.Parse(logContent)
	}

	engine := latexfix.NewEngine(doc.Dir(), cfg.ImageExtensions, log)
	fixed, fixes := engine.Repair(doc.Text, issues)
	report.Fixes = fixes

	if dryRun {
		renderFixes(fixes)
		return nil
	}

	if err := doc.WithText(fixed).Save(outputPath); err != nil {
		return err
	}

	// 修复后重新校验
	residual := latexfix.NewBalanceChecker(log).Check(fixed)
	report.Issues = residual
	if !jsonOutput {
		renderFixes(fixes)
		renderIssues(residual)
	}

	if len(residual) > 0 {
		return errUnresolvedIssues
	}
	return nil
}

// runFixWithCompile 有界的编译-修复循环。
// 每一轮是完整独立的流水线运行，轮与轮之间只有文档文本在演进。
func runFixWithCompile(doc *document.Document, outputPath string, cfg *config.Config, report *Report, log *zap.Logger) error {
	runner := compile.NewRunner(time.Duration(cfg.CompileTimeout)*time.Second, log)
	parser := logparse.NewParser(log)
	engine := latexfix.NewEngine(doc.Dir(), cfg.ImageExtensions, log)

	if err := doc.Save(outputPath); err != nil {
		return err
	}
	current := &document.Document{Path: outputPath, Text: doc.Text}

	for round := 1; round <= cfg.MaxFixRounds; round++ {
		log.Info("编译-修复轮次",
			zap.Int("round", round),
			zap.Int("max", cfg.MaxFixRounds))

		result, err := runner.Compile(context.Background(), current)
		if err != nil {
			return err
		}
		if result.Success {
			fmt.Printf("编译成功: %s\n", result.PDFPath)
			return nil
		}

		issues := parser.Parse(result.Output)
		if logContent, err := compile.ReadLog(current); err == nil && logContent != "" {
			issues = append(issues, parser.Parse(logContent)...)
		}
		report.Issues = issues

		fixed, fixes := engine.Repair(current.Text, issues)
		report.Fixes = append(report.Fixes, fixes...)
		if !jsonOutput {
			renderIssues(issues)
			renderFixes(fixes)
		}
		if len(fixes) == 0 {
			// 没有可用的修复，再编译也不会有变化
			break
		}

		current = current.WithText(fixed)
		if err := current.Save(outputPath); err != nil {
			return err
		}
	}

	return errUnresolvedIssues
}

// loadLogContent 取编译日志内容：显式指定的 --log 优先，
// 其次在 --auto-detect 时找文档旁边的 .log 文件
func loadLogContent(doc *document.Document) (string, error) {
	if logFile != "" {
		raw, err := os.ReadFile(logFile)
		if err != nil {
			return "", fmt.Errorf("failed to read log file: %w", err)
		}
		return string(raw), nil
	}
	if autoDetectLog {
		return compile.ReadLog(doc)
	}
	return "", nil
}
