package main

import (
	"os"

	"github.com/nerdneilsfield/go-latex-fixer/internal/cli"
	"github.com/nerdneilsfield/go-latex-fixer/internal/logger"
	"go.uber.org/zap"
)

// 构建时通过 -ldflags 注入
var (
	Version   = "dev"
	Commit    = "none"
	BuildDate = "unknown"
)

func main() {
	log := logger.NewLogger(false)
	defer func() { _ = log.Sync() }()

	if err := cli.NewRootCommand(Version, Commit, BuildDate).Execute(); err != nil {
		log.Error("命令执行失败", zap.Error(err))
		os.Exit(1)
	}
}
