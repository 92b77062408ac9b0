package main

import (
	"context"
	"flag"
	"log/slog"
	"os"

	"github.com/oracle312/AuthService/internal/auth"
	"github.com/oracle312/AuthService/internal/config"
	"github.com/oracle312/AuthService/internal/database"
	"github.com/oracle312/AuthService/internal/mail"
	"github.com/oracle312/AuthService/internal/repository"
	"github.com/oracle312/AuthService/internal/seed"
)

func main() {
	var op int
	var n int
	var file string

	flag.IntVar(&op, "op", 0, "要执行的操作 (1: 插入随机用户, 2: 从 CSV 文件导入用户)")
	flag.IntVar(&n, "n", 5, "要插入的随机用户数量")
	flag.StringVar(&file, "file", "", "CSV 文件路径")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	// 读取配置文件
	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Error("无法读取配置文件", slog.String("error", err.Error()))
		os.Exit(1)
	}

	ctx := context.Background()

	dbpool, err := database.Open(ctx, cfg)
	if err != nil {
		logger.Error("无法连接到数据库", "error", err)
		os.Exit(1)
	}
	defer dbpool.Close()

	if _, err := database.Migrate(ctx, dbpool, cfg.Database.Driver); err != nil {
		logger.Error("无法执行数据库迁移", "error", err)
		return
	}

	// 批量导入时不发送欢迎邮件
	authenticator, err := auth.NewAuthenticator(cfg, repository.NewStore(cfg, dbpool), auth.NopGuard{}, mail.NopPublisher{})
	if err != nil {
		logger.Error("无法创建认证器", "error", err)
		return
	}

	// 执行操作
	switch op {
	case 0:
		slog.Error("未指定操作")
	case 1:
		if n <= 0 {
			slog.Error("请输入合法的用户数量")
			return
		}

		cnt, err := seed.SeedRandom(ctx, authenticator, n, cfg.Seed.User.Password, cfg.Seed.User.Domain)
		if err != nil {
			slog.Error("无法插入用户", slog.String("error", err.Error()))
		}
		slog.Info("插入用户成功", slog.Int("count", cnt))
	case 2:
		if file == "" {
			slog.Error("请指定 CSV 文件")
			return
		}

		f, err := os.Open(file)
		if err != nil {
			slog.Error("打开文件失败", "error", err)
			return
		}
		defer f.Close()

		if _, err := seed.SeedFromCSV(ctx, authenticator, f); err != nil {
			slog.Error("导入用户失败", slog.String("error", err.Error()))
		}
	default:
		slog.Error("指定的操作非法")
	}
}
