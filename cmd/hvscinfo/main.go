package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/shiroemons/go-hvsc/internal/hvscinfo/app"
	"github.com/shiroemons/go-hvsc/internal/hvscinfo/config"
	hvscerrors "github.com/shiroemons/go-hvsc/internal/hvscinfo/errors"
)

func main() {
	// コマンドライン引数の解析
	cfg := config.ParseFlags()

	// バージョン表示の処理
	config.HandleVersion(cfg.ShowVersion)

	// Ctrl+C で処理中のファイルの後に中断する
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// アプリケーションの実行
	application := app.New(cfg)
	if err := application.Run(ctx); err != nil {
		// ファイルごとのエラーは Run の中で表示済み
		var reportErr *hvscerrors.ReportError
		if !errors.As(err, &reportErr) || errors.Is(err, app.ErrCompare) {
			fmt.Fprintf(os.Stderr, "エラー: %v\n", err)
		}
		stop()
		os.Exit(1)
	}
}
