// Package config はhvscinfoコマンドの設定管理を行います
package config

import (
	"flag"
	"fmt"
	"os"
)

const Version = "0.1.0"

// EnvHVSCBase はHVSCルートを指定する環境変数
const EnvHVSCBase = "HVSC_BASE"

// Config はアプリケーションの設定を保持します
type Config struct {
	Root        string   // HVSCルート。空なら自動検出
	Tune        int      // 表示するサブチューン。0なら全て
	UseMD5      bool     // SLDBをMD5で検索する
	OutputDir   string   // レポートの保存先。空なら保存しない
	Compare     string   // 差分を表示する比較対象のPSIDファイル
	Width       int      // 折り返し幅。0なら端末から取得
	DebugMode   bool
	ShowVersion bool
	Files       []string // PSIDファイル
}

// ParseFlags はコマンドライン引数を解析して設定を返します
func ParseFlags() *Config {
	return ParseFlagSet(flag.CommandLine, os.Args[1:])
}

// ParseFlagSet は指定されたFlagSetで引数を解析します
func ParseFlagSet(fs *flag.FlagSet, args []string) *Config {
	config := &Config{}

	// カスタムUsage関数を設定（ダブルハイフン表示）
	fs.Usage = func() {
		out := fs.Output()
		fmt.Fprintf(out, "Usage of %s: [options] <file.sid>...\n", fs.Name())
		fmt.Fprintln(out, "  --root string")
		fmt.Fprintln(out, "    \tHVSC root directory (default $HVSC_BASE, or detected from the SID path)")
		fmt.Fprintln(out, "  -r string")
		fmt.Fprintln(out, "    \tHVSC root directory (shorthand)")
		fmt.Fprintln(out, "  --tune int")
		fmt.Fprintln(out, "    \tonly show STIL info for this subtune")
		fmt.Fprintln(out, "  -t int")
		fmt.Fprintln(out, "    \tonly show STIL info for this subtune (shorthand)")
		fmt.Fprintln(out, "  --md5")
		fmt.Fprintln(out, "    \tlook up song lengths by MD5 digest instead of path")
		fmt.Fprintln(out, "  -o string")
		fmt.Fprintln(out, "    \tsave each report to this directory")
		fmt.Fprintln(out, "  --compare string")
		fmt.Fprintln(out, "    \tshow a unified diff against the report of another SID file")
		fmt.Fprintln(out, "  --width int")
		fmt.Fprintln(out, "    \twrap width of the report (default: terminal width)")
		fmt.Fprintln(out, "  --debug")
		fmt.Fprintln(out, "    \tenable debug output")
		fmt.Fprintln(out, "  -d\tenable debug output (shorthand)")
		fmt.Fprintln(out, "  --version")
		fmt.Fprintln(out, "    \tshow version information")
		fmt.Fprintln(out, "  -v\tshow version information (shorthand)")
	}

	// HVSCルート
	defaultRoot := os.Getenv(EnvHVSCBase)
	fs.StringVar(&config.Root, "root", defaultRoot, "HVSC root directory")
	fs.StringVar(&config.Root, "r", defaultRoot, "HVSC root directory (shorthand)")

	// サブチューン
	fs.IntVar(&config.Tune, "tune", 0, "only show STIL info for this subtune")
	fs.IntVar(&config.Tune, "t", 0, "only show STIL info for this subtune (shorthand)")

	fs.BoolVar(&config.UseMD5, "md5", false, "look up song lengths by MD5 digest instead of path")

	// 出力ディレクトリ
	fs.StringVar(&config.OutputDir, "o", "", "save each report to this directory")

	fs.StringVar(&config.Compare, "compare", "", "show a unified diff against the report of another SID file")
	fs.IntVar(&config.Width, "width", 0, "wrap width of the report")

	// デバッグモード
	fs.BoolVar(&config.DebugMode, "debug", false, "enable debug output")
	fs.BoolVar(&config.DebugMode, "d", false, "enable debug output (shorthand)")

	// バージョン表示
	fs.BoolVar(&config.ShowVersion, "version", false, "show version information")
	fs.BoolVar(&config.ShowVersion, "v", false, "show version information (shorthand)")

	// ExitOnError 以外のFlagSetではエラーを無視して既定値を使う
	_ = fs.Parse(args)

	config.Files = fs.Args()
	return config
}

// HandleVersion はバージョン表示を処理します
func HandleVersion(showVersion bool) {
	if showVersion {
		fmt.Printf("hvscinfo version %s\n", Version)
		os.Exit(0)
	}
}

// DebugLogger はデバッグ出力を管理します
type DebugLogger struct {
	enabled bool
}

// NewDebugLogger は新しいDebugLoggerを作成します
func NewDebugLogger(enabled bool) *DebugLogger {
	return &DebugLogger{enabled: enabled}
}

// Printf はデバッグモードが有効な場合のみメッセージを表示します
func (d *DebugLogger) Printf(format string, a ...any) {
	if d.enabled {
		fmt.Printf(format, a...)
	}
}
