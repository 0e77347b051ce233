package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/shiroemons/go-hvsc/internal/hvscinfo/fileutil"
	"github.com/shiroemons/go-hvsc/pkg/hvsc"
)

var (
	listFlag     = flag.Bool("l", false, "list PSID header")
	outputDir    = flag.String("o", ".", "output directory")
	debugFlag    = flag.Bool("d", false, "debug mode (show more info)")
	parallelFlag = flag.Bool("p", false, "use parallel conversion")
	workerCount  = flag.Int("w", 4, "number of worker threads for parallel conversion")
)

func main() {
	flag.Parse()

	// 引数チェック
	files := flag.Args()
	if len(files) < 1 {
		fmt.Println("使用方法: psid2bin [オプション] <PSIDファイル>...")
		fmt.Println("オプション:")
		flag.PrintDefaults()
		os.Exit(1)
	}

	for _, f := range files {
		if !fileutil.IsPSIDFile(f) {
			fmt.Fprintf(os.Stderr, "警告: 拡張子が .sid ではありません: %s\n", f)
		}
	}

	// ヘッダを表示する
	if *listFlag {
		for _, f := range files {
			if err := listPSID(f); err != nil {
				fmt.Fprintf(os.Stderr, "エラー: %v\n", err)
			}
		}
		return
	}

	fmt.Printf("%d 個のPSIDファイルを変換中...\n", len(files))

	var count int
	var err error
	if *parallelFlag {
		// 並列処理で変換
		count, err = convertParallel(files, *outputDir, *workerCount)
	} else {
		// 順次処理で変換
		count, err = convertSequential(files, *outputDir)
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "変換処理中にエラーが発生しました: %v\n", err)
	}
	if err == nil || count > 0 {
		fmt.Printf("\n%d 個のファイルを変換しました\n", count)
	}
	if err != nil && count == 0 {
		os.Exit(1)
	}
}

// listPSID はPSIDヘッダを表示します
func listPSID(path string) error {
	psid, err := hvsc.OpenPSID(path)
	if err != nil {
		return err
	}
	fmt.Printf("%s:\n", path)
	return psid.Dump(os.Stdout)
}
