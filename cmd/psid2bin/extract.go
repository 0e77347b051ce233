package main

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/shiroemons/go-hvsc/internal/hvscinfo/fileutil"
	"github.com/shiroemons/go-hvsc/pkg/hvsc"
)

// 変換ジョブを表す構造体
type convertJob struct {
	inPath  string
	outPath string
}

// 並列変換処理に使用するコンテキスト
type convertContext struct {
	jobs    chan convertJob
	results chan convertResult
	wg      sync.WaitGroup
	mu      sync.Mutex // 出力用のミューテックス
}

// 変換結果
type convertResult struct {
	inPath  string
	outPath string
	err     error
}

// errDuplicateOutput は出力ファイルが他の入力の出力と重なる場合のエラー
var errDuplicateOutput = errors.New("出力ファイル名が他の入力と重複しています")

// planJobs は入力ごとの出力パスを決めます。
// 先の入力と同じ出力パスになる入力は変換せず、失敗として返します。
// 大文字小文字だけが異なる名前も同じファイルとみなします。
func planJobs(files []string, outDir string) (jobs []convertJob, skipped []convertResult) {
	seen := make(map[string]string, len(files))
	for _, f := range files {
		outPath := filepath.Join(outDir, fileutil.BinaryFilename(f))
		key := strings.ToLower(filepath.Clean(outPath))
		if first, ok := seen[key]; ok {
			skipped = append(skipped, convertResult{
				inPath:  f,
				outPath: outPath,
				err:     fmt.Errorf("%w: %s (%s)", errDuplicateOutput, outPath, first),
			})
			continue
		}
		seen[key] = f
		jobs = append(jobs, convertJob{inPath: f, outPath: outPath})
	}
	return jobs, skipped
}

// 並列処理で変換を実行
func convertParallel(files []string, outDir string, numWorkers int) (successCount int, err error) {
	if numWorkers <= 0 {
		numWorkers = 4 // デフォルトのワーカー数
	}

	// 出力ディレクトリを作成
	if errMkdir := os.MkdirAll(outDir, 0755); errMkdir != nil {
		err = fmt.Errorf("出力ディレクトリを作成できません: %w", errMkdir)
		return
	}

	jobs, skipped := planJobs(files, outDir)

	ctx := &convertContext{
		jobs:    make(chan convertJob, numWorkers*2),
		results: make(chan convertResult, numWorkers*2),
	}

	// 出力が重なる入力は変換前に失敗として扱う
	var resultErr error
	for _, result := range skipped {
		fmt.Fprintf(os.Stderr, "変換に失敗しました: %s - %v\n", result.inPath, result.err)
		if resultErr == nil {
			resultErr = fmt.Errorf("変換エラー: %s: %w", result.inPath, result.err)
		}
	}

	// ワーカーを起動
	for i := 0; i < numWorkers; i++ {
		ctx.wg.Add(1)
		go convertWorker(ctx)
	}

	// 結果処理用のgoroutineを起動
	resultDone := make(chan struct{})
	go func() {
		for result := range ctx.results {
			if result.err == nil {
				successCount++
				if *debugFlag {
					ctx.mu.Lock()
					fmt.Printf("成功: %s -> %s\n", result.inPath, result.outPath)
					ctx.mu.Unlock()
				}
				continue
			}
			ctx.mu.Lock()
			fmt.Fprintf(os.Stderr, "変換に失敗しました: %s - %v\n", result.inPath, result.err)
			ctx.mu.Unlock()
			if resultErr == nil { // 最初のエラーを保持
				resultErr = fmt.Errorf("変換エラー: %s: %w", result.inPath, result.err)
			}
		}
		close(resultDone)
	}()

	// ジョブを投入
	for _, job := range jobs {
		ctx.jobs <- job
	}

	// 全てのジョブが投入されたらチャネルを閉じる
	close(ctx.jobs)

	// 全てのワーカーが終了するのを待つ
	ctx.wg.Wait()
	close(ctx.results)

	// 結果処理goroutineの終了を待つ
	<-resultDone

	err = resultErr
	return
}

// 変換ワーカー
func convertWorker(ctx *convertContext) {
	defer ctx.wg.Done()

	for job := range ctx.jobs {
		ctx.results <- convertResult{
			inPath:  job.inPath,
			outPath: job.outPath,
			err:     convertFile(job.inPath, job.outPath),
		}
	}
}

// 並列処理なしで変換
func convertSequential(files []string, outDir string) (successCount int, err error) {
	// 出力ディレクトリを作成
	if errMkdir := os.MkdirAll(outDir, 0755); errMkdir != nil {
		err = fmt.Errorf("出力ディレクトリを作成できません: %w", errMkdir)
		return
	}

	jobs, skipped := planJobs(files, outDir)

	var firstError error
	for _, result := range skipped {
		fmt.Fprintf(os.Stderr, "変換に失敗しました: %s - %v\n", result.inPath, result.err)
		if firstError == nil {
			firstError = fmt.Errorf("変換エラー: %s: %w", result.inPath, result.err)
		}
	}

	for _, job := range jobs {
		f, outPath := job.inPath, job.outPath
		if errConvert := convertFile(f, outPath); errConvert != nil {
			fmt.Fprintf(os.Stderr, "変換に失敗しました: %s - %v\n", f, errConvert)
			// エラーがあっても続行するが、最初のエラーは記録しておく
			if firstError == nil {
				firstError = fmt.Errorf("変換エラー: %s: %w", f, errConvert)
			}
			continue
		}
		if *debugFlag {
			fmt.Printf("成功: %s -> %s\n", f, outPath)
		}
		successCount++
	}

	err = firstError
	return
}

// convertFile はPSIDファイルを読み込み、C64のロードイメージを outPath に書き出します
func convertFile(inPath, outPath string) error {
	psid, err := hvsc.OpenPSID(inPath)
	if err != nil {
		return err
	}

	outFile, err := os.Create(outPath)
	if err != nil {
		return err
	}

	// バッファ付きライターを使用
	writer := bufio.NewWriter(outFile)
	writeErr := psid.WriteBinaryTo(writer)
	flushErr := writer.Flush()
	closeErr := outFile.Close()

	switch {
	case writeErr != nil:
		err = writeErr
	case flushErr != nil:
		err = flushErr
	case closeErr != nil:
		err = closeErr
	}
	if err != nil {
		os.Remove(outPath) // 失敗したらファイルを削除
		return err
	}
	return nil
}
