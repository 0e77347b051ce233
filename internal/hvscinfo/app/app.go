// Package app はアプリケーションのメインロジックを実装します
package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/shiroemons/go-hvsc/internal/hvscinfo/config"
	hvscerrors "github.com/shiroemons/go-hvsc/internal/hvscinfo/errors"
	"github.com/shiroemons/go-hvsc/internal/hvscinfo/fileutil"
	"github.com/shiroemons/go-hvsc/internal/hvscinfo/interfaces"
	"github.com/shiroemons/go-hvsc/internal/hvscinfo/models"
	"github.com/shiroemons/go-hvsc/internal/hvscinfo/report"
	"github.com/shiroemons/go-hvsc/pkg/hvsc"
)

// App はアプリケーションのメインロジックを管理します
type App struct {
	config     *config.Config
	logger     interfaces.Logger
	fs         interfaces.FileSystem
	rootFinder interfaces.RootFinder
	source     interfaces.MetadataSource
	renderer   *report.Renderer
	stdout     io.Writer
	stderr     io.Writer
}

// Options はAppの設定オプション
type Options struct {
	FileSystem interfaces.FileSystem
	RootFinder interfaces.RootFinder

	// Source を指定するとHVSCルートの検出を行わずにこのデータベースを使います
	Source interfaces.MetadataSource

	Stdout io.Writer
	Stderr io.Writer
}

// New は新しいAppを作成します
func New(cfg *config.Config) *App {
	return NewWithOptions(cfg, Options{})
}

// NewWithOptions は新しいAppをオプション付きで作成します
func NewWithOptions(cfg *config.Config, opts Options) *App {
	logger := config.NewDebugLogger(cfg.DebugMode)

	// デフォルトのファイルシステムを設定
	fs := opts.FileSystem
	if fs == nil {
		fs = fileutil.NewOSFileSystem()
	}

	rootFinder := opts.RootFinder
	if rootFinder == nil {
		rootFinder = fileutil.NewRootFinderWithFS(fs)
	}

	// 幅の指定がなく標準出力に書く場合は端末の幅に合わせる
	width := cfg.Width
	stdout := opts.Stdout
	if stdout == nil {
		stdout = os.Stdout
		if width == 0 {
			width = report.DetectWidth(int(os.Stdout.Fd()))
		}
	}

	stderr := opts.Stderr
	if stderr == nil {
		stderr = os.Stderr
	}

	return &App{
		config:     cfg,
		logger:     logger,
		fs:         fs,
		rootFinder: rootFinder,
		source:     opts.Source,
		renderer:   report.NewRenderer(width),
		stdout:     stdout,
		stderr:     stderr,
	}
}

// Run はアプリケーションを実行します。
// ファイルごとのエラーは表示して処理を続け、最初のエラーを返します。
func (a *App) Run(ctx context.Context) error {
	if len(a.config.Files) == 0 {
		return hvscerrors.ErrNoPSIDFiles
	}

	source, err := a.metadataSource(ctx)
	if err != nil {
		return err
	}
	if c, ok := source.(*hvsc.Collection); ok {
		defer c.Close()
	}

	var firstError error
	var firstReport string
	for i, path := range a.config.Files {
		if i > 0 {
			fmt.Fprintln(a.stdout)
		}
		text, err := a.processFile(ctx, source, path)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return err
			}
			fmt.Fprintf(a.stderr, "エラー: %v\n", err)
			if firstError == nil {
				firstError = err
			}
			continue
		}
		if i == 0 {
			firstReport = text
		}
	}

	if a.config.Compare != "" && firstError == nil {
		if err := a.compare(ctx, source, a.config.Files[0], firstReport); err != nil {
			return err
		}
	}

	return firstError
}

// metadataSource は検索に使うデータベースを返します
func (a *App) metadataSource(ctx context.Context) (interfaces.MetadataSource, error) {
	// コンテキストのキャンセルチェック
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	if a.source != nil {
		return a.source, nil
	}

	root := a.config.Root
	if root == "" {
		found, err := a.rootFinder.Find(a.config.Files[0])
		if err != nil {
			return nil, err
		}
		root = found
		a.logger.Printf("HVSCルートを自動検出しました: %s\n", root)
	}
	root, err := a.absPath(root)
	if err != nil {
		return nil, err
	}

	opts := hvsc.Options{Logger: a.logger}
	if a.config.UseMD5 {
		opts.SLDB = hvsc.MD5Strategy{}
	}
	return hvsc.NewCollectionWithOptions(root, opts), nil
}

// processFile はPSIDファイル1つのレポートを作成して出力します
func (a *App) processFile(ctx context.Context, source interfaces.MetadataSource, path string) (string, error) {
	rep, err := a.buildReport(ctx, source, path)
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return "", err
		}
		return "", hvscerrors.NewReportError(path, err)
	}

	text := a.renderer.Render(rep)
	fmt.Fprint(a.stdout, text)

	if a.config.OutputDir != "" {
		outputPath := filepath.Join(a.config.OutputDir, fileutil.GenerateOutputFilename(path))
		if err := fileutil.SaveToFile(a.fs, outputPath, text); err != nil {
			return "", hvscerrors.NewReportError(path, fmt.Errorf("%w: %w", ErrSaveFile, err))
		}
		a.logger.Printf("レポートを %s に保存しました\n", outputPath)
	}
	return text, nil
}

// buildReport はPSIDヘッダと各データベースの情報を集めます
func (a *App) buildReport(ctx context.Context, source interfaces.MetadataSource, path string) (*models.Report, error) {
	// コンテキストのキャンセルチェック
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	// 検索キーはHVSCルートからのパスなので、相対パスは作業ディレクトリから解決する
	abs, err := a.absPath(path)
	if err != nil {
		return nil, err
	}

	if info, err := a.fs.Stat(abs); err == nil && info.IsDir() {
		return nil, fmt.Errorf("%w: %s", ErrIsDirectory, path)
	}

	data, err := a.fs.ReadFile(abs)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrReadFile, err)
	}
	p, err := hvsc.ParsePSID(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", hvscerrors.ErrInvalidPSID, err)
	}
	p.Path = abs

	rep := &models.Report{
		Path: path,
		Key:  source.RelativePath(abs),
		PSID: p,
		Tune: a.config.Tune,
	}
	if rep.Tune > int(p.Songs) {
		a.warn(rep, fmt.Sprintf("サブチューン %d はありません (全%d曲)", rep.Tune, p.Songs))
	}

	lookups := []struct {
		database string
		lookup   func() error
	}{
		{"SLDB", func() (err error) {
			rep.SongLengths, err = source.SongLengths(abs)
			return err
		}},
		{"STIL", func() (err error) {
			rep.STIL, err = source.STIL(abs)
			return err
		}},
		{"STIL", func() (err error) {
			rep.DirectoryComment, err = source.STILDirectoryComment(abs)
			return err
		}},
		{"BUGlist", func() (err error) {
			rep.Bugs, err = source.Bugs(abs)
			return err
		}},
	}

	for _, l := range lookups {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		err := l.lookup()
		switch {
		case err == nil:
		case errors.Is(err, hvsc.ErrNotFound):
			a.logger.Printf("%s: %s のエントリはありません\n", l.database, rep.Key)
		default:
			a.warn(rep, hvscerrors.NewLookupError(l.database, path, err).Error())
		}
	}
	return rep, nil
}

// absPath は作業ディレクトリからの相対パスを絶対パスにします
func (a *App) absPath(path string) (string, error) {
	if filepath.IsAbs(path) {
		return filepath.Clean(path), nil
	}
	wd, err := a.fs.Getwd()
	if err != nil {
		return "", fmt.Errorf("%w: %w", fileutil.ErrGetCurrentDirectory, err)
	}
	return filepath.Join(wd, path), nil
}

// warn は警告をレポートに記録し、標準エラーにも表示します
func (a *App) warn(rep *models.Report, msg string) {
	rep.Warnings = append(rep.Warnings, msg)
	fmt.Fprintf(a.stderr, "警告: %s\n", msg)
}

// compare は最初のファイルと -compare のファイルのレポートの差分を表示します
func (a *App) compare(ctx context.Context, source interfaces.MetadataSource, path, text string) error {
	rep, err := a.buildReport(ctx, source, a.config.Compare)
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return err
		}
		return fmt.Errorf("%w: %w", ErrCompare, hvscerrors.NewReportError(a.config.Compare, err))
	}
	other := a.renderer.Render(rep)

	diff, err := report.Diff(path, text, a.config.Compare, other)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrCompare, err)
	}
	if diff == "" {
		a.logger.Printf("%s と %s のレポートに差分はありません\n", path, a.config.Compare)
		return nil
	}
	fmt.Fprintf(a.stdout, "\n%s", diff)
	return nil
}
