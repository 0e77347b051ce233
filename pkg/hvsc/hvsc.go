// Package hvsc は High Voltage SID Collection (HVSC) のメタデータを読み込むためのパッケージです。
//
// 対応するファイル:
//   - PSID/RSID: C64 SID 音楽ファイルのヘッダ
//   - DOCUMENTS/Songlengths.md5: サブチューンごとの演奏時間 (SLDB)
//   - DOCUMENTS/STIL.txt: SID Tune Information List
//   - DOCUMENTS/BUGlist.txt: 既知の不具合リスト
//
// 基本的な使い方:
//
//	c := hvsc.NewCollection("/home/user/C64Music")
//	defer c.Close()
//
//	lengths, err := c.SongLengths("/home/user/C64Music/MUSICIANS/H/Hubbard_Rob/Commando.sid")
//	if errors.Is(err, hvsc.ErrNotFound) {
//	    // SLDB にエントリがない
//	}
//
//	stil, err := c.STIL("/home/user/C64Music/MUSICIANS/H/Hubbard_Rob/Commando.sid")
//	if err == nil {
//	    if entry, err := stil.TuneEntry(1); err == nil {
//	        entry.Dump(os.Stdout)
//	    }
//	}
//
// 各検索はデータベースファイルを毎回開き直して先頭から線形に走査します。
// 検索間で共有される状態はなく、Collection は Close するまで読み取り専用です。
package hvsc

import (
	"path/filepath"
	"strings"
)

const (
	// SLDBFile はHVSCルートからのSLDBファイルの相対パス
	SLDBFile = "DOCUMENTS/Songlengths.md5"

	// STILFile はHVSCルートからのSTILファイルの相対パス
	STILFile = "DOCUMENTS/STIL.txt"

	// BugsFile はHVSCルートからのBUGlistファイルの相対パス
	BugsFile = "DOCUMENTS/BUGlist.txt"
)

// Logger はデバッグ出力のインターフェース
type Logger interface {
	Printf(format string, a ...any)
}

// nopLogger は何も出力しないLogger
type nopLogger struct{}

func (nopLogger) Printf(string, ...any) {}

// Options はCollectionの設定オプション
type Options struct {
	// SLDBFile, STILFile, BugsFile はルートからの相対パス。空ならデフォルト値を使います
	SLDBFile string
	STILFile string
	BugsFile string

	// SLDB はSongLengthsで使う検索方法。nil ならPathStrategy
	SLDB SLDBStrategy

	// Logger はデバッグ出力先。nil なら出力しません
	Logger Logger
}

// Collection はHVSCのルートディレクトリと各データベースのパスを保持します
type Collection struct {
	root     string
	sldbPath string
	stilPath string
	bugsPath string
	sldb     SLDBStrategy
	logger   Logger
}

// NewCollection は新しいCollectionを作成します
func NewCollection(root string) *Collection {
	return NewCollectionWithOptions(root, Options{})
}

// NewCollectionWithOptions は新しいCollectionをオプション付きで作成します
func NewCollectionWithOptions(root string, opts Options) *Collection {
	root = filepath.Clean(root)

	sldbFile := opts.SLDBFile
	if sldbFile == "" {
		sldbFile = SLDBFile
	}
	stilFile := opts.STILFile
	if stilFile == "" {
		stilFile = STILFile
	}
	bugsFile := opts.BugsFile
	if bugsFile == "" {
		bugsFile = BugsFile
	}

	strategy := opts.SLDB
	if strategy == nil {
		strategy = PathStrategy{}
	}

	var logger Logger = nopLogger{}
	if opts.Logger != nil {
		logger = opts.Logger
	}

	c := &Collection{
		root:     root,
		sldbPath: filepath.Join(root, filepath.FromSlash(sldbFile)),
		stilPath: filepath.Join(root, filepath.FromSlash(stilFile)),
		bugsPath: filepath.Join(root, filepath.FromSlash(bugsFile)),
		sldb:     strategy,
		logger:   logger,
	}

	c.logger.Printf("HVSC root = %s\n", c.root)
	c.logger.Printf("HVSC sldb = %s\n", c.sldbPath)
	c.logger.Printf("HVSC stil = %s\n", c.stilPath)
	c.logger.Printf("HVSC bugs = %s\n", c.bugsPath)
	return c
}

// Close はCollectionが保持するパスを破棄します
func (c *Collection) Close() {
	c.root = ""
	c.sldbPath = ""
	c.stilPath = ""
	c.bugsPath = ""
}

// Root はHVSCルートディレクトリを返します
func (c *Collection) Root() string { return c.root }

// SLDBPath はSLDBファイルのパスを返します
func (c *Collection) SLDBPath() string { return c.sldbPath }

// STILPath はSTILファイルのパスを返します
func (c *Collection) STILPath() string { return c.stilPath }

// BugsPath はBUGlistファイルのパスを返します
func (c *Collection) BugsPath() string { return c.bugsPath }

// RelativePath はPSIDファイルのパスからHVSCルートを取り除いた検索キーを返します
func (c *Collection) RelativePath(psid string) string {
	return StripRoot(c.root, psid)
}

// StripRoot は path の先頭から root を取り除き、OSの区切り文字を '/' に置き換えます。
// path が root より長くない場合や root で始まらない場合は path をそのまま使います。
// 比較は大文字小文字を区別します。
func StripRoot(root, path string) string {
	if len(path) > len(root) && strings.HasPrefix(path, root) {
		path = path[len(root):]
	}
	return filepath.ToSlash(path)
}
