// Package interfaces はhvscinfoコマンドで使用するインターフェースを定義します
package interfaces

import (
	"github.com/shiroemons/go-hvsc/pkg/hvsc"
)

// FileSystem はファイルシステム操作のインターフェース
type FileSystem interface {
	FileExists(filename string) bool
	ReadFile(filename string) ([]byte, error)
	WriteFile(filename string, data []byte, perm uint32) error
	MkdirAll(path string, perm uint32) error
	Stat(name string) (FileInfo, error)
	Getwd() (string, error)
}

// FileInfo はファイル情報のインターフェース
type FileInfo interface {
	Name() string
	IsDir() bool
}

// RootFinder はPSIDファイルのパスからHVSCルートを検索するインターフェース
type RootFinder interface {
	Find(psidPath string) (string, error)
}

// MetadataSource はHVSCのデータベースを検索するインターフェース
type MetadataSource interface {
	RelativePath(psid string) string
	SongLengths(psid string) ([]int, error)
	STIL(psid string) (*hvsc.STIL, error)
	STILDirectoryComment(psid string) (string, error)
	Bugs(psid string) (*hvsc.BugsEntry, error)
}

// Logger はログ出力のインターフェース
type Logger interface {
	Printf(format string, a ...any)
}
