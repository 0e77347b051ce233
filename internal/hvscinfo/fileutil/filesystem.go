package fileutil

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/shiroemons/go-hvsc/internal/hvscinfo/errors"
	"github.com/shiroemons/go-hvsc/internal/hvscinfo/interfaces"
	"github.com/shiroemons/go-hvsc/pkg/hvsc"
)

// OSFileSystem は実際のOSファイルシステムを使用する実装
type OSFileSystem struct{}

// NewOSFileSystem は新しいOSFileSystemを作成します
func NewOSFileSystem() *OSFileSystem {
	return &OSFileSystem{}
}

// FileExists はファイルが存在するか確認します
func (fs *OSFileSystem) FileExists(filename string) bool {
	_, err := os.Stat(filename)
	return err == nil
}

// ReadFile はファイルを読み込みます
func (fs *OSFileSystem) ReadFile(filename string) ([]byte, error) {
	return hvsc.ReadFile(filename)
}

// WriteFile はファイルを書き込みます
func (fs *OSFileSystem) WriteFile(filename string, data []byte, perm uint32) error {
	return os.WriteFile(filename, data, os.FileMode(perm))
}

// MkdirAll はディレクトリを作成します
func (fs *OSFileSystem) MkdirAll(path string, perm uint32) error {
	return os.MkdirAll(path, os.FileMode(perm))
}

// Stat はファイル情報を取得します
func (fs *OSFileSystem) Stat(name string) (interfaces.FileInfo, error) {
	info, err := os.Stat(name)
	if err != nil {
		return nil, err
	}
	return info, nil
}

// Getwd は現在の作業ディレクトリを取得します
func (fs *OSFileSystem) Getwd() (string, error) {
	return os.Getwd()
}

// RootFinderWithFS はHVSCルートの検索を行います（FileSystemを使用）
type RootFinderWithFS struct {
	fs interfaces.FileSystem
}

// NewRootFinderWithFS は新しいRootFinderWithFSを作成します
func NewRootFinderWithFS(fs interfaces.FileSystem) *RootFinderWithFS {
	return &RootFinderWithFS{fs: fs}
}

// Find はPSIDファイルのディレクトリから親へ順にたどり、
// DOCUMENTS/STIL.txt を含む最初のディレクトリをHVSCルートとして返します
func (f *RootFinderWithFS) Find(psidPath string) (string, error) {
	dir := filepath.Dir(psidPath)
	if !filepath.IsAbs(dir) {
		wd, err := f.fs.Getwd()
		if err != nil {
			return "", fmt.Errorf("%w: %w", ErrGetCurrentDirectory, err)
		}
		dir = filepath.Join(wd, dir)
	}

	for {
		if f.fs.FileExists(filepath.Join(dir, filepath.FromSlash(hvsc.STILFile))) {
			return dir, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", fmt.Errorf("%w: %s", errors.ErrRootNotFound, psidPath)
		}
		dir = parent
	}
}
