// Package fileutil はファイル操作のユーティリティ関数を提供します
package fileutil

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/shiroemons/go-hvsc/internal/hvscinfo/interfaces"
)

// FileExists はファイルが存在するか確認します
func FileExists(filename string) bool {
	_, err := os.Stat(filename)
	return err == nil
}

// SaveToFile はファイルに保存します。出力先ディレクトリがなければ作成します。
func SaveToFile(fs interfaces.FileSystem, outputPath string, content string) error {
	if err := fs.MkdirAll(filepath.Dir(outputPath), 0755); err != nil {
		return fmt.Errorf("%w: %w", ErrCreateDirectory, err)
	}
	if err := fs.WriteFile(outputPath, []byte(content), 0644); err != nil {
		return fmt.Errorf("%w: %w", ErrWriteContent, err)
	}
	return nil
}

// baseName は拡張子を除いたファイル名を返します
func baseName(inputPath string) string {
	name := filepath.Base(inputPath)
	return strings.TrimSuffix(name, filepath.Ext(name))
}

// GenerateOutputFilename はPSIDファイル名からレポートのファイル名を生成します
func GenerateOutputFilename(inputPath string) string {
	// hvscinfo_XXX.txt 形式の名前を生成
	return fmt.Sprintf("hvscinfo_%s.txt", baseName(inputPath))
}

// BinaryFilename はPSIDファイル名からC64ロードイメージのファイル名を生成します
func BinaryFilename(inputPath string) string {
	return baseName(inputPath) + ".bin"
}

// IsPSIDFile は拡張子から SID ファイルか判定します
func IsPSIDFile(filename string) bool {
	return strings.EqualFold(filepath.Ext(filename), ".sid")
}
