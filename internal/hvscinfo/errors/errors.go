// Package errors はカスタムエラータイプを提供します
package errors

import (
	"errors"
	"fmt"
)

// Common errors
var (
	// ErrNoPSIDFiles はPSIDファイルが指定されていない場合のエラー
	ErrNoPSIDFiles = errors.New("PSIDファイルが指定されていません")

	// ErrRootNotFound はHVSCルートが見つからない場合のエラー
	ErrRootNotFound = errors.New("HVSCのルートディレクトリが見つかりません。-root フラグまたは HVSC_BASE で指定してください")

	// ErrInvalidPSID はPSIDファイルが無効な場合のエラー
	ErrInvalidPSID = errors.New("無効なPSIDファイルです")
)

// LookupError はデータベース検索のエラー
type LookupError struct {
	Database string // "SLDB", "STIL", "BUGlist"
	Path     string // PSIDファイルのパス
	Err      error  // 元のエラー
}

// Error はエラーメッセージを返します
func (e *LookupError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("%s %s: %v", e.Database, e.Path, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Database, e.Err)
}

// Unwrap は元のエラーを返します
func (e *LookupError) Unwrap() error {
	return e.Err
}

// NewLookupError は新しいLookupErrorを作成します
func NewLookupError(database, path string, err error) *LookupError {
	return &LookupError{
		Database: database,
		Path:     path,
		Err:      err,
	}
}

// ReportError はレポート作成のエラー
type ReportError struct {
	File string // PSIDファイル名
	Err  error  // 元のエラー
}

// Error はエラーメッセージを返します
func (e *ReportError) Error() string {
	return fmt.Sprintf("%sのレポート作成エラー: %v", e.File, e.Err)
}

// Unwrap は元のエラーを返します
func (e *ReportError) Unwrap() error {
	return e.Err
}

// NewReportError は新しいReportErrorを作成します
func NewReportError(file string, err error) *ReportError {
	return &ReportError{
		File: file,
		Err:  err,
	}
}
