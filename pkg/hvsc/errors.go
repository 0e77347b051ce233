package hvsc

import (
	"errors"
	"fmt"
)

var (
	// ErrIO はファイルの読み書きに失敗した場合のエラー
	ErrIO = errors.New("I/O error")

	// ErrFileTooLarge はファイルが大きすぎる場合のエラー (2GB以上)
	ErrFileTooLarge = errors.New("file too large")

	// ErrTimestamp はタイムスタンプの解析に失敗した場合のエラー
	ErrTimestamp = errors.New("malformed timestamp")

	// ErrNotFound はデータベースにエントリやチューンが見つからない場合のエラー
	ErrNotFound = errors.New("object not found")

	// ErrInvalid は不正なデータまたは操作を検出した場合のエラー
	ErrInvalid = errors.New("invalid data or operation")
)

// Error はHVSCライブラリの操作エラー
type Error struct {
	Op   string // 実行していた操作
	Path string // ファイルパス
	Line int    // 行番号 (0 は不明)
	Err  error  // 元のエラー
}

// Error はエラーメッセージを返します
func (e *Error) Error() string {
	switch {
	case e.Path != "" && e.Line > 0:
		return fmt.Sprintf("%s %s:%d: %v", e.Op, e.Path, e.Line, e.Err)
	case e.Path != "":
		return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

// Unwrap は元のエラーを返します
func (e *Error) Unwrap() error {
	return e.Err
}

// newError は新しいErrorを作成します
func newError(op, path string, err error) *Error {
	return &Error{Op: op, Path: path, Err: err}
}

// ioError はOSのエラーをErrIOでラップします
func ioError(op, path string, err error) *Error {
	return newError(op, path, fmt.Errorf("%w: %w", ErrIO, err))
}
