package app

import "errors"

var (
	// ErrReadFile はPSIDファイルの読み込みに失敗した場合のエラー
	ErrReadFile = errors.New("ファイルの読み込みに失敗しました")

	// ErrIsDirectory はPSIDファイルの代わりにディレクトリが指定された場合のエラー
	ErrIsDirectory = errors.New("ディレクトリは指定できません")

	// ErrSaveFile はレポートの保存に失敗した場合のエラー
	ErrSaveFile = errors.New("ファイルの保存に失敗しました")

	// ErrCompare は比較対象のレポート作成に失敗した場合のエラー
	ErrCompare = errors.New("比較対象のレポートを作成できませんでした")
)
