// Package models はhvscinfoコマンドで使用するデータモデルを定義します
package models

import "github.com/shiroemons/go-hvsc/pkg/hvsc"

// Report はPSIDファイル1つ分の情報を表します
type Report struct {
	Path string // PSIDファイルのパス
	Key  string // HVSCルートからの相対パス

	PSID        *hvsc.PSID
	SongLengths []int // 秒。SLDBにない場合はnil

	STIL             *hvsc.STIL // STILにない場合はnil
	DirectoryComment string

	Bugs *hvsc.BugsEntry // BUGlistにない場合はnil

	Tune     int      // 表示するサブチューン。0なら全て
	Warnings []string // 検索に失敗したデータベースの警告
}

// SongLength はサブチューン tune (1始まり) の演奏時間を返します
func (r *Report) SongLength(tune int) (int, bool) {
	if tune < 1 || tune > len(r.SongLengths) {
		return 0, false
	}
	return r.SongLengths[tune-1], true
}

// Tunes は表示するサブチューンの番号を返します
func (r *Report) Tunes() []int {
	if r.PSID == nil {
		return nil
	}
	if r.Tune > 0 {
		return []int{r.Tune}
	}
	tunes := make([]int, 0, r.PSID.Songs)
	for i := 1; i <= int(r.PSID.Songs); i++ {
		tunes = append(tunes, i)
	}
	return tunes
}
