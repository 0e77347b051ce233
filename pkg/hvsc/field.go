package hvsc

import "strings"

// FieldType はSTIL/BUGlistのフィールドの種類
type FieldType int

const (
	FieldInvalid FieldType = iota - 1 // 不明なフィールド
	FieldArtist                       // カバー曲のアーティスト
	FieldAuthor                       // SID/サブチューンの作者
	FieldBug                          // 不具合 (BUGlist.txt のみ)
	FieldComment                      // コメント
	FieldName                         // (サブ)チューン名
	FieldTitle                        // カバー曲のタイトル
)

const (
	// fieldIdentifierLen はフィールド識別子の長さ (先頭の空白を含む)
	fieldIdentifierLen = 8

	// fieldPrefixLen はフィールド識別子と区切りの空白を合わせた長さ
	fieldPrefixLen = fieldIdentifierLen + 1
)

// continuationIndent は複数行にわたるフィールドの継続行の字下げ
const continuationIndent = "         "

var fieldIdentifiers = [...]string{
	FieldArtist:  " ARTIST:",
	FieldAuthor:  " AUTHOR:",
	FieldBug:     "    BUG:",
	FieldComment: "COMMENT:",
	FieldName:    "   NAME:",
	FieldTitle:   "  TITLE:",
}

// ダンプ時にフィールドの本文と区別しやすい表示用文字列
var fieldDisplays = [...]string{
	FieldArtist:  " {artist}",
	FieldAuthor:  " {author}",
	FieldBug:     "    {bug}",
	FieldComment: "{comment}",
	FieldName:    "   {name}",
	FieldTitle:   "  {title}",
}

var fieldNames = [...]string{
	FieldArtist:  "ARTIST",
	FieldAuthor:  "AUTHOR",
	FieldBug:     "BUG",
	FieldComment: "COMMENT",
	FieldName:    "NAME",
	FieldTitle:   "TITLE",
}

func (t FieldType) valid() bool {
	return t >= FieldArtist && t <= FieldTitle
}

// String はフィールド名 ("TITLE" など) を返します
func (t FieldType) String() string {
	if !t.valid() {
		return "<invalid>"
	}
	return fieldNames[t]
}

// Identifier はSTIL.txt上の8文字の識別子を返します
func (t FieldType) Identifier() string {
	if !t.valid() {
		return ""
	}
	return fieldIdentifiers[t]
}

// Display はダンプ用の表示文字列を返します
func (t FieldType) Display() string {
	if !t.valid() {
		return "<invalid>"
	}
	return fieldDisplays[t]
}

// FieldTypeOf は行の先頭8文字からフィールドの種類を判定します。
// 識別子でなければ FieldInvalid を返します (コメント本文などの通常の行)。
func FieldTypeOf(line string) FieldType {
	if len(line) < fieldIdentifierLen {
		return FieldInvalid
	}
	for i, ident := range fieldIdentifiers {
		if strings.HasPrefix(line, ident) {
			return FieldType(i)
		}
	}
	return FieldInvalid
}

// Field はSTILのフィールド1つを表します
type Field struct {
	Type      FieldType
	Text      string
	Timestamp Timestamp // TITLE のみ
	Album     string    // TITLE のみ、"[from ...]" の中身
}

// fieldText は識別子と区切りの空白を取り除いた本文を返します
func fieldText(line string) string {
	if len(line) <= fieldPrefixLen {
		return ""
	}
	return line[fieldPrefixLen:]
}

// isContinuation は行が9文字の空白で始まる継続行か確認します
func isContinuation(line string) bool {
	return strings.HasPrefix(line, continuationIndent)
}

// continuationText は継続行の本文を区切りの空白1つ付きで返します
func continuationText(line string) string {
	return line[len(continuationIndent)-1:]
}
