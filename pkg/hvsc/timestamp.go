package hvsc

import (
	"fmt"
	"strings"
	"unicode"
)

// Timestamp はSTILのタイムスタンプ (秒) を表します。
//
// To が -1 の場合は範囲ではなく From のみの時刻、From も -1 の場合はタイムスタンプなしです。
//
//	"(0:30)"      -> {30, -1}
//	"(0:30-2:15)" -> {30, 135}
type Timestamp struct {
	From int
	To   int
}

// NoTimestamp はタイムスタンプなしを表します
var NoTimestamp = Timestamp{From: -1, To: -1}

// Valid はタイムスタンプが存在するかを返します
func (t Timestamp) Valid() bool {
	return t.From >= 0
}

// IsRange はタイムスタンプが範囲指定かを返します
func (t Timestamp) IsRange() bool {
	return t.From >= 0 && t.To >= 0
}

// String は "M:SS" または "M:SS-M:SS" 形式の文字列を返します。タイムスタンプなしなら空文字列です。
func (t Timestamp) String() string {
	switch {
	case !t.Valid():
		return ""
	case t.IsRange():
		return FormatSeconds(t.From) + "-" + FormatSeconds(t.To)
	}
	return FormatSeconds(t.From)
}

// FormatSeconds は秒数を "M:SS" 形式に変換します
func FormatSeconds(secs int) string {
	return fmt.Sprintf("%d:%02d", secs/60, secs%60)
}

// ParseSimpleTimestamp は先頭の "M:SS" 形式のタイムスタンプを解析し、秒数と残りの文字列を返します。
//
// 分の桁数に制限はありません。秒が60以上の場合はエラーです。
// 新しいSLDBの ".mmm" (ミリ秒) は読み飛ばし、秒未満は切り捨てます。
func ParseSimpleTimestamp(s string) (int, string, error) {
	i := 0
	m := 0
	for i < len(s) && isDigit(s[i]) {
		m = m*10 + int(s[i]-'0')
		i++
	}
	if i == 0 || i >= len(s) || s[i] != ':' {
		return -1, s[i:], fmt.Errorf("%w: %q", ErrTimestamp, s)
	}

	i++
	start := i
	sec := 0
	for i < len(s) && isDigit(s[i]) {
		sec = sec*10 + int(s[i]-'0')
		i++
		if sec > 59 {
			return -1, s[i:], fmt.Errorf("%w: seconds out of range: %q", ErrTimestamp, s)
		}
	}
	if i == start {
		return -1, s[i:], fmt.Errorf("%w: %q", ErrTimestamp, s)
	}

	// ミリ秒
	if i+1 < len(s) && s[i] == '.' && isDigit(s[i+1]) {
		i++
		for i < len(s) && isDigit(s[i]) {
			i++
		}
	}

	return m*60 + sec, s[i:], nil
}

// ParseTimestamp はSTILのタイムスタンプ "M:SS" または "M:SS-M:SS" を解析します。
// 括弧は含めずに渡します。
func ParseTimestamp(s string) (Timestamp, string, error) {
	ts := NoTimestamp

	from, rest, err := ParseSimpleTimestamp(s)
	if err != nil {
		return NoTimestamp, rest, err
	}
	ts.From = from

	if !strings.HasPrefix(rest, "-") {
		return ts, rest, nil
	}

	to, rest, err := ParseSimpleTimestamp(rest[1:])
	if err != nil {
		return NoTimestamp, rest, err
	}
	ts.To = to
	return ts, rest, nil
}

// ParseSongLengths はSLDBエントリのタイムスタンプ列を解析します。
// 空白で区切られたタイムスタンプを順に読み、1つでも不正なものがあればエラーを返します。
// タイムスタンプ直後の "(G)" などの属性は無視します。
func ParseSongLengths(entry string) ([]int, error) {
	var lengths []int

	rest := entry
	for {
		rest = strings.TrimLeftFunc(rest, unicode.IsSpace)
		if rest == "" {
			break
		}

		secs, r, err := ParseSimpleTimestamp(rest)
		if err != nil {
			return nil, fmt.Errorf("subtune %d: %w", len(lengths)+1, err)
		}
		rest = r

		// 属性
		if strings.HasPrefix(rest, "(") {
			end := strings.IndexByte(rest, ')')
			if end < 0 {
				return nil, fmt.Errorf("subtune %d: %w: unterminated attribute %q", len(lengths)+1, ErrTimestamp, rest)
			}
			rest = rest[end+1:]
		}

		if rest != "" && !unicode.IsSpace(rune(rest[0])) {
			return nil, fmt.Errorf("subtune %d: %w: unexpected %q", len(lengths)+1, ErrTimestamp, rest)
		}

		lengths = append(lengths, secs)
	}

	return lengths, nil
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}
