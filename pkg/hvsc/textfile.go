package hvsc

import (
	"bufio"
	"bytes"
	"errors"
	"io"
	"math"
	"os"
	"strings"
	"unicode"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"
)

const (
	// lineBufferSize は行バッファの初期サイズ。足りなくなると倍に拡張します
	lineBufferSize = 1024

	// maxFileSize はReadFileで読み込めるファイルの最大サイズ
	maxFileSize = math.MaxInt32
)

// TextFile はデータベースのテキストファイルを1行ずつ読み込みます。
// 読み込みは前方向のみで、読んだ行を戻すことはできません。
type TextFile struct {
	file   *os.File
	reader *bufio.Reader
	path   string
	lineNo int
	length int
	buf    []byte
	latin1 bool
}

// OpenTextFile はテキストファイルを開きます
func OpenTextFile(path string) (*TextFile, error) {
	return openTextFile(path, false)
}

// OpenTextFileLatin1 はISO-8859-1のテキストファイルを開きます。
// ReadLine はUTF-8に変換した行を返します。
func OpenTextFileLatin1(path string) (*TextFile, error) {
	return openTextFile(path, true)
}

func openTextFile(path string, latin1 bool) (*TextFile, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, ioError("open", path, err)
	}
	return &TextFile{
		file:   file,
		reader: bufio.NewReader(file),
		path:   path,
		buf:    make([]byte, lineBufferSize),
		latin1: latin1,
	}, nil
}

// Path はファイルのパスを返します
func (tf *TextFile) Path() string {
	return tf.path
}

// LineNo は最後に読み込んだ行の行番号を返します (1始まり)
func (tf *TextFile) LineNo() int {
	return tf.lineNo
}

// Len は最後に読み込んだ行のバイト数を返します (改行を除く)
func (tf *TextFile) Len() int {
	return tf.length
}

// ReadLine は次の行を改行文字 ("\n" と直前の "\r") を取り除いて返します。
// ファイルの終わりでは io.EOF を返します。それ以外の読み込みエラーは ErrIO です。
func (tf *TextFile) ReadLine() (string, error) {
	if tf.reader == nil {
		return "", newError("read", tf.path, ErrInvalid)
	}

	n := 0
	for {
		ch, err := tf.reader.ReadByte()
		if err != nil {
			if !errors.Is(err, io.EOF) {
				return "", ioError("read", tf.path, err)
			}
			if n == 0 {
				return "", io.EOF
			}
			// 改行なしで終わる最終行
			return tf.finishLine(n)
		}

		if ch == '\n' {
			return tf.finishLine(n)
		}

		if n == len(tf.buf) {
			grown := make([]byte, len(tf.buf)*2)
			copy(grown, tf.buf)
			tf.buf = grown
		}
		tf.buf[n] = ch
		n++
	}
}

// finishLine は行バッファの先頭 n バイトを1行として確定します
func (tf *TextFile) finishLine(n int) (string, error) {
	if n > 0 && tf.buf[n-1] == '\r' {
		n--
	}
	tf.lineNo++
	tf.length = n

	if !tf.latin1 {
		return string(tf.buf[:n]), nil
	}
	line, err := DecodeLatin1(tf.buf[:n])
	if err != nil {
		return "", newError("decode", tf.path, err)
	}
	return line, nil
}

// Close はファイルを閉じてバッファを解放します。2回目以降の呼び出しは何もしません。
func (tf *TextFile) Close() error {
	tf.buf = nil
	tf.reader = nil
	if tf.file == nil {
		return nil
	}
	err := tf.file.Close()
	tf.file = nil
	if err != nil {
		return ioError("close", tf.path, err)
	}
	return nil
}

// ReadFile はバイナリファイル全体を読み込みます
func ReadFile(path string) ([]byte, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, ioError("open", path, err)
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return nil, ioError("stat", path, err)
	}
	if info.Size() > maxFileSize {
		return nil, newError("read", path, ErrFileTooLarge)
	}

	data := make([]byte, 0, info.Size())
	buf := bytes.NewBuffer(data)
	if _, err := io.Copy(buf, io.LimitReader(file, maxFileSize+1)); err != nil {
		return nil, ioError("read", path, err)
	}
	if buf.Len() > maxFileSize {
		return nil, newError("read", path, ErrFileTooLarge)
	}
	return buf.Bytes(), nil
}

// DecodeLatin1 はISO-8859-1のバイト列をUTF-8文字列に変換します
func DecodeLatin1(b []byte) (string, error) {
	reader := bytes.NewReader(b)
	transformer := charmap.ISO8859_1.NewDecoder()
	ret, err := io.ReadAll(transform.NewReader(reader, transformer))
	if err != nil {
		return "", err
	}
	return string(ret), nil
}

// IsEmptyLine は行が空白文字だけで構成されているか確認します
func IsEmptyLine(s string) bool {
	return strings.TrimLeftFunc(s, unicode.IsSpace) == ""
}

// IsCommentLine は最初の空白以外の文字が '#' か確認します
func IsCommentLine(s string) bool {
	return strings.HasPrefix(strings.TrimLeftFunc(s, unicode.IsSpace), "#")
}
