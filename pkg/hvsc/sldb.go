package hvsc

import (
	"crypto/md5"
	"encoding/hex"
	"errors"
	"io"
	"strings"
)

// md5DigestLen はMD5ダイジェストの16進文字列の長さ
const md5DigestLen = md5.Size * 2

// SLDBKey はSLDBの検索キー
type SLDBKey struct {
	Path   string // HVSCルートからの相対パス ("/MUSICIANS/H/Hubbard_Rob/Commando.sid")
	Digest string // ファイル内容のMD5 (小文字の16進32文字)。MD5Strategy のみ
}

// SLDBStrategy はSLDBのエントリ検索方法
type SLDBStrategy interface {
	// Key はPSIDファイルから検索キーを作ります
	Key(c *Collection, psid string) (SLDBKey, error)

	// FindEntry はSLDBを走査してキーに対応するタイムスタンプ列を返します。
	// 見つからなければ ErrNotFound を返します。
	FindEntry(tf *TextFile, key SLDBKey) (string, error)
}

// MD5Strategy はファイル内容のMD5ダイジェストでSLDBを検索します
type MD5Strategy struct{}

// Key はPSIDファイル全体のMD5ダイジェストを計算します
func (MD5Strategy) Key(c *Collection, psid string) (SLDBKey, error) {
	data, err := ReadFile(psid)
	if err != nil {
		return SLDBKey{}, err
	}
	sum := md5.Sum(data)
	return SLDBKey{
		Path:   c.RelativePath(psid),
		Digest: hex.EncodeToString(sum[:]),
	}, nil
}

// FindEntry は先頭32文字がダイジェストと一致する行を探し、"=" 以降を返します
func (MD5Strategy) FindEntry(tf *TextFile, key SLDBKey) (string, error) {
	if len(key.Digest) != md5DigestLen {
		return "", newError("sldb", tf.Path(), ErrInvalid)
	}

	for {
		line, err := tf.ReadLine()
		if err != nil {
			return "", endOfScan(tf, err)
		}
		if len(line) >= md5DigestLen && line[:md5DigestLen] == key.Digest {
			return strings.TrimPrefix(line[md5DigestLen:], "="), nil
		}
	}
}

// PathStrategy はSLDBのコメント行 "; <相対パス>" でエントリを検索します
type PathStrategy struct{}

// Key はPSIDファイルのパスからHVSCルートを取り除きます
func (PathStrategy) Key(c *Collection, psid string) (SLDBKey, error) {
	return SLDBKey{Path: c.RelativePath(psid)}, nil
}

// FindEntry はコメント行の次の行を返します。
// 次の行が "digest=times" 形式の場合は "=" 以降を返します。
func (PathStrategy) FindEntry(tf *TextFile, key SLDBKey) (string, error) {
	comment := "; " + key.Path

	for {
		line, err := tf.ReadLine()
		if err != nil {
			return "", endOfScan(tf, err)
		}
		if line != comment {
			continue
		}

		entry, err := tf.ReadLine()
		if err != nil {
			return "", endOfScan(tf, err)
		}
		if i := strings.IndexByte(entry, '='); i >= 0 {
			entry = entry[i+1:]
		}
		return entry, nil
	}
}

// endOfScan は走査中のエラーを変換します。EOFはErrNotFoundとして扱います。
func endOfScan(tf *TextFile, err error) error {
	if errors.Is(err, io.EOF) {
		return newError("lookup", tf.Path(), ErrNotFound)
	}
	return err
}

// scanKey はキーと完全に一致する行まで読み進めます。STILとBUGlistで使います。
func scanKey(tf *TextFile, key string) error {
	for {
		line, err := tf.ReadLine()
		if err != nil {
			return endOfScan(tf, err)
		}
		if line == key {
			return nil
		}
	}
}

// SLDBEntry はPSIDファイルに対応するSLDBのエントリ (タイムスタンプ列) を返します
func (c *Collection) SLDBEntry(psid string) (string, error) {
	key, err := c.sldb.Key(c, psid)
	if err != nil {
		return "", err
	}
	c.logger.Printf("SLDB key: path=%s digest=%s\n", key.Path, key.Digest)

	tf, err := OpenTextFile(c.sldbPath)
	if err != nil {
		return "", err
	}
	defer tf.Close()

	entry, err := c.sldb.FindEntry(tf, key)
	if err != nil {
		return "", err
	}
	c.logger.Printf("SLDB entry at line %d: %s\n", tf.LineNo(), entry)
	return entry, nil
}

// SongLengths はPSIDファイルのサブチューンごとの演奏時間 (秒) を返します
func (c *Collection) SongLengths(psid string) ([]int, error) {
	entry, err := c.SLDBEntry(psid)
	if err != nil {
		return nil, err
	}

	lengths, err := ParseSongLengths(entry)
	if err != nil {
		return nil, newError("sldb", c.sldbPath, err)
	}
	return lengths, nil
}
