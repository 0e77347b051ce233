package hvsc

import (
	"errors"
	"fmt"
	"io"
	"strings"
)

// BugsEntry はBUGlist.txtの1つのエントリ
type BugsEntry struct {
	Path string // HVSCルートからの相対パス
	Text string // BUG フィールドの本文 (継続行を連結済み)
	User string // 報告者の行。なければ空
}

// Bugs はPSIDファイルの既知の不具合を返します。
// エントリがなければ ErrNotFound、BUG フィールドで始まらないエントリは ErrInvalid です。
func (c *Collection) Bugs(psid string) (*BugsEntry, error) {
	key := c.RelativePath(psid)
	c.logger.Printf("BUGlist key: %s\n", key)

	tf, err := OpenTextFileLatin1(c.bugsPath)
	if err != nil {
		return nil, err
	}
	defer tf.Close()

	if err := scanKey(tf, key); err != nil {
		return nil, err
	}

	line, err := tf.ReadLine()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, &Error{Op: "buglist", Path: tf.Path(), Line: tf.LineNo(), Err: fmt.Errorf("%w: missing BUG field", ErrInvalid)}
		}
		return nil, err
	}
	if FieldTypeOf(line) != FieldBug {
		return nil, &Error{Op: "buglist", Path: tf.Path(), Line: tf.LineNo(), Err: fmt.Errorf("%w: expected BUG field: %q", ErrInvalid, line)}
	}

	entry := &BugsEntry{Path: key}
	var text strings.Builder
	text.WriteString(fieldText(line))

	for {
		line, err = tf.ReadLine()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, err
		}
		if isContinuation(line) {
			text.WriteString(continuationText(line))
			continue
		}
		if !IsEmptyLine(line) {
			entry.User = line
		}
		break
	}

	entry.Text = text.String()
	c.logger.Printf("BUGlist entry: %s (%s)\n", entry.Text, entry.User)
	return entry, nil
}
