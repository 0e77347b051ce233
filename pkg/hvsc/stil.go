package hvsc

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"path"
	"strconv"
	"strings"
)

// Block はSTILエントリ内の1つのサブチューンの情報
type Block struct {
	Tune   int
	Fields []*Field
}

// STIL はSTIL.txtの1つのエントリ
type STIL struct {
	Path       string   // HVSCルートからの相対パス
	Entry      []string // エントリの生の行 (キー行と空行を除く)
	SIDComment string   // SID全体へのコメント
	Blocks     []*Block

	parsed bool
}

// TuneEntry はサブチューン1つ分のフィールドの参照。内容を変更しないでください。
type TuneEntry struct {
	Tune   int
	Fields []*Field
}

// STILReader はSTIL.txtからエントリを読み込みます。
// OpenSTIL でキーの行まで走査し、ReadEntry で生の行を集め、Parse で構造化します。
type STILReader struct {
	tf     *TextFile
	stil   *STIL
	logger Logger
}

// OpenSTIL はSTIL.txtを開き、PSIDファイルのエントリの先頭まで読み進めます。
// エントリが存在しなければ ErrNotFound を返します。
func (c *Collection) OpenSTIL(psid string) (*STILReader, error) {
	key := c.RelativePath(psid)
	c.logger.Printf("STIL key: %s\n", key)

	tf, err := OpenTextFileLatin1(c.stilPath)
	if err != nil {
		return nil, err
	}
	if err := scanKey(tf, key); err != nil {
		tf.Close()
		return nil, err
	}
	c.logger.Printf("STIL entry found at line %d\n", tf.LineNo())

	return &STILReader{
		tf:     tf,
		stil:   &STIL{Path: key},
		logger: c.logger,
	}, nil
}

// ReadEntry は空行またはファイルの終わりまでエントリの行を読み込みます。
// '#' で始まる行は読み飛ばします。
func (r *STILReader) ReadEntry() error {
	if r.tf == nil {
		return newError("stil", "", ErrInvalid)
	}

	for {
		line, err := r.tf.ReadLine()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}
		if IsEmptyLine(line) {
			return nil
		}
		if strings.HasPrefix(line, "#") {
			continue
		}
		r.stil.Entry = append(r.stil.Entry, line)
	}
}

// Parse は読み込んだ行を解析します。返されたSTILはReaderを閉じた後も使えます。
func (r *STILReader) Parse() (*STIL, error) {
	if r.stil == nil {
		return nil, newError("stil", "", ErrInvalid)
	}

	p := &stilParser{
		src:    newLineSource(r.stil.Entry),
		stil:   r.stil,
		logger: r.logger,
	}
	p.parse()
	return r.stil, nil
}

// Close はSTIL.txtを閉じます
func (r *STILReader) Close() error {
	if r.tf == nil {
		return nil
	}
	err := r.tf.Close()
	r.tf = nil
	return err
}

// STIL はPSIDファイルのSTILエントリを読み込んで解析します
func (c *Collection) STIL(psid string) (*STIL, error) {
	r, err := c.OpenSTIL(psid)
	if err != nil {
		return nil, err
	}
	defer r.Close()

	if err := r.ReadEntry(); err != nil {
		return nil, err
	}
	return r.Parse()
}

// STILDirectoryComment はPSIDファイルがあるディレクトリに付けられたコメントを返します
func (c *Collection) STILDirectoryComment(psid string) (string, error) {
	key := path.Dir(c.RelativePath(psid))
	if !strings.HasSuffix(key, "/") {
		key += "/"
	}
	c.logger.Printf("STIL directory key: %s\n", key)

	tf, err := OpenTextFileLatin1(c.stilPath)
	if err != nil {
		return "", err
	}
	defer tf.Close()

	if err := scanKey(tf, key); err != nil {
		return "", err
	}

	var lines []string
	for {
		line, err := tf.ReadLine()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return "", err
		}
		if IsEmptyLine(line) {
			break
		}
		lines = append(lines, line)
	}

	src := newLineSource(lines)
	line, ok := src.next()
	if !ok || FieldTypeOf(line) != FieldComment {
		return "", newError("stil", c.stilPath, ErrNotFound)
	}
	return readComment(src, line), nil
}

// TuneEntry はサブチューン tune の情報を返します。
// Parse されていない場合は ErrInvalid、見つからなければ ErrNotFound です。
func (s *STIL) TuneEntry(tune int) (*TuneEntry, error) {
	if !s.parsed {
		return nil, newError("stil", s.Path, ErrInvalid)
	}
	for _, block := range s.Blocks {
		if block.Tune == tune {
			return &TuneEntry{Tune: block.Tune, Fields: block.Fields}, nil
		}
	}
	return nil, newError("stil", s.Path, fmt.Errorf("%w: tune #%d", ErrNotFound, tune))
}

// DumpEntry はエントリの生の行を出力します
func (s *STIL) DumpEntry(w io.Writer) error {
	var b bytes.Buffer
	for _, line := range s.Entry {
		b.WriteString(line)
		b.WriteByte('\n')
	}
	return writeFull(w, b.Bytes())
}

// Dump は解析したエントリを出力します
func (s *STIL) Dump(w io.Writer) error {
	var b bytes.Buffer

	fmt.Fprintf(&b, "\n\n{File: %s}\n", s.Path)
	if s.SIDComment != "" {
		fmt.Fprintf(&b, "\n{SID-wide comment}\n%s\n", s.SIDComment)
	}

	b.WriteString("\n{Per-tune info}\n\n")
	for _, block := range s.Blocks {
		fmt.Fprintf(&b, "  {#%d}\n", block.Tune)
		for _, f := range block.Fields {
			dumpField(&b, f, "    ")
		}
		b.WriteByte('\n')
	}
	return writeFull(w, b.Bytes())
}

// Dump はサブチューンのフィールドを出力します
func (e *TuneEntry) Dump(w io.Writer) error {
	var b bytes.Buffer
	for _, f := range e.Fields {
		dumpField(&b, f, "")
	}
	return writeFull(w, b.Bytes())
}

func dumpField(b *bytes.Buffer, f *Field, indent string) {
	fmt.Fprintf(b, "%s%s %s\n", indent, f.Type.Display(), f.Text)
	if f.Timestamp.Valid() {
		fmt.Fprintf(b, "%s  {timestamp} %s\n", indent, f.Timestamp)
	}
	if f.Album != "" {
		fmt.Fprintf(b, "%s       {album} %s\n", indent, f.Album)
	}
}

// lineSource はエントリの行を順に返します。1行だけ戻すことができます。
type lineSource struct {
	lines   []string
	pos     int
	back    string
	hasBack bool
}

func newLineSource(lines []string) *lineSource {
	return &lineSource{lines: lines}
}

func (s *lineSource) next() (string, bool) {
	if s.hasBack {
		s.hasBack = false
		return s.back, true
	}
	if s.pos >= len(s.lines) {
		return "", false
	}
	line := s.lines[s.pos]
	s.pos++
	return line, true
}

func (s *lineSource) unread(line string) {
	s.back = line
	s.hasBack = true
}

// stilParser はエントリの行を Block に構造化します
type stilParser struct {
	src    *lineSource
	stil   *STIL
	logger Logger

	tune       int
	block      *Block
	last       *Field
	sidComment bool // 空でもSID全体のコメントは1つだけ
}

func (p *stilParser) parse() {
	p.stil.SIDComment = ""
	p.stil.Blocks = nil

	for line, ok := p.src.next(); ok; line, ok = p.src.next() {
		if n, ok := parseTuneNumber(line); ok {
			p.logger.Printf("STIL tune #%d\n", n)
			p.flush()
			p.tune = n
			p.block = &Block{Tune: n}
			p.last = nil
			continue
		}

		var field *Field
		switch typ := FieldTypeOf(line); typ {
		case FieldInvalid:
			if isContinuation(line) && p.last != nil {
				p.last.Text += continuationText(line)
				continue
			}
			p.logger.Printf("STIL: ignoring line %q\n", line)
			continue
		case FieldComment:
			text := readComment(p.src, line)
			if p.tune == 0 && p.block == nil && !p.sidComment {
				p.sidComment = true
				p.stil.SIDComment = text
				continue
			}
			field = &Field{Type: FieldComment, Text: text, Timestamp: NoTimestamp}
		case FieldTitle:
			field = parseTitle(fieldText(line))
		default:
			field = &Field{Type: typ, Text: fieldText(line), Timestamp: NoTimestamp}
		}

		if p.block == nil {
			p.tune = 1
			p.block = &Block{Tune: 1}
		}
		p.block.Fields = append(p.block.Fields, field)
		p.last = field
	}

	p.flush()
	p.stil.parsed = true
}

// flush は現在のブロックを結果に追加します
func (p *stilParser) flush() {
	if p.block != nil {
		p.stil.Blocks = append(p.stil.Blocks, p.block)
	}
	p.block = nil
}

// parseTuneNumber は "(#N)" 形式の行からサブチューン番号を取り出します。先頭の空白は許されます。
func parseTuneNumber(line string) (int, bool) {
	s := strings.TrimLeft(line, " \t")
	if !strings.HasPrefix(s, "(#") {
		return 0, false
	}
	end := strings.IndexByte(s, ')')
	if end < 3 {
		return 0, false
	}
	n, err := strconv.Atoi(s[2:end])
	if err != nil || n < 1 {
		return 0, false
	}
	return n, true
}

// readComment はCOMMENTフィールドを継続行も含めて読み込みます。
// 継続行でない最初の行は src に戻します。
func readComment(src *lineSource, first string) string {
	var b strings.Builder
	b.WriteString(fieldText(first))

	for {
		line, ok := src.next()
		if !ok {
			break
		}
		if !isContinuation(line) {
			src.unread(line)
			break
		}
		b.WriteString(continuationText(line))
	}
	return b.String()
}

// parseTitle はTITLEフィールドの末尾からタイムスタンプとアルバムを取り出します。
// タイムスタンプはアルバムの前後どちらにあっても構いません。
//
//	"Song Two (1:00-2:30) [from Compilation X]"
//	"Song Two [from Compilation X] (1:00-2:30)"
//
// タイムスタンプとして解析できない括弧 ("(lyrics)" など) は本文のまま残します。
func parseTitle(text string) *Field {
	f := &Field{Type: FieldTitle, Timestamp: NoTimestamp}

	text = titleTimestamp(f, text)

	if strings.HasSuffix(text, "]") {
		if open := strings.LastIndexByte(text, '['); open >= 0 {
			f.Album = strings.TrimPrefix(text[open+1:len(text)-1], "from ")
			text = strings.TrimSuffix(text[:open], " ")
		}
	}

	if !f.Timestamp.Valid() {
		text = titleTimestamp(f, text)
	}

	f.Text = text
	return f
}

// titleTimestamp は末尾の "(M:SS)" または "(M:SS-M:SS)" を f.Timestamp に取り出し、残りの本文を返します
func titleTimestamp(f *Field, text string) string {
	if len(text) <= 6 || !strings.HasSuffix(text, ")") {
		return text
	}
	open := strings.LastIndexByte(text, '(')
	if open <= 0 {
		return text
	}
	ts, rest, err := ParseTimestamp(text[open+1 : len(text)-1])
	if err != nil || rest != "" {
		return text
	}
	f.Timestamp = ts
	return strings.TrimSuffix(text[:open], " ")
}
