package hvsc

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"os"
)

// PSIDヘッダ内のオフセット
const (
	psidMagic       = 0x00
	psidVersion     = 0x04
	psidDataOffset  = 0x06
	psidLoadAddress = 0x08
	psidInitAddress = 0x0a
	psidPlayAddress = 0x0c
	psidSongs       = 0x0e
	psidStartSong   = 0x10
	psidSpeed       = 0x12
	psidName        = 0x16
	psidAuthor      = 0x36
	psidCopyright   = 0x56
	psidFlags       = 0x76
	psidStartPage   = 0x78
	psidPageLength  = 0x79
	psidSecondSID   = 0x7a
	psidThirdSID    = 0x7b

	// PSIDHeaderMinSize はPSIDファイルとして受け付ける最小サイズ
	PSIDHeaderMinSize = 0x7e

	// PSIDMagicLen はマジックバイトの長さ
	PSIDMagicLen = 4

	// PSIDTextLen は name/author/copyright の長さ (NUL終端されない)
	PSIDTextLen = 0x20
)

// flags ワードのビットマスク
const (
	FlagMusPlayer    = 0x0001 // bit 0: Compute!'s Sidplayer
	FlagPSIDSpecific = 0x0002 // bit 1: PlaySID 専用
	FlagClock        = 0x000c // bit 2-3: ビデオ規格
	FlagSIDModel1    = 0x0030 // bit 4-5: 1つ目のSIDモデル
	FlagSIDModel2    = 0x00c0 // bit 6-7: 2つ目のSIDモデル
	FlagSIDModel3    = 0x0300 // bit 8-9: 3つ目のSIDモデル
)

var (
	magicPSID = []byte("PSID")
	magicRSID = []byte("RSID")
)

var sidModels = [4]string{
	"unknown",
	"6581",
	"8580",
	"6581 and 8580",
}

var sidClocks = [4]string{
	"unknown",
	"PAL",
	"NTSC",
	"PAL and NTSC",
}

// PSID はPSID/RSIDファイルとそのヘッダを表します
//
// https://www.hvsc.c64.org/download/C64Music/DOCUMENTS/SID_file_format.txt
type PSID struct {
	Path string // ファイルパス (ParsePSID の場合は空)
	Data []byte // ファイル全体

	Magic       [PSIDMagicLen]byte
	Version     uint16
	DataOffset  uint16
	LoadAddress uint16
	InitAddress uint16
	PlayAddress uint16
	Songs       uint16
	StartSong   uint16
	Speed       uint32
	Name        string
	Author      string
	Copyright   string

	// PSIDv2NG 以降
	Flags      uint16
	StartPage  uint8
	PageLength uint8
	SecondSID  uint16 // v3 以降、I/Oアドレス ($d420 など)。なければ0
	ThirdSID   uint16 // v4 以降
}

// OpenPSID はPSIDファイルを読み込んでヘッダを解析します
func OpenPSID(path string) (*PSID, error) {
	data, err := ReadFile(path)
	if err != nil {
		return nil, err
	}

	psid, err := ParsePSID(data)
	if err != nil {
		return nil, newError("parse", path, err)
	}
	psid.Path = path
	return psid, nil
}

// ParsePSID はPSIDファイルのデータからヘッダを解析します。
// data はそのまま PSID.Data として保持します。
func ParsePSID(data []byte) (*PSID, error) {
	if len(data) < PSIDHeaderMinSize {
		return nil, fmt.Errorf("%w: file too short (%d bytes)", ErrInvalid, len(data))
	}
	if !bytes.Equal(data[:PSIDMagicLen], magicPSID) && !bytes.Equal(data[:PSIDMagicLen], magicRSID) {
		return nil, fmt.Errorf("%w: invalid magic %q", ErrInvalid, data[:PSIDMagicLen])
	}

	p := &PSID{Data: data}
	copy(p.Magic[:], data[psidMagic:psidMagic+PSIDMagicLen])
	p.Version = binary.BigEndian.Uint16(data[psidVersion:])
	p.DataOffset = binary.BigEndian.Uint16(data[psidDataOffset:])
	p.LoadAddress = binary.BigEndian.Uint16(data[psidLoadAddress:])
	p.InitAddress = binary.BigEndian.Uint16(data[psidInitAddress:])
	p.PlayAddress = binary.BigEndian.Uint16(data[psidPlayAddress:])
	p.Songs = binary.BigEndian.Uint16(data[psidSongs:])
	p.StartSong = binary.BigEndian.Uint16(data[psidStartSong:])
	p.Speed = binary.BigEndian.Uint32(data[psidSpeed:])
	p.Name = psidString(data[psidName : psidName+PSIDTextLen])
	p.Author = psidString(data[psidAuthor : psidAuthor+PSIDTextLen])
	p.Copyright = psidString(data[psidCopyright : psidCopyright+PSIDTextLen])

	if p.Version < 2 {
		return p, nil
	}

	p.Flags = binary.BigEndian.Uint16(data[psidFlags:])
	p.StartPage = data[psidStartPage]
	p.PageLength = data[psidPageLength]

	if p.Version >= 3 {
		p.SecondSID = sidAddress(data[psidSecondSID])
	}
	if p.Version >= 4 {
		p.ThirdSID = sidAddress(data[psidThirdSID])
	}
	return p, nil
}

// psidString は32バイトのテキスト領域を最初のNULまでの文字列に変換します
func psidString(b []byte) string {
	if n := bytes.IndexByte(b, 0); n >= 0 {
		b = b[:n]
	}
	s, err := DecodeLatin1(b)
	if err != nil {
		return string(b)
	}
	return s
}

// SIDAddressValid はSIDアドレスバイトが有効か確認します。
// アドレスバイトはI/Oアドレスの中央2ニブルで、$42 は $d420 を表します。
// 偶数かつ $42-$7f ($d420-$d7e0) または $e0-$ff ($de00-$dff0) のみ有効です。
func SIDAddressValid(b uint8) bool {
	if b&0x01 != 0 {
		return false
	}
	if b < 0x42 || (b >= 0x80 && b <= 0xdf) {
		return false
	}
	return true
}

func sidAddress(b uint8) uint16 {
	if !SIDAddressValid(b) {
		return 0
	}
	return uint16(b)*16 + 0xd000
}

// IsRSID はRSIDファイルかを返します
func (p *PSID) IsRSID() bool {
	return bytes.Equal(p.Magic[:], magicRSID)
}

// Size はファイルサイズを返します
func (p *PSID) Size() int {
	return len(p.Data)
}

// ModelID は sid 番目 (1-3) のSIDモデルのビット (%00-%11) を返します
func (p *PSID) ModelID(sid int) int {
	switch sid {
	case 1:
		return int(p.Flags&FlagSIDModel1) >> 4
	case 2:
		return int(p.Flags&FlagSIDModel2) >> 6
	case 3:
		return int(p.Flags&FlagSIDModel3) >> 8
	}
	return 0
}

// Model は sid 番目 (1-3) のSIDモデルの説明を返します
func (p *PSID) Model(sid int) string {
	return sidModels[p.ModelID(sid)]
}

// ClockID はビデオ規格のビット (%00-%11) を返します
func (p *PSID) ClockID() int {
	return int(p.Flags&FlagClock) >> 2
}

// Clock はビデオ規格の説明を返します
func (p *PSID) Clock() string {
	return sidClocks[p.ClockID()]
}

// MusPlayer は Compute!'s Sidplayer のデータかを返します
func (p *PSID) MusPlayer() bool {
	return p.Flags&FlagMusPlayer != 0
}

// PSIDSpecific は PlaySID 専用のチューンかを返します
func (p *PSID) PSIDSpecific() bool {
	return p.Flags&FlagPSIDSpecific != 0
}

// UsesCIATimer は song 番目 (1始まり) のサブチューンがCIAタイマーで再生されるかを返します。
// 32曲目以降は全てbit 31を共有します。
func (p *PSID) UsesCIATimer(song int) bool {
	if song < 1 {
		return false
	}
	bit := song - 1
	if bit > 31 {
		bit = 31
	}
	return p.Speed&(1<<uint(bit)) != 0
}

// payload はdata_offset以降のデータを返します
func (p *PSID) payload() ([]byte, error) {
	if int(p.DataOffset) > len(p.Data) {
		return nil, fmt.Errorf("%w: data offset $%04x beyond end of file", ErrInvalid, p.DataOffset)
	}
	return p.Data[p.DataOffset:], nil
}

// LoadImageAddress はC64上のロードアドレスを返します。
// ヘッダのロードアドレスが0の場合はデータ先頭2バイト (リトルエンディアン) を使います。
func (p *PSID) LoadImageAddress() (uint16, error) {
	if p.LoadAddress != 0 {
		return p.LoadAddress, nil
	}
	payload, err := p.payload()
	if err != nil {
		return 0, err
	}
	if len(payload) < 2 {
		return 0, fmt.Errorf("%w: missing embedded load address", ErrInvalid)
	}
	return binary.LittleEndian.Uint16(payload), nil
}

// EndAddress はC64上の最終アドレスを返します
func (p *PSID) EndAddress() (uint16, error) {
	load, err := p.LoadImageAddress()
	if err != nil {
		return 0, err
	}
	payload, err := p.payload()
	if err != nil {
		return 0, err
	}
	size := len(payload)
	if p.LoadAddress == 0 {
		size -= 2
	}
	return uint16(int(load) + size - 1), nil
}

// WriteBinary はC64のロードイメージ (ロードアドレス + データ) を path に書き込みます。
// 書き込みに失敗した場合は作りかけのファイルを削除します。
func (p *PSID) WriteBinary(path string) error {
	file, err := os.Create(path)
	if err != nil {
		return ioError("create", path, err)
	}

	if err := p.WriteBinaryTo(file); err != nil {
		file.Close()
		os.Remove(path)
		return newError("write", path, err)
	}
	if err := file.Close(); err != nil {
		os.Remove(path)
		return ioError("close", path, err)
	}
	return nil
}

// WriteBinaryTo はC64のロードイメージを w に書き込みます。
// ヘッダのロードアドレスが0でなければ、リトルエンディアンの2バイトを先頭に付けます。
func (p *PSID) WriteBinaryTo(w io.Writer) error {
	payload, err := p.payload()
	if err != nil {
		return err
	}

	if p.LoadAddress != 0 {
		var addr [2]byte
		binary.LittleEndian.PutUint16(addr[:], p.LoadAddress)
		if err := writeFull(w, addr[:]); err != nil {
			return err
		}
	}
	return writeFull(w, payload)
}

// writeFull は短い書き込みもErrIOとして扱います
func writeFull(w io.Writer, b []byte) error {
	n, err := w.Write(b)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrIO, err)
	}
	if n != len(b) {
		return fmt.Errorf("%w: %w", ErrIO, io.ErrShortWrite)
	}
	return nil
}

// Dump はヘッダの内容を w に出力します
func (p *PSID) Dump(w io.Writer) error {
	load, err := p.LoadImageAddress()
	if err != nil {
		return err
	}
	end, err := p.EndAddress()
	if err != nil {
		return err
	}

	var b bytes.Buffer
	fmt.Fprintf(&b, "file name       : %s\n", p.Path)
	fmt.Fprintf(&b, "file size       : %d\n", p.Size())
	fmt.Fprintf(&b, "magic           : %s\n", string(p.Magic[:]))
	fmt.Fprintf(&b, "version         : %d\n", p.Version)
	fmt.Fprintf(&b, "data offset     : $%04x\n", p.DataOffset)
	fmt.Fprintf(&b, "load            : $%04x-$%04x\n", load, end)
	fmt.Fprintf(&b, "init            : $%04x\n", p.InitAddress)
	fmt.Fprintf(&b, "play            : $%04x\n", p.PlayAddress)
	fmt.Fprintf(&b, "songs           : %d (default %d)\n", p.Songs, p.StartSong)
	fmt.Fprintf(&b, "speed           : $%08x\n", p.Speed)
	fmt.Fprintf(&b, "name            : %s\n", p.Name)
	fmt.Fprintf(&b, "author          : %s\n", p.Author)
	fmt.Fprintf(&b, "copyright       : %s\n", p.Copyright)

	if p.Version >= 2 {
		fmt.Fprintf(&b, "clock           : %s\n", p.Clock())
		fmt.Fprintf(&b, "SID model       : %s\n", p.Model(1))

		if p.Version >= 3 {
			if p.SecondSID != 0 {
				fmt.Fprintf(&b, "second SID      : $%04x\n", p.SecondSID)
				fmt.Fprintf(&b, "second SID model: %s\n", p.Model(2))
			} else {
				fmt.Fprintf(&b, "second SID      : none\n")
			}
		}
		if p.Version >= 4 {
			if p.ThirdSID != 0 {
				fmt.Fprintf(&b, "third SID       : $%04x\n", p.ThirdSID)
				fmt.Fprintf(&b, "third SID model : %s\n", p.Model(3))
			} else {
				fmt.Fprintf(&b, "third SID       : none\n")
			}
		}

		fmt.Fprintf(&b, "start page      : $%04x\n", int(p.StartPage)*256)
		fmt.Fprintf(&b, "page length     : $%04x\n", int(p.PageLength)*256)
	}

	if _, err := w.Write(b.Bytes()); err != nil {
		return fmt.Errorf("%w: %w", ErrIO, err)
	}
	return nil
}
