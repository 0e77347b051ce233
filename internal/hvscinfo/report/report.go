// Package report はPSIDファイルの情報をテキストとして整形します
package report

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/shiroemons/go-hvsc/internal/hvscinfo/models"
	"github.com/shiroemons/go-hvsc/pkg/hvsc"
)

// DefaultWidth は端末の幅が取得できない場合の折り返し幅
const DefaultWidth = 80

// labelWidth はヘッダ項目のラベル幅
const labelWidth = 10

// Renderer はReportをテキストに整形します
type Renderer struct {
	// Width は折り返し幅。0以下なら折り返しません
	Width int
}

// NewRenderer は新しいRendererを作成します
func NewRenderer(width int) *Renderer {
	return &Renderer{Width: width}
}

// Render はReportをテキストに整形します
func (r *Renderer) Render(rep *models.Report) string {
	var b strings.Builder

	r.writeHeader(&b, rep)
	r.writeComments(&b, rep)
	r.writeTunes(&b, rep)
	r.writeBugs(&b, rep)

	if len(rep.Warnings) > 0 {
		b.WriteByte('\n')
		for _, w := range rep.Warnings {
			r.writeWrapped(&b, w, "Warning: ", "  ")
		}
	}
	return b.String()
}

func writeItem(b *strings.Builder, label, value string) {
	fmt.Fprintf(b, "%-*s : %s\n", labelWidth, label, value)
}

func (r *Renderer) writeHeader(b *strings.Builder, rep *models.Report) {
	writeItem(b, "File", rep.Key)

	p := rep.PSID
	if p == nil {
		return
	}
	writeItem(b, "Name", p.Name)
	writeItem(b, "Author", p.Author)
	writeItem(b, "Released", p.Copyright)
	writeItem(b, "Format", fmt.Sprintf("%s v%d", p.Magic[:], p.Version))
	writeItem(b, "Songs", fmt.Sprintf("%d (start %d)", p.Songs, p.StartSong))

	if load, err := p.LoadImageAddress(); err != nil {
		writeItem(b, "Load", "unknown")
	} else if end, err := p.EndAddress(); err != nil {
		writeItem(b, "Load", fmt.Sprintf("$%04x", load))
	} else {
		writeItem(b, "Load", fmt.Sprintf("$%04x-$%04x", load, end))
	}
	writeItem(b, "Init", fmt.Sprintf("$%04x", p.InitAddress))
	writeItem(b, "Play", fmt.Sprintf("$%04x", p.PlayAddress))

	if p.Version < 2 {
		return
	}
	writeItem(b, "Clock", p.Clock())
	writeItem(b, "SID model", p.Model(1))
	if p.SecondSID != 0 {
		writeItem(b, "Second SID", fmt.Sprintf("$%04x (%s)", p.SecondSID, p.Model(2)))
	}
	if p.ThirdSID != 0 {
		writeItem(b, "Third SID", fmt.Sprintf("$%04x (%s)", p.ThirdSID, p.Model(3)))
	}
}

func (r *Renderer) writeComments(b *strings.Builder, rep *models.Report) {
	if rep.DirectoryComment != "" {
		b.WriteString("\nDirectory comment:\n")
		r.writeWrapped(b, rep.DirectoryComment, "  ", "  ")
	}
	if rep.STIL != nil && rep.STIL.SIDComment != "" {
		b.WriteString("\nSID comment:\n")
		r.writeWrapped(b, rep.STIL.SIDComment, "  ", "  ")
	}
}

func (r *Renderer) writeTunes(b *strings.Builder, rep *models.Report) {
	for _, tune := range rep.Tunes() {
		var fields []*hvsc.Field
		if rep.STIL != nil {
			if entry, err := rep.STIL.TuneEntry(tune); err == nil {
				fields = entry.Fields
			}
		}
		length, hasLength := rep.SongLength(tune)
		if len(fields) == 0 && !hasLength {
			continue
		}

		b.WriteByte('\n')
		if hasLength {
			fmt.Fprintf(b, "Tune %d (%s)\n", tune, hvsc.FormatSeconds(length))
		} else {
			fmt.Fprintf(b, "Tune %d\n", tune)
		}
		for _, f := range fields {
			r.writeField(b, f)
		}
	}
}

func (r *Renderer) writeField(b *strings.Builder, f *hvsc.Field) {
	text := f.Text
	if f.Timestamp.Valid() {
		text += " (" + f.Timestamp.String() + ")"
	}
	if f.Album != "" {
		text += " [from " + f.Album + "]"
	}
	first := "  " + f.Type.String() + ": "
	r.writeWrapped(b, text, first, strings.Repeat(" ", utf8.RuneCountInString(first)))
}

func (r *Renderer) writeBugs(b *strings.Builder, rep *models.Report) {
	if rep.Bugs == nil {
		return
	}
	b.WriteByte('\n')
	r.writeWrapped(b, rep.Bugs.Text, "BUG: ", "     ")
	if rep.Bugs.User != "" {
		fmt.Fprintf(b, "     %s\n", strings.TrimSpace(rep.Bugs.User))
	}
}

func (r *Renderer) writeWrapped(b *strings.Builder, text, first, rest string) {
	for _, line := range Wrap(text, r.Width, first, rest) {
		b.WriteString(line)
		b.WriteByte('\n')
	}
}

// Wrap は text を単語単位で width 文字以内に折り返します。
// 1行目には first、2行目以降には rest を前置します。1単語が width を超える場合はそのまま出力します。
func Wrap(text string, width int, first, rest string) []string {
	words := strings.Fields(text)
	if len(words) == 0 {
		return []string{strings.TrimRight(first, " ")}
	}

	var lines []string
	line := first + words[0]
	n := utf8.RuneCountInString(line)
	for _, w := range words[1:] {
		wn := utf8.RuneCountInString(w)
		if width > 0 && n+1+wn > width {
			lines = append(lines, line)
			line = rest + w
			n = utf8.RuneCountInString(rest) + wn
			continue
		}
		line += " " + w
		n += 1 + wn
	}
	return append(lines, line)
}
