package hvsc

import (
	"crypto/md5"
	"encoding/hex"
	"errors"
	"os"
	"reflect"
	"testing"
)

const testSLDB = `[Database]
; /MUSICIANS/H/Hubbard_Rob/Commando.sid
1:30 0:00 10:05
; /MUSICIANS/H/Hubbard_Rob/Monty_on_the_Run.sid
5d4b8c9d2a3e0f1b6c7a8d9e0f1a2b3c=5:52 0:04 0:03
; /DEMOS/Broken.sid
1:30 1:60
`

func TestCollection_SongLengths_Path(t *testing.T) {
	c := newTestCollection(t, testDatabase{sldb: testSLDB}, Options{Logger: testLogger{t}})

	tests := []struct {
		name    string
		rel     string
		want    []int
		wantErr error
	}{
		{
			name: "次の行がタイムスタンプ列",
			rel:  "/MUSICIANS/H/Hubbard_Rob/Commando.sid",
			want: []int{90, 0, 605},
		},
		{
			name: "次の行がmd5形式",
			rel:  "/MUSICIANS/H/Hubbard_Rob/Monty_on_the_Run.sid",
			want: []int{352, 4, 3},
		},
		{
			name:    "不正なタイムスタンプ",
			rel:     "/DEMOS/Broken.sid",
			wantErr: ErrTimestamp,
		},
		{
			name:    "エントリなし",
			rel:     "/DEMOS/Missing.sid",
			wantErr: ErrNotFound,
		},
		{
			name:    "大文字小文字を区別する",
			rel:     "/musicians/h/hubbard_rob/commando.sid",
			wantErr: ErrNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := c.SongLengths(psidPath(c, tt.rel))
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("SongLengths() error = %v, want %v", err, tt.wantErr)
				}
				if errors.Is(err, ErrIO) {
					t.Errorf("SongLengths() error = %v, should not be ErrIO", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("SongLengths() error = %v", err)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("SongLengths() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCollection_SongLengths_MD5(t *testing.T) {
	sid := psidHeader{magic: "PSID", version: 2, loadAddr: 0x1000, payload: rts(32)}.build()
	sum := md5.Sum(sid)
	digest := hex.EncodeToString(sum[:])

	db := "[Database]\n" +
		"; /DEMOS/Other.sid\n" +
		"00000000000000000000000000000000=0:10\n" +
		"; /DEMOS/Test.sid\n" +
		digest + "=3:07 0:45.500\n"

	c := newTestCollection(t, testDatabase{sldb: db}, Options{SLDB: MD5Strategy{}})
	path := psidPath(c, "/DEMOS/Test.sid")
	writeTestFile(t, path, sid)

	entry, err := c.SLDBEntry(path)
	if err != nil {
		t.Fatalf("SLDBEntry() error = %v", err)
	}
	if entry != "3:07 0:45.500" {
		t.Errorf("SLDBEntry() = %q, want %q", entry, "3:07 0:45.500")
	}

	got, err := c.SongLengths(path)
	if err != nil {
		t.Fatalf("SongLengths() error = %v", err)
	}
	if want := []int{187, 45}; !reflect.DeepEqual(got, want) {
		t.Errorf("SongLengths() = %v, want %v", got, want)
	}

	// 内容が変わるとダイジェストが一致しない
	writeTestFile(t, path, append(sid, 0x00))
	if _, err := c.SongLengths(path); !errors.Is(err, ErrNotFound) {
		t.Errorf("SongLengths() error = %v, want ErrNotFound", err)
	}
}

func TestCollection_SongLengths_MissingFiles(t *testing.T) {
	c := newTestCollection(t, testDatabase{sldb: testSLDB}, Options{SLDB: MD5Strategy{}})

	// PSIDファイルが存在しない
	if _, err := c.SongLengths(psidPath(c, "/DEMOS/Missing.sid")); !errors.Is(err, ErrIO) {
		t.Errorf("SongLengths() error = %v, want ErrIO", err)
	}

	// SLDBが存在しない
	if err := os.Remove(c.SLDBPath()); err != nil {
		t.Fatalf("Failed to remove SLDB: %v", err)
	}
	c2 := NewCollection(c.Root())
	_, err := c2.SongLengths(psidPath(c2, "/MUSICIANS/H/Hubbard_Rob/Commando.sid"))
	if !errors.Is(err, ErrIO) {
		t.Errorf("SongLengths() error = %v, want ErrIO", err)
	}
	if errors.Is(err, ErrNotFound) {
		t.Errorf("SongLengths() error = %v, should not be ErrNotFound", err)
	}
}

func TestMD5Strategy_InvalidDigest(t *testing.T) {
	c := newTestCollection(t, testDatabase{sldb: testSLDB}, Options{})
	tf, err := OpenTextFile(c.SLDBPath())
	if err != nil {
		t.Fatalf("OpenTextFile() error = %v", err)
	}
	defer tf.Close()

	if _, err := (MD5Strategy{}).FindEntry(tf, SLDBKey{Digest: "abc"}); !errors.Is(err, ErrInvalid) {
		t.Errorf("FindEntry() error = %v, want ErrInvalid", err)
	}
}

func TestPathStrategy_KeyAtEOF(t *testing.T) {
	// コメント行がファイルの最後にある
	c := newTestCollection(t, testDatabase{sldb: "; /DEMOS/Last.sid\n"}, Options{})
	if _, err := c.SLDBEntry(psidPath(c, "/DEMOS/Last.sid")); !errors.Is(err, ErrNotFound) {
		t.Errorf("SLDBEntry() error = %v, want ErrNotFound", err)
	}
}
