package app

import (
	"bytes"
	"encoding/binary"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/shiroemons/go-hvsc/internal/hvscinfo/config"
	hvscerrors "github.com/shiroemons/go-hvsc/internal/hvscinfo/errors"
	"github.com/shiroemons/go-hvsc/internal/hvscinfo/mocks"
	"github.com/shiroemons/go-hvsc/pkg/hvsc"
)

// testPSID はPSID v2ファイルのデータを作成します
func testPSID(name, author string, songs uint16) []byte {
	data := make([]byte, 0x7c+3)
	copy(data, "PSID")
	binary.BigEndian.PutUint16(data[0x04:], 2)
	binary.BigEndian.PutUint16(data[0x06:], 0x7c)
	binary.BigEndian.PutUint16(data[0x08:], 0x1000)
	binary.BigEndian.PutUint16(data[0x0a:], 0x1000)
	binary.BigEndian.PutUint16(data[0x0c:], 0x1001)
	binary.BigEndian.PutUint16(data[0x0e:], songs)
	binary.BigEndian.PutUint16(data[0x10:], 1)
	copy(data[0x16:0x36], name)
	copy(data[0x36:0x56], author)
	copy(data[0x56:0x76], "1985 Test")
	binary.BigEndian.PutUint16(data[0x76:], 0x14)
	copy(data[0x7c:], []byte{0x60, 0x60, 0x60})
	return data
}

// newTestApp はモックを使ったAppと出力先を作成します
func newTestApp(cfg *config.Config, fs *mocks.MockFileSystem, source *mocks.MockMetadataSource) (*App, *bytes.Buffer, *bytes.Buffer) {
	var stdout, stderr bytes.Buffer
	app := NewWithOptions(cfg, Options{
		FileSystem: fs,
		Source:     source,
		Stdout:     &stdout,
		Stderr:     &stderr,
	})
	return app, &stdout, &stderr
}

func TestApp_Run(t *testing.T) {
	fs := mocks.NewMockFileSystem()
	fs.Files["/hvsc/MUSICIANS/T/Test/Tune.sid"] = testPSID("Tune", "Test Author", 2)

	source := mocks.NewMockMetadataSource("/hvsc")
	source.SongLengthsData["/MUSICIANS/T/Test/Tune.sid"] = []int{185, 60}
	source.DirectoryComments["/MUSICIANS/T/Test/Tune.sid"] = "Test directory."
	source.BugsData["/MUSICIANS/T/Test/Tune.sid"] = &hvsc.BugsEntry{
		Path: "/MUSICIANS/T/Test/Tune.sid",
		Text: "Plays too fast.",
	}

	cfg := &config.Config{Files: []string{"/hvsc/MUSICIANS/T/Test/Tune.sid"}}
	app, stdout, stderr := newTestApp(cfg, fs, source)

	if err := app.Run(t.Context()); err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	out := stdout.String()
	for _, s := range []string{
		"File       : /MUSICIANS/T/Test/Tune.sid\n",
		"Name       : Tune\n",
		"Author     : Test Author\n",
		"Load       : $1000-$1002\n",
		"\nDirectory comment:\n  Test directory.\n",
		"\nTune 1 (3:05)\n",
		"\nTune 2 (1:00)\n",
		"\nBUG: Plays too fast.\n",
	} {
		if !strings.Contains(out, s) {
			t.Errorf("output does not contain %q:\n%s", s, out)
		}
	}
	if stderr.Len() != 0 {
		t.Errorf("unexpected stderr: %s", stderr.String())
	}
}

func TestApp_Run_Errors(t *testing.T) {
	tests := []struct {
		name      string
		files     []string
		setupMock func(*mocks.MockFileSystem)
		wantError error
	}{
		{
			name:      "ファイルの指定なし",
			files:     nil,
			setupMock: func(fs *mocks.MockFileSystem) {},
			wantError: hvscerrors.ErrNoPSIDFiles,
		},
		{
			name:      "ファイルが読めない",
			files:     []string{"/hvsc/missing.sid"},
			setupMock: func(fs *mocks.MockFileSystem) {},
			wantError: ErrReadFile,
		},
		{
			name:  "PSIDではない",
			files: []string{"/hvsc/readme.sid"},
			setupMock: func(fs *mocks.MockFileSystem) {
				fs.Files["/hvsc/readme.sid"] = []byte("this is not a SID file")
			},
			wantError: hvscerrors.ErrInvalidPSID,
		},
		{
			name:  "ディレクトリ",
			files: []string{"/hvsc/MUSICIANS"},
			setupMock: func(fs *mocks.MockFileSystem) {
				fs.Dirs["/hvsc/MUSICIANS"] = true
			},
			wantError: ErrIsDirectory,
		},
		{
			name:  "不正なマジック",
			files: []string{"/hvsc/bad.sid"},
			setupMock: func(fs *mocks.MockFileSystem) {
				data := testPSID("Bad", "Bad", 1)
				copy(data, "XSID")
				fs.Files["/hvsc/bad.sid"] = data
			},
			wantError: hvsc.ErrInvalid,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fs := mocks.NewMockFileSystem()
			tt.setupMock(fs)

			cfg := &config.Config{Files: tt.files}
			app, _, _ := newTestApp(cfg, fs, mocks.NewMockMetadataSource("/hvsc"))

			err := app.Run(t.Context())
			if !errors.Is(err, tt.wantError) {
				t.Errorf("Run() error = %v, want %v", err, tt.wantError)
			}
		})
	}
}

func TestApp_Run_ContinuesAfterError(t *testing.T) {
	fs := mocks.NewMockFileSystem()
	fs.Files["/hvsc/Good.sid"] = testPSID("Good", "Someone", 1)

	cfg := &config.Config{Files: []string{"/hvsc/Missing.sid", "/hvsc/Good.sid"}}
	app, stdout, stderr := newTestApp(cfg, fs, mocks.NewMockMetadataSource("/hvsc"))

	err := app.Run(t.Context())

	var reportErr *hvscerrors.ReportError
	if !errors.As(err, &reportErr) {
		t.Fatalf("Run() error = %v, want ReportError", err)
	}
	if reportErr.File != "/hvsc/Missing.sid" {
		t.Errorf("ReportError.File = %q, want %q", reportErr.File, "/hvsc/Missing.sid")
	}
	if !strings.Contains(stdout.String(), "Name       : Good\n") {
		t.Errorf("second file was not reported:\n%s", stdout.String())
	}
	if !strings.Contains(stderr.String(), "エラー: ") {
		t.Errorf("stderr = %q, want error message", stderr.String())
	}
}

func TestApp_Run_LookupWarnings(t *testing.T) {
	fs := mocks.NewMockFileSystem()
	fs.Files["/hvsc/Tune.sid"] = testPSID("Tune", "Someone", 1)

	source := mocks.NewMockMetadataSource("/hvsc")
	source.Error = hvsc.ErrIO

	cfg := &config.Config{Files: []string{"/hvsc/Tune.sid"}, Tune: 3}
	app, stdout, stderr := newTestApp(cfg, fs, source)

	if err := app.Run(t.Context()); err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	for _, s := range []string{"SLDB /hvsc/Tune.sid", "STIL /hvsc/Tune.sid", "BUGlist /hvsc/Tune.sid", "サブチューン 3"} {
		if !strings.Contains(stderr.String(), s) {
			t.Errorf("stderr does not contain %q:\n%s", s, stderr.String())
		}
	}
	if !strings.Contains(stdout.String(), "Warning: ") {
		t.Errorf("report has no warnings:\n%s", stdout.String())
	}
}

func TestApp_Run_NotFoundIsSilent(t *testing.T) {
	fs := mocks.NewMockFileSystem()
	fs.Files["/hvsc/Tune.sid"] = testPSID("Tune", "Someone", 1)

	cfg := &config.Config{Files: []string{"/hvsc/Tune.sid"}}
	app, stdout, stderr := newTestApp(cfg, fs, mocks.NewMockMetadataSource("/hvsc"))

	if err := app.Run(t.Context()); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if stderr.Len() != 0 {
		t.Errorf("unexpected stderr: %s", stderr.String())
	}
	if strings.Contains(stdout.String(), "Warning") {
		t.Errorf("unexpected warning:\n%s", stdout.String())
	}
}

func TestApp_Run_SaveReport(t *testing.T) {
	fs := mocks.NewMockFileSystem()
	fs.Files["/hvsc/GAMES/Commando.sid"] = testPSID("Commando", "Rob Hubbard", 1)

	cfg := &config.Config{
		Files:     []string{"/hvsc/GAMES/Commando.sid"},
		OutputDir: "/out",
	}
	app, stdout, _ := newTestApp(cfg, fs, mocks.NewMockMetadataSource("/hvsc"))

	if err := app.Run(t.Context()); err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	saved, ok := fs.Files[filepath.Join("/out", "hvscinfo_Commando.txt")]
	if !ok {
		t.Fatal("report was not saved")
	}
	if string(saved) != stdout.String() {
		t.Errorf("saved report = %q, want %q", saved, stdout.String())
	}
}

func TestApp_Run_Compare(t *testing.T) {
	fs := mocks.NewMockFileSystem()
	fs.Files["/hvsc/A.sid"] = testPSID("Tune A", "Someone", 1)
	fs.Files["/hvsc/B.sid"] = testPSID("Tune B", "Someone", 1)

	cfg := &config.Config{
		Files:   []string{"/hvsc/A.sid"},
		Compare: "/hvsc/B.sid",
	}
	app, stdout, _ := newTestApp(cfg, fs, mocks.NewMockMetadataSource("/hvsc"))

	if err := app.Run(t.Context()); err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	out := stdout.String()
	for _, s := range []string{
		"--- /hvsc/A.sid",
		"+++ /hvsc/B.sid",
		"\n-File       : /A.sid\n",
		"\n+File       : /B.sid\n",
		"\n-Name       : Tune A\n",
		"\n+Name       : Tune B\n",
	} {
		if !strings.Contains(out, s) {
			t.Errorf("output does not contain %q:\n%s", s, out)
		}
	}
}

func TestApp_Run_CompareError(t *testing.T) {
	fs := mocks.NewMockFileSystem()
	fs.Files["/hvsc/A.sid"] = testPSID("Tune A", "Someone", 1)

	cfg := &config.Config{
		Files:   []string{"/hvsc/A.sid"},
		Compare: "/hvsc/missing.sid",
	}
	app, _, _ := newTestApp(cfg, fs, mocks.NewMockMetadataSource("/hvsc"))

	err := app.Run(t.Context())
	if !errors.Is(err, ErrCompare) || !errors.Is(err, ErrReadFile) {
		t.Errorf("Run() error = %v, want ErrCompare and ErrReadFile", err)
	}
}

func TestApp_Run_RootFinder(t *testing.T) {
	t.Run("検出に失敗", func(t *testing.T) {
		finder := &mocks.MockRootFinder{Error: hvscerrors.ErrRootNotFound}
		cfg := &config.Config{Files: []string{"/tmp/Tune.sid"}}
		app := NewWithOptions(cfg, Options{
			FileSystem: mocks.NewMockFileSystem(),
			RootFinder: finder,
			Stdout:     &bytes.Buffer{},
			Stderr:     &bytes.Buffer{},
		})

		if err := app.Run(t.Context()); !errors.Is(err, hvscerrors.ErrRootNotFound) {
			t.Errorf("Run() error = %v, want ErrRootNotFound", err)
		}
		if len(finder.Calls) != 1 || finder.Calls[0] != "/tmp/Tune.sid" {
			t.Errorf("Find() calls = %v", finder.Calls)
		}
	})

	t.Run("-rootがあれば検出しない", func(t *testing.T) {
		root := t.TempDir()
		finder := &mocks.MockRootFinder{Error: hvscerrors.ErrRootNotFound}
		fs := mocks.NewMockFileSystem()
		psid := filepath.Join(root, "Tune.sid")
		fs.Files[psid] = testPSID("Tune", "Someone", 1)

		cfg := &config.Config{Files: []string{psid}, Root: root}
		var stdout, stderr bytes.Buffer
		app := NewWithOptions(cfg, Options{
			FileSystem: fs,
			RootFinder: finder,
			Stdout:     &stdout,
			Stderr:     &stderr,
		})

		if err := app.Run(t.Context()); err != nil {
			t.Fatalf("Run() error = %v", err)
		}
		if len(finder.Calls) != 0 {
			t.Errorf("Find() was called: %v", finder.Calls)
		}
		// データベースファイルがないので各検索はI/Oエラーの警告になる
		if !strings.Contains(stderr.String(), "警告: SLDB") {
			t.Errorf("stderr = %q, want SLDB warning", stderr.String())
		}
		if !strings.Contains(stdout.String(), "File       : /Tune.sid\n") {
			t.Errorf("output:\n%s", stdout.String())
		}
	})
}

func TestApp_Run_Collection(t *testing.T) {
	root := t.TempDir()
	docs := filepath.Join(root, "DOCUMENTS")
	if err := os.MkdirAll(docs, 0755); err != nil {
		t.Fatal(err)
	}
	files := map[string]string{
		"Songlengths.md5": "[Database]\n; /GAMES/Tune.sid\n0123456789abcdef0123456789abcdef=1:30 0:45\n",
		"STIL.txt":        "/GAMES/\nCOMMENT: Game music.\n\n/GAMES/Tune.sid\n   NAME: Title Screen\n",
		"BUGlist.txt":     "/GAMES/Other.sid\n    BUG: Wrong speed.\n",
	}
	for name, content := range files {
		if err := os.WriteFile(filepath.Join(docs, name), []byte(content), 0644); err != nil {
			t.Fatal(err)
		}
	}

	psid := filepath.Join(root, "GAMES", "Tune.sid")
	fs := mocks.NewMockFileSystem()
	fs.Files[psid] = testPSID("Tune", "Someone", 2)

	// HVSC_BASE の代わりに -root 相当を設定
	cfg := &config.Config{Files: []string{psid}, Root: root}
	var stdout, stderr bytes.Buffer
	app := NewWithOptions(cfg, Options{FileSystem: fs, Stdout: &stdout, Stderr: &stderr})

	if err := app.Run(t.Context()); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if stderr.Len() != 0 {
		t.Errorf("unexpected stderr: %s", stderr.String())
	}

	out := stdout.String()
	for _, s := range []string{
		"\nDirectory comment:\n  Game music.\n",
		"\nTune 1 (1:30)\n  NAME: Title Screen\n",
		"\nTune 2 (0:45)\n",
	} {
		if !strings.Contains(out, s) {
			t.Errorf("output does not contain %q:\n%s", s, out)
		}
	}
	if strings.Contains(out, "BUG:") {
		t.Errorf("unexpected BUG entry:\n%s", out)
	}
}

func TestApp_Run_RelativePath(t *testing.T) {
	tests := []struct {
		name string
		root string
	}{
		{name: "ルートを自動検出", root: ""},
		{name: "-rootに相対パス", root: "."},
		{name: "-rootに絶対パス", root: "abs"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			root := t.TempDir()
			for rel, content := range map[string][]byte{
				"DOCUMENTS/Songlengths.md5": []byte("[Database]\n; /GAMES/Tune.sid\n0123456789abcdef0123456789abcdef=1:30\n"),
				"DOCUMENTS/STIL.txt":        []byte("/GAMES/Tune.sid\n   NAME: Title Screen\n"),
				"DOCUMENTS/BUGlist.txt":     []byte("/GAMES/Tune.sid\n    BUG: Wrong speed.\n"),
				"GAMES/Tune.sid":            testPSID("Tune", "Someone", 1),
			} {
				path := filepath.Join(root, filepath.FromSlash(rel))
				if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
					t.Fatal(err)
				}
				if err := os.WriteFile(path, content, 0644); err != nil {
					t.Fatal(err)
				}
			}
			t.Chdir(root)

			cfgRoot := tt.root
			if cfgRoot == "abs" {
				cfgRoot = root
			}
			cfg := &config.Config{Files: []string{filepath.Join("GAMES", "Tune.sid")}, Root: cfgRoot}
			var stdout, stderr bytes.Buffer
			app := NewWithOptions(cfg, Options{Stdout: &stdout, Stderr: &stderr})

			if err := app.Run(t.Context()); err != nil {
				t.Fatalf("Run() error = %v", err)
			}
			if stderr.Len() != 0 {
				t.Errorf("unexpected stderr: %s", stderr.String())
			}

			out := stdout.String()
			for _, s := range []string{
				"File       : /GAMES/Tune.sid\n",
				"\nTune 1 (1:30)\n  NAME: Title Screen\n",
				"\nBUG: Wrong speed.\n",
			} {
				if !strings.Contains(out, s) {
					t.Errorf("output does not contain %q:\n%s", s, out)
				}
			}
		})
	}
}
