package hvsc

import (
	"os"
	"path/filepath"
	"testing"
)

// writeTestFile はテスト用のファイルを作成します
func writeTestFile(t *testing.T, path string, data []byte) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("Failed to create directory: %v", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatalf("Failed to create test file: %v", err)
	}
}

// testDatabase はテスト用HVSCのデータベースの内容
type testDatabase struct {
	sldb string
	stil string
	bugs string
}

// newTestCollection は一時ディレクトリにHVSCのディレクトリ構成を作成します
func newTestCollection(t *testing.T, db testDatabase, opts Options) *Collection {
	t.Helper()
	root := t.TempDir()
	writeTestFile(t, filepath.Join(root, "DOCUMENTS", "Songlengths.md5"), []byte(db.sldb))
	writeTestFile(t, filepath.Join(root, "DOCUMENTS", "STIL.txt"), []byte(db.stil))
	writeTestFile(t, filepath.Join(root, "DOCUMENTS", "BUGlist.txt"), []byte(db.bugs))
	return NewCollectionWithOptions(root, opts)
}

// psidPath はHVSCルートからの相対パスを絶対パスに変換します
func psidPath(c *Collection, rel string) string {
	return filepath.Join(c.Root(), filepath.FromSlash(rel))
}

// testLogger はログをテストの出力に流します
type testLogger struct {
	t *testing.T
}

func (l testLogger) Printf(format string, a ...any) {
	l.t.Helper()
	l.t.Logf(format, a...)
}
