package mocks

import (
	"strings"

	"github.com/shiroemons/go-hvsc/pkg/hvsc"
)

// MockMetadataSource はテスト用のMetadataSourceモック。
// キーはRelativePathが返す相対パスです。未登録のキーは hvsc.ErrNotFound になります。
type MockMetadataSource struct {
	Root              string
	SongLengthsData   map[string][]int
	STILData          map[string]*hvsc.STIL
	DirectoryComments map[string]string
	BugsData          map[string]*hvsc.BugsEntry

	// Error が設定されている場合は全ての検索でこのエラーを返します
	Error error
}

// NewMockMetadataSource は新しいMockMetadataSourceを作成します
func NewMockMetadataSource(root string) *MockMetadataSource {
	return &MockMetadataSource{
		Root:              root,
		SongLengthsData:   make(map[string][]int),
		STILData:          make(map[string]*hvsc.STIL),
		DirectoryComments: make(map[string]string),
		BugsData:          make(map[string]*hvsc.BugsEntry),
	}
}

// RelativePath はRootを取り除いたパスを返します
func (m *MockMetadataSource) RelativePath(psid string) string {
	return strings.TrimPrefix(psid, m.Root)
}

// SongLengths は登録された演奏時間を返します
func (m *MockMetadataSource) SongLengths(psid string) ([]int, error) {
	if m.Error != nil {
		return nil, m.Error
	}
	lengths, ok := m.SongLengthsData[m.RelativePath(psid)]
	if !ok {
		return nil, hvsc.ErrNotFound
	}
	return lengths, nil
}

// STIL は登録されたSTILエントリを返します
func (m *MockMetadataSource) STIL(psid string) (*hvsc.STIL, error) {
	if m.Error != nil {
		return nil, m.Error
	}
	stil, ok := m.STILData[m.RelativePath(psid)]
	if !ok {
		return nil, hvsc.ErrNotFound
	}
	return stil, nil
}

// STILDirectoryComment は登録されたディレクトリコメントを返します
func (m *MockMetadataSource) STILDirectoryComment(psid string) (string, error) {
	if m.Error != nil {
		return "", m.Error
	}
	comment, ok := m.DirectoryComments[m.RelativePath(psid)]
	if !ok {
		return "", hvsc.ErrNotFound
	}
	return comment, nil
}

// Bugs は登録されたBUGlistエントリを返します
func (m *MockMetadataSource) Bugs(psid string) (*hvsc.BugsEntry, error) {
	if m.Error != nil {
		return nil, m.Error
	}
	bugs, ok := m.BugsData[m.RelativePath(psid)]
	if !ok {
		return nil, hvsc.ErrNotFound
	}
	return bugs, nil
}
