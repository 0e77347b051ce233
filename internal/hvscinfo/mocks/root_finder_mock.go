package mocks

// MockRootFinder はテスト用のRootFinderモック
type MockRootFinder struct {
	Root  string
	Error error
	Calls []string
}

// Find はRootとErrorを返します
func (m *MockRootFinder) Find(psidPath string) (string, error) {
	m.Calls = append(m.Calls, psidPath)
	return m.Root, m.Error
}
