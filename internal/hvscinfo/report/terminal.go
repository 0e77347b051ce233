package report

import "golang.org/x/term"

// DetectWidth は fd が端末ならその幅を、そうでなければ DefaultWidth を返します
func DetectWidth(fd int) int {
	if !term.IsTerminal(fd) {
		return DefaultWidth
	}
	width, _, err := term.GetSize(fd)
	if err != nil || width <= 0 {
		return DefaultWidth
	}
	return width
}
