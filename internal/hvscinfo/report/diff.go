package report

import (
	"strings"

	difflib "github.com/pmezard/go-difflib/difflib"
)

// diffContext は差分の前後に表示する行数
const diffContext = 3

// Diff は2つのレポートのunified diffを返します。差分がなければ空文字列です。
func Diff(aName, a, bName, b string) (string, error) {
	u := difflib.UnifiedDiff{
		A:        splitLinesKeepNL(a),
		B:        splitLinesKeepNL(b),
		FromFile: aName,
		ToFile:   bName,
		Context:  diffContext,
	}
	return difflib.GetUnifiedDiffString(u)
}

func splitLinesKeepNL(s string) []string {
	if s == "" {
		return nil
	}
	lines := strings.SplitAfter(s, "\n")
	// 末尾が改行の場合の空要素
	if lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	return lines
}
