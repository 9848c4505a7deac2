package google

import (
	"fmt"
	"strings"
)

// findRow returns the 1-based sheet row holding id in column A, or 0.
// values is the column A read starting at row 1.
func findRow(values [][]interface{}, id string) int {
	for i, row := range values {
		if len(row) == 0 {
			continue
		}
		if strings.TrimSpace(fmt.Sprint(row[0])) == id {
			return i + 1
		}
	}
	return 0
}

// nextRow is the first row after the used part of column A, never above row 2.
func nextRow(values [][]interface{}) int {
	if len(values) < 1 {
		return 2
	}
	return len(values) + 1
}

func hasHeader(values [][]interface{}) bool {
	return len(values) > 0 && len(values[0]) > 0 &&
		strings.EqualFold(strings.TrimSpace(fmt.Sprint(values[0][0])), "ID")
}

func toRow(cells []string) []interface{} {
	out := make([]interface{}, len(cells))
	for i, c := range cells {
		out[i] = c
	}
	return out
}

// lastColumn is the column letter of the final header cell.
func lastColumn(width int) string {
	return string(rune('A' + width - 1))
}
