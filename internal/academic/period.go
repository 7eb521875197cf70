package academic

import (
	"strconv"
	"strings"
)

// ValidAcademicYear reports whether s is "YYYY/YYYY" with consecutive years.
func ValidAcademicYear(s string) bool {
	first, second, ok := strings.Cut(s, "/")
	if !ok || len(first) != 4 || len(second) != 4 {
		return false
	}
	a, err := strconv.Atoi(first)
	if err != nil {
		return false
	}
	b, err := strconv.Atoi(second)
	if err != nil {
		return false
	}
	return a >= 1900 && b == a+1
}
