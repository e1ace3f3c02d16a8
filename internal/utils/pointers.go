package utils

import "fmt"

func Int64Ptr(i int64) *int64 {
	return &i
}

func StringPtr(s string) *string {
	return &s
}

const columnPrefixFmt = "%s.%s"

func PrefixSliceOfStrings(prefix string, input []string) []string {
	out := make([]string, len(input))
	for i, v := range input {
		out[i] = fmt.Sprintf(columnPrefixFmt, prefix, v)
	}
	return out
}
