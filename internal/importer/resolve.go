package importer

import (
	"sort"
	"strings"
)

// RawRow is one parsed spreadsheet or JSON record keyed by its original
// header text. Cell values are strings, numbers, or nil.
type RawRow map[string]any

// minSubstringLen guards the substring stage against short candidates
// matching everywhere ("Co" would hit half the headers in a sheet).
const minSubstringLen = 3

// ResolveValue finds the cell for one logical field given its ordered
// candidate spellings. Resolution runs three stages, each exhausting every
// candidate before the next stage starts:
//
//  1. exact key match;
//  2. normalized match, comparing Normalize(candidate) against a
//     normalized index of the row's keys;
//  3. substring match, where a row key's normalized form contains the
//     normalized candidate (candidates shorter than three normalized
//     characters are skipped).
//
// Earlier candidates win within a stage. A miss returns (nil, false),
// never an error.
func ResolveValue(row RawRow, candidates []string) (any, bool) {
	for _, key := range candidates {
		if v, ok := row[key]; ok && v != nil {
			return v, true
		}
	}

	rowKeys := make([]string, 0, len(row))
	for k := range row {
		rowKeys = append(rowKeys, k)
	}
	sort.Strings(rowKeys)

	normalizedIndex := make(map[string]string, len(rowKeys))
	for _, k := range rowKeys {
		normalizedIndex[Normalize(k)] = k
	}

	for _, key := range candidates {
		if original, ok := normalizedIndex[Normalize(key)]; ok {
			if v := row[original]; v != nil {
				return v, true
			}
		}
	}

	for _, key := range candidates {
		target := Normalize(key)
		if len([]rune(target)) < minSubstringLen {
			continue
		}
		for _, rk := range rowKeys {
			if strings.Contains(Normalize(rk), target) {
				if v := row[rk]; v != nil {
					return v, true
				}
			}
		}
	}

	return nil, false
}
