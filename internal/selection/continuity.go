// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package selection

import "github.com/zhanweicao/academic-abstract-collection/pkg/types"

// Qualify decides whether a per-year selection qualifies the author: every
// required year must have a selected paper and every selected paper must
// have a non-empty abstract. A single gap disqualifies the whole author —
// partial credit is deliberately disallowed so every emitted author carries
// a complete, comparable record.
//
// The returned reason names the first failing year in ascending year order
// ("missing-year:2024" or "missing-abstract:2022") and is empty when the
// author qualifies. Disqualification is a normal outcome, not an error.
func Qualify(yearMap map[int]types.Paper, requiredYears []int) (types.AuthorStatus, string) {
	for _, year := range requiredYears {
		paper, ok := yearMap[year]
		if !ok {
			return types.StatusDisqualified, types.MissingYearReason(year)
		}
		if !paper.HasAbstract() {
			return types.StatusDisqualified, types.MissingAbstractReason(year)
		}
	}
	return types.StatusQualified, ""
}
