// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package progress

import "github.com/zhanweicao/academic-abstract-collection/pkg/types"

// Allocate issues the next unused author index and advances the state's
// counter. It must be called exactly once per qualifying author, before the
// record transitions to qualified and is written through Record. Indices
// issued this way — including across separate runs against one persisted
// database — are strictly increasing with no repeats and no gaps, provided
// the caller never allocates for an author it then rejects.
func Allocate(state *types.ProgressState) int {
	idx := state.NextIndex
	state.NextIndex++
	return idx
}
