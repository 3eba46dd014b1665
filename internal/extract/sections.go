package extract

import (
	"github.com/goliatone/go-mdpub/internal/domain"
	"github.com/goliatone/go-mdpub/internal/staging"
)

// GroupBlocks partitions an ordered block sequence into sections using
// heading depth as the splitting signal. A heading with level <= maxNesting
// starts a new group unless the current group is empty; deeper headings stay
// inline as ordinary content. Content before the first qualifying heading
// forms its own leading group, and a document with no qualifying headings
// yields exactly one group. Empty groups are never returned.
func GroupBlocks(blocks []staging.Block, maxNesting int) [][]staging.Block {
	groups := [][]staging.Block{{}}

	for _, block := range blocks {
		if splitsSection(block, maxNesting) && len(groups[len(groups)-1]) > 0 {
			groups = append(groups, nil)
		}
		groups[len(groups)-1] = append(groups[len(groups)-1], block)
	}

	var result [][]staging.Block
	for _, group := range groups {
		if len(group) > 0 {
			result = append(result, group)
		}
	}
	return result
}

// splitsSection reports whether block is a heading shallow enough to open a
// new section. Footer-retyped headings never split: everything after the
// footer boundary belongs to the section it started in.
func splitsSection(block staging.Block, maxNesting int) bool {
	return block.Type == domain.BlockHeading &&
		block.Level != nil &&
		*block.Level <= maxNesting
}
