package monitor

import (
	"golang.org/x/exp/slices"

	"github.com/reviewradar/reviewradar/api/types"
)

// Categorize buckets every review across all hosts into attention categories
// from the viewer's perspective. A review lands in exactly one bucket; keys
// are present only when non-empty.
func Categorize(results []types.ReviewSet) types.CategoryMap {
	cats := types.CategoryMap{}
	for _, set := range results {
		viewer := set.Viewer.AccountID
		for _, review := range set.Reviews {
			switch {
			case review.WorkInProgress && review.Owner.AccountID == viewer:
				cats[types.CategoryWIP] = append(cats[types.CategoryWIP], review)
			case slices.Contains(review.AttentionIDs, viewer):
				cats[types.CategoryNeedsAttention] = append(cats[types.CategoryNeedsAttention], review)
			case review.Owner.AccountID == viewer:
				cats[types.CategoryOutgoing] = append(cats[types.CategoryOutgoing], review)
			case slices.Contains(review.ReviewerIDs, viewer):
				cats[types.CategoryIncoming] = append(cats[types.CategoryIncoming], review)
			}
		}
	}
	return cats
}
