package enrich

// ReviewKey is the composite key of a review record in a batch's
// review-info map: one entry per asset relation per phase.
func ReviewKey(name, relation, phase string) string {
	return name + "-" + relation + "-" + phase
}

// ThumbnailKey is the composite key of a thumbnail in a batch's
// thumbnail map: one entry per asset relation.
func ThumbnailKey(name, relation string) string {
	return name + "-" + relation
}
