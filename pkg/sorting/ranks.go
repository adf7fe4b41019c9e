package sorting

// Phases are the production phases tracked per asset, in display order.
var Phases = []string{"mdl", "rig", "bld", "dsn", "ldv"}

// Ordinal rank tables for the two status domains. Ranks follow the
// review pipeline: check, review, hold, retake, approved, then the
// catch-all codes. Lower rank sorts first ascending. Codes missing from
// a table rank after every listed code.
var workStatusRank = map[string]int{
	"check":        0,
	"cgsvOnHold":   1,
	"svOnHold":     2,
	"leadOnHold":   3,
	"cgsvRetake":   4,
	"svRetake":     5,
	"leadRetake":   6,
	"cgsvApproved": 7,
	"svApproved":   8,
	"leadApproved": 9,
	"svOther":      10,
	"leadOther":    11,
}

var approvalStatusRank = map[string]int{
	"check":          0,
	"clientReview":   1,
	"dirReview":      2,
	"epdReview":      3,
	"clientOnHold":   4,
	"dirOnHold":      5,
	"epdOnHold":      6,
	"execRetake":     7,
	"clientRetake":   8,
	"dirRetake":      9,
	"epdRetake":      10,
	"clientApproved": 11,
	"dirApproved":    12,
	"epdApproved":    13,
	"other":          14,
	"omit":           15,
}

// WorkStatusRank returns the ordinal rank of a work status code.
// The bool is false for unknown codes, which sort after all known ones.
func WorkStatusRank(code string) (int, bool) {
	rank, ok := workStatusRank[code]
	return rank, ok
}

// ApprovalStatusRank returns the ordinal rank of an approval status code.
func ApprovalStatusRank(code string) (int, bool) {
	rank, ok := approvalStatusRank[code]
	return rank, ok
}
