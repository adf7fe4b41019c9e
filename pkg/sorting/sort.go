// Package sorting orders the aggregated asset collection by a selected
// table column. Columns are either direct asset fields (name, relation)
// or derived from the review-info map for one phase:
// <phase>_work_status, <phase>_approval_status, <phase>_submitted_at.
//
// The produced order is always a permutation of the input. Rows with no
// review record for the sorted phase, or an unknown status code, sort
// after every row with a known value in both directions; ties keep the
// input's relative order.
package sorting

import (
	"sort"
	"strings"
	"time"

	"github.com/prodtrack/asset-review-client/pkg/client"
	"github.com/prodtrack/asset-review-client/pkg/enrich"
)

// Direction selects ascending or descending order.
type Direction string

const (
	// Asc sorts in natural comparison order.
	Asc Direction = "asc"

	// Desc reverses the natural order of present values. Absent values
	// still sort last.
	Desc Direction = "desc"
)

// column kinds after resolution.
type columnKind int

const (
	kindName columnKind = iota
	kindRelation
	kindWorkStatus
	kindApprovalStatus
	kindSubmittedAt
)

// sortKey is the comparison key extracted for one asset. ok is false
// when the value is absent (no review record, unknown status code,
// unparseable timestamp).
type sortKey struct {
	str string
	num int
	at  time.Time
	ok  bool
}

// Sort returns a new slice with assets ordered by the given column and
// direction. An empty column or direction returns the input order
// unchanged. The input slice is never modified, and the output is always
// a permutation of the input: rows with missing data are kept and sort
// last. Equal keys preserve the input's relative order.
func Sort(assets []client.Asset, column string, direction Direction, reviewInfos map[string]client.ReviewInfo) []client.Asset {
	out := make([]client.Asset, len(assets))
	copy(out, assets)

	if column == "" || direction == "" {
		return out
	}

	phase, kind, ok := resolveColumn(column)
	if !ok {
		// Unknown column behaves like no column: original order
		return out
	}

	desc := direction == Desc

	sort.SliceStable(out, func(i, j int) bool {
		a := extractKey(out[i], phase, kind, reviewInfos)
		b := extractKey(out[j], phase, kind, reviewInfos)

		// Absent values sort last regardless of direction
		if a.ok != b.ok {
			return a.ok
		}
		if !a.ok {
			return false
		}

		c := compareKeys(a, b, kind)
		if c == 0 {
			return false
		}
		if desc {
			c = -c
		}
		return c < 0
	})

	return out
}

// resolveColumn maps a column identifier to a direct field or a
// phase-derived review field.
func resolveColumn(column string) (phase string, kind columnKind, ok bool) {
	switch column {
	case "name":
		return "", kindName, true
	case "relation":
		return "", kindRelation, true
	}

	for _, p := range Phases {
		rest, found := strings.CutPrefix(column, p+"_")
		if !found {
			continue
		}
		switch rest {
		case "work_status":
			return p, kindWorkStatus, true
		case "approval_status":
			return p, kindApprovalStatus, true
		case "submitted_at":
			return p, kindSubmittedAt, true
		}
	}

	return "", 0, false
}

// extractKey resolves the comparison key for one asset.
func extractKey(asset client.Asset, phase string, kind columnKind, reviewInfos map[string]client.ReviewInfo) sortKey {
	switch kind {
	case kindName:
		return sortKey{str: asset.Name, ok: true}
	case kindRelation:
		return sortKey{str: asset.Relation, ok: true}
	}

	info, found := reviewInfos[enrich.ReviewKey(asset.Name, asset.Relation, phase)]
	if !found {
		return sortKey{}
	}

	switch kind {
	case kindWorkStatus:
		rank, known := WorkStatusRank(info.WorkStatus)
		return sortKey{num: rank, ok: known}
	case kindApprovalStatus:
		rank, known := ApprovalStatusRank(info.ApprovalStatus)
		return sortKey{num: rank, ok: known}
	case kindSubmittedAt:
		at, present := info.SubmittedAt()
		return sortKey{at: at, ok: present}
	}

	return sortKey{}
}

// compareKeys compares two present keys: -1, 0, or 1.
func compareKeys(a, b sortKey, kind columnKind) int {
	switch kind {
	case kindName, kindRelation:
		return strings.Compare(a.str, b.str)
	case kindWorkStatus, kindApprovalStatus:
		switch {
		case a.num < b.num:
			return -1
		case a.num > b.num:
			return 1
		}
		return 0
	case kindSubmittedAt:
		switch {
		case a.at.Before(b.at):
			return -1
		case a.at.After(b.at):
			return 1
		}
		return 0
	}
	return 0
}
