package sorting

import (
	"testing"

	"github.com/prodtrack/asset-review-client/pkg/client"
	"github.com/prodtrack/asset-review-client/pkg/enrich"
)

func asset(name string) client.Asset {
	return client.Asset{Name: name, Relation: "main"}
}

func names(assets []client.Asset) []string {
	out := make([]string, len(assets))
	for i, a := range assets {
		out[i] = a.Name
	}
	return out
}

func assertOrder(t *testing.T, got []client.Asset, want []string) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("got %d assets, want %d", len(got), len(want))
	}
	for i, name := range want {
		if got[i].Name != name {
			t.Fatalf("order = %v, want %v", names(got), want)
		}
	}
}

// infoMap builds a review-info map with one mdl entry per (name, field)
// pair. field fills WorkStatus, ApprovalStatus and SubmittedAtUTC alike;
// tests pick the column that makes it meaningful.
func infoMap(entries map[string]client.ReviewInfo) map[string]client.ReviewInfo {
	out := make(map[string]client.ReviewInfo, len(entries))
	for name, info := range entries {
		info.Phase = "mdl"
		out[enrich.ReviewKey(name, "main", "mdl")] = info
	}
	return out
}

func TestSort_ByName(t *testing.T) {
	assets := []client.Asset{asset("banana"), asset("apple"), asset("cherry")}

	t.Run("ascending", func(t *testing.T) {
		got := Sort(assets, "name", Asc, nil)
		assertOrder(t, got, []string{"apple", "banana", "cherry"})
	})

	t.Run("descending", func(t *testing.T) {
		got := Sort(assets, "name", Desc, nil)
		assertOrder(t, got, []string{"cherry", "banana", "apple"})
	})

	// Input untouched
	assertOrder(t, assets, []string{"banana", "apple", "cherry"})
}

func TestSort_ByRelation(t *testing.T) {
	assets := []client.Asset{
		{Name: "a", Relation: "damaged"},
		{Name: "b", Relation: "main"},
		{Name: "c", Relation: "damaged"},
	}

	got := Sort(assets, "relation", Asc, nil)
	assertOrder(t, got, []string{"a", "c", "b"})
}

func TestSort_EmptyColumnKeepsOrder(t *testing.T) {
	assets := []client.Asset{asset("banana"), asset("apple"), asset("cherry")}

	tests := []struct {
		name      string
		column    string
		direction Direction
	}{
		{name: "empty column", column: "", direction: Asc},
		{name: "empty direction", column: "name", direction: ""},
		{name: "unknown column", column: "thumbnail", direction: Asc},
		{name: "unknown phase", column: "xyz_work_status", direction: Asc},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Sort(assets, tt.column, tt.direction, nil)
			assertOrder(t, got, []string{"banana", "apple", "cherry"})
		})
	}
}

func TestSort_ByWorkStatus(t *testing.T) {
	assets := []client.Asset{asset("a"), asset("b"), asset("c"), asset("d")}
	infos := infoMap(map[string]client.ReviewInfo{
		"a": {WorkStatus: "svApproved"},
		"b": {WorkStatus: "check"},
		"c": {WorkStatus: "leadRetake"},
		"d": {WorkStatus: "cgsvOnHold"},
	})

	t.Run("ascending follows pipeline order", func(t *testing.T) {
		got := Sort(assets, "mdl_work_status", Asc, infos)
		assertOrder(t, got, []string{"b", "d", "c", "a"})
	})

	t.Run("descending reverses pipeline order", func(t *testing.T) {
		got := Sort(assets, "mdl_work_status", Desc, infos)
		assertOrder(t, got, []string{"a", "c", "d", "b"})
	})
}

func TestSort_ByApprovalStatus(t *testing.T) {
	assets := []client.Asset{asset("a"), asset("b"), asset("c")}
	infos := infoMap(map[string]client.ReviewInfo{
		"a": {ApprovalStatus: "omit"},
		"b": {ApprovalStatus: "dirReview"},
		"c": {ApprovalStatus: "clientApproved"},
	})

	got := Sort(assets, "mdl_approval_status", Asc, infos)
	assertOrder(t, got, []string{"b", "c", "a"})
}

func TestSort_AbsentSortsLastBothDirections(t *testing.T) {
	// "gap" has no mdl review record, "odd" has an unknown status code.
	// Both must trail the known values whichever way the sort runs.
	assets := []client.Asset{asset("gap"), asset("a"), asset("odd"), asset("b")}
	infos := infoMap(map[string]client.ReviewInfo{
		"a":   {WorkStatus: "check"},
		"b":   {WorkStatus: "svApproved"},
		"odd": {WorkStatus: "someNewCode"},
	})

	t.Run("ascending", func(t *testing.T) {
		got := Sort(assets, "mdl_work_status", Asc, infos)
		assertOrder(t, got, []string{"a", "b", "gap", "odd"})
	})

	t.Run("descending", func(t *testing.T) {
		got := Sort(assets, "mdl_work_status", Desc, infos)
		assertOrder(t, got, []string{"b", "a", "gap", "odd"})
	})
}

func TestSort_BySubmittedAt(t *testing.T) {
	assets := []client.Asset{asset("mid"), asset("late"), asset("early"), asset("never")}
	infos := infoMap(map[string]client.ReviewInfo{
		"early": {SubmittedAtUTC: "2024-01-05T08:00:00Z"},
		"mid":   {SubmittedAtUTC: "2024-02-10T08:00:00Z"},
		"late":  {SubmittedAtUTC: "2024-03-15T08:00:00Z"},
		"never": {SubmittedAtUTC: ""}, // review exists, never submitted
	})

	t.Run("ascending", func(t *testing.T) {
		got := Sort(assets, "mdl_submitted_at", Asc, infos)
		assertOrder(t, got, []string{"early", "mid", "late", "never"})
	})

	t.Run("descending keeps unsubmitted last", func(t *testing.T) {
		got := Sort(assets, "mdl_submitted_at", Desc, infos)
		assertOrder(t, got, []string{"late", "mid", "early", "never"})
	})

	t.Run("unparseable timestamp sorts last", func(t *testing.T) {
		broken := infoMap(map[string]client.ReviewInfo{
			"early": {SubmittedAtUTC: "2024-01-05T08:00:00Z"},
			"mid":   {SubmittedAtUTC: "not a timestamp"},
			"late":  {SubmittedAtUTC: "2024-03-15T08:00:00Z"},
		})
		got := Sort(assets, "mdl_submitted_at", Asc, broken)
		assertOrder(t, got, []string{"early", "late", "mid", "never"})
	})
}

func TestSort_PhaseColumnsResolveIndependently(t *testing.T) {
	// The same asset collection sorts differently per phase column.
	assets := []client.Asset{asset("a"), asset("b")}
	infos := map[string]client.ReviewInfo{
		enrich.ReviewKey("a", "main", "mdl"): {Phase: "mdl", WorkStatus: "svApproved"},
		enrich.ReviewKey("b", "main", "mdl"): {Phase: "mdl", WorkStatus: "check"},
		enrich.ReviewKey("a", "main", "rig"): {Phase: "rig", WorkStatus: "check"},
		enrich.ReviewKey("b", "main", "rig"): {Phase: "rig", WorkStatus: "svApproved"},
	}

	assertOrder(t, Sort(assets, "mdl_work_status", Asc, infos), []string{"b", "a"})
	assertOrder(t, Sort(assets, "rig_work_status", Asc, infos), []string{"a", "b"})
}

func TestSort_StableOnTies(t *testing.T) {
	// Four assets share one work status; their input order must survive.
	assets := []client.Asset{asset("d"), asset("b"), asset("c"), asset("a")}
	infos := infoMap(map[string]client.ReviewInfo{
		"a": {WorkStatus: "check"},
		"b": {WorkStatus: "check"},
		"c": {WorkStatus: "check"},
		"d": {WorkStatus: "check"},
	})

	for _, direction := range []Direction{Asc, Desc} {
		got := Sort(assets, "mdl_work_status", direction, infos)
		assertOrder(t, got, []string{"d", "b", "c", "a"})
	}
}

func TestSort_Idempotent(t *testing.T) {
	assets := []client.Asset{asset("banana"), asset("apple"), asset("cherry")}

	once := Sort(assets, "name", Asc, nil)
	twice := Sort(once, "name", Asc, nil)
	assertOrder(t, twice, names(once))
}

func TestSort_PermutationOfInput(t *testing.T) {
	// Rows never vanish, even when every row lacks data for the column.
	assets := []client.Asset{asset("a"), asset("b"), asset("c")}

	got := Sort(assets, "ldv_approval_status", Asc, map[string]client.ReviewInfo{})
	if len(got) != len(assets) {
		t.Fatalf("got %d assets, want %d", len(got), len(assets))
	}
	assertOrder(t, got, []string{"a", "b", "c"})
}

func TestWorkStatusRank_PipelineOrder(t *testing.T) {
	ordered := []string{
		"check",
		"cgsvOnHold", "svOnHold", "leadOnHold",
		"cgsvRetake", "svRetake", "leadRetake",
		"cgsvApproved", "svApproved", "leadApproved",
		"svOther", "leadOther",
	}

	prev := -1
	for _, code := range ordered {
		rank, ok := WorkStatusRank(code)
		if !ok {
			t.Fatalf("WorkStatusRank(%q) unknown, want known", code)
		}
		if rank <= prev {
			t.Errorf("WorkStatusRank(%q) = %d, want > %d", code, rank, prev)
		}
		prev = rank
	}

	if _, ok := WorkStatusRank("madeUp"); ok {
		t.Error("WorkStatusRank accepted an unknown code")
	}
}

func TestApprovalStatusRank_PipelineOrder(t *testing.T) {
	ordered := []string{
		"check",
		"clientReview", "dirReview", "epdReview",
		"clientOnHold", "dirOnHold", "epdOnHold",
		"execRetake", "clientRetake", "dirRetake", "epdRetake",
		"clientApproved", "dirApproved", "epdApproved",
		"other", "omit",
	}

	prev := -1
	for _, code := range ordered {
		rank, ok := ApprovalStatusRank(code)
		if !ok {
			t.Fatalf("ApprovalStatusRank(%q) unknown, want known", code)
		}
		if rank <= prev {
			t.Errorf("ApprovalStatusRank(%q) = %d, want > %d", code, rank, prev)
		}
		prev = rank
	}

	if _, ok := ApprovalStatusRank("madeUp"); ok {
		t.Error("ApprovalStatusRank accepted an unknown code")
	}
}
