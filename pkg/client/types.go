package client

import (
	"fmt"
	"strings"
	"time"
)

// Asset identifies a single row in the production asset table.
// The (Name, Relation) pair is unique within a project; Relation is a
// label (e.g. "main", "damaged"), not a reference to another asset.
type Asset struct {
	Name     string `json:"name"`
	Relation string `json:"relation"`
}

// ReviewComment is a single free-text comment attached to a review.
type ReviewComment struct {
	Text            string   `json:"text"`
	Language        string   `json:"language"`
	Attachments     []string `json:"attachments"`
	IsTranslated    bool     `json:"is_translated"`
	NeedTranslation bool     `json:"need_translation"`
}

// ReviewInfo is the per-asset-per-phase review record returned by the
// tracking server. WorkStatus and ApprovalStatus are categorical codes;
// SubmittedAtUTC is an RFC 3339 instant.
type ReviewInfo struct {
	TaskID         string          `json:"task_id"`
	Project        string          `json:"project"`
	TakePath       string          `json:"take_path"`
	Root           string          `json:"root"`
	Relation       string          `json:"relation"`
	Phase          string          `json:"phase"`
	Component      string          `json:"component"`
	Take           string          `json:"take"`
	ApprovalStatus string          `json:"approval_status"`
	WorkStatus     string          `json:"work_status"`
	SubmittedAtUTC string          `json:"submitted_at_utc"`
	SubmittedUser  string          `json:"submitted_user"`
	ModifiedAtUTC  string          `json:"modified_at_utc"`
	ID             int64           `json:"id"`
	Groups         []string        `json:"groups"`
	Group1         string          `json:"group_1"`
	ReviewComments []ReviewComment `json:"review_comments"`
}

// SubmittedAt parses SubmittedAtUTC. The bool is false when the field is
// empty or unparseable.
func (r *ReviewInfo) SubmittedAt() (time.Time, bool) {
	if r.SubmittedAtUTC == "" {
		return time.Time{}, false
	}
	t, err := time.Parse(time.RFC3339, r.SubmittedAtUTC)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// CommentText joins all non-empty review comments into one block of
// "language:\ntext" paragraphs, one per comment.
func (r *ReviewInfo) CommentText() string {
	lines := make([]string, 0, len(r.ReviewComments))
	for _, c := range r.ReviewComments {
		if c.Text == "" {
			continue
		}
		lines = append(lines, fmt.Sprintf("%s:\n%s", c.Language, c.Text))
	}
	return strings.Join(lines, "\n")
}

// AssetPage is one page of the project asset list. Total is the
// server-reported number of assets across all pages.
type AssetPage struct {
	Assets []Asset `json:"assets"`
	Total  int     `json:"total"`
}

// reviewInfoListResponse is the wire shape of the reviewInfos endpoint.
type reviewInfoListResponse struct {
	Reviews []ReviewInfo `json:"reviews"`
	Next    *string      `json:"next"`
	Total   int          `json:"total"`
}

// Thumbnail is an opaque image payload for one asset.
type Thumbnail struct {
	Data        []byte
	ContentType string
}
