package cache

import (
	"fmt"
	"net/url"
	"sort"
	"strings"
)

// Key uniquely identifies a cached review API response.
type Key struct {
	// Endpoint is the request path
	// (e.g. "/api/projects/demo/reviews/assets")
	Endpoint string

	// Query are the request query parameters (e.g. {"page": ["1"]})
	Query url.Values
}

// String generates a deterministic cache key string.
// Format: review:endpoint:query1=val1:query2=val2
//
// Example:
//
//	review:api/projects/demo/reviews/assets:page=1:per_page=100
func (k Key) String() string {
	parts := []string{"review"}

	endpoint := strings.Trim(k.Endpoint, "/")
	if endpoint != "" {
		parts = append(parts, endpoint)
	}

	// Query params sorted for determinism
	if len(k.Query) > 0 {
		queryKeys := make([]string, 0, len(k.Query))
		for key := range k.Query {
			queryKeys = append(queryKeys, key)
		}
		sort.Strings(queryKeys)

		for _, key := range queryKeys {
			parts = append(parts, fmt.Sprintf("%s=%s", key, k.Query.Get(key)))
		}
	}

	return strings.Join(parts, ":")
}
