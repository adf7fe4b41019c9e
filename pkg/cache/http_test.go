package cache

import (
	"bytes"
	"io"
	"net/http"
	"testing"
	"time"
)

func newResponse(body string, headers map[string]string) *http.Response {
	resp := &http.Response{
		StatusCode: http.StatusOK,
		Header:     http.Header{},
		Body:       io.NopCloser(bytes.NewReader([]byte(body))),
	}
	for key, value := range headers {
		resp.Header.Set(key, value)
	}
	return resp
}

func TestResponseToEntry(t *testing.T) {
	expires := time.Now().Add(10 * time.Minute).UTC().Truncate(time.Second)
	lastMod := time.Now().Add(-1 * time.Hour).UTC().Truncate(time.Second)

	resp := newResponse(`{"assets": []}`, map[string]string{
		"ETag":          `"abc123"`,
		"Expires":       expires.Format(http.TimeFormat),
		"Last-Modified": lastMod.Format(http.TimeFormat),
	})

	entry, err := ResponseToEntry(resp)
	if err != nil {
		t.Fatalf("ResponseToEntry() error = %v", err)
	}

	if string(entry.Data) != `{"assets": []}` {
		t.Errorf("Data = %q", entry.Data)
	}
	if entry.ETag != `"abc123"` {
		t.Errorf("ETag = %q", entry.ETag)
	}
	if !entry.Expires.Equal(expires) {
		t.Errorf("Expires = %v, want %v", entry.Expires, expires)
	}
	if !entry.LastModified.Equal(lastMod) {
		t.Errorf("LastModified = %v, want %v", entry.LastModified, lastMod)
	}

	// Body must be restored for the caller
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read restored body: %v", err)
	}
	if string(body) != `{"assets": []}` {
		t.Errorf("restored body = %q", body)
	}
}

func TestResponseToEntry_NilResponse(t *testing.T) {
	if _, err := ResponseToEntry(nil); err == nil {
		t.Error("ResponseToEntry(nil) error = nil, want error")
	}
}

func TestResponseToEntry_MissingExpires(t *testing.T) {
	resp := newResponse(`{}`, nil)

	entry, err := ResponseToEntry(resp)
	if err != nil {
		t.Fatalf("ResponseToEntry() error = %v", err)
	}

	// Falls back to DefaultTTL
	ttl := entry.TTL()
	if ttl <= 4*time.Minute || ttl > DefaultTTL {
		t.Errorf("TTL() = %v, want ~%v", ttl, DefaultTTL)
	}
}

func TestEntryToResponse(t *testing.T) {
	entry := &Entry{
		Data:       []byte(`{"assets": []}`),
		StatusCode: http.StatusOK,
		Headers:    http.Header{"Content-Type": []string{"application/json; charset=utf-8"}},
	}

	resp := EntryToResponse(entry)
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Errorf("StatusCode = %d, want 200", resp.StatusCode)
	}
	if got := resp.Header.Get("Content-Type"); got != "application/json; charset=utf-8" {
		t.Errorf("Content-Type = %q", got)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	if string(body) != `{"assets": []}` {
		t.Errorf("body = %q", body)
	}
}

func TestShouldMakeConditionalRequest(t *testing.T) {
	tests := []struct {
		name  string
		entry *Entry
		want  bool
	}{
		{name: "nil entry", entry: nil, want: false},
		{name: "etag present", entry: &Entry{ETag: `"abc"`}, want: true},
		{name: "last-modified present", entry: &Entry{LastModified: time.Now()}, want: true},
		{name: "neither present", entry: &Entry{}, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ShouldMakeConditionalRequest(tt.entry); got != tt.want {
				t.Errorf("ShouldMakeConditionalRequest() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestAddConditionalHeaders(t *testing.T) {
	t.Run("prefers etag", func(t *testing.T) {
		req, _ := http.NewRequest(http.MethodGet, "http://example.com", nil)
		entry := &Entry{ETag: `"abc"`, LastModified: time.Now()}

		AddConditionalHeaders(req, entry)

		if got := req.Header.Get("If-None-Match"); got != `"abc"` {
			t.Errorf("If-None-Match = %q", got)
		}
		if got := req.Header.Get("If-Modified-Since"); got != "" {
			t.Errorf("If-Modified-Since = %q, want unset when ETag present", got)
		}
	})

	t.Run("falls back to last-modified", func(t *testing.T) {
		req, _ := http.NewRequest(http.MethodGet, "http://example.com", nil)
		lastMod := time.Now().UTC().Truncate(time.Second)
		entry := &Entry{LastModified: lastMod}

		AddConditionalHeaders(req, entry)

		if got := req.Header.Get("If-Modified-Since"); got != lastMod.Format(http.TimeFormat) {
			t.Errorf("If-Modified-Since = %q", got)
		}
	})

	t.Run("nil safe", func(t *testing.T) {
		AddConditionalHeaders(nil, nil) // must not panic
	})
}
