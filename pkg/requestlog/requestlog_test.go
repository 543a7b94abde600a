package requestlog

import (
	"encoding/json"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/getfakerest/fakerest/internal/id"
)

// ── Entry tests ──────────────────────────────────────────────────────────────

func TestEntry_JSONRoundTrip(t *testing.T) {
	now := time.Now().Truncate(time.Millisecond)
	entry := &Entry{
		ID:             "01ARZ3NDEKTSV4RRFFQ69G5FAV",
		Timestamp:      now,
		ConnectionID:   "conn-1",
		RemoteAddr:     "127.0.0.1",
		Method:         "GET",
		Path:           "/api/users",
		Query:          map[string]string{"page": "1"},
		Headers:        map[string]string{"Accept": "application/json"},
		MatchedPath:    "/api/users",
		Outcome:        OutcomeMatched,
		ResponseStatus: 200,
		ResponseBody:   `[{"id":1}]`,
		ResponseSize:   10,
		DurationMs:     5,
	}

	data, err := json.Marshal(entry)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	var decoded Entry
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	if decoded.ID != entry.ID {
		t.Errorf("ID mismatch: got %q want %q", decoded.ID, entry.ID)
	}
	if decoded.Method != "GET" {
		t.Errorf("Method mismatch: got %q", decoded.Method)
	}
	if decoded.Path != "/api/users" {
		t.Errorf("Path mismatch: got %q", decoded.Path)
	}
	if decoded.Query["page"] != "1" {
		t.Errorf("Query mismatch: got %v", decoded.Query)
	}
	if decoded.MatchedPath != "/api/users" {
		t.Errorf("MatchedPath mismatch: got %q", decoded.MatchedPath)
	}
	if decoded.Outcome != OutcomeMatched {
		t.Errorf("Outcome mismatch: got %q", decoded.Outcome)
	}
	if decoded.ResponseStatus != 200 {
		t.Errorf("ResponseStatus mismatch: got %d", decoded.ResponseStatus)
	}
	if decoded.DurationMs != 5 {
		t.Errorf("DurationMs mismatch: got %d", decoded.DurationMs)
	}
	if len(decoded.Headers) != 1 || decoded.Headers["Accept"] != "application/json" {
		t.Errorf("Headers mismatch: got %v", decoded.Headers)
	}
}

func TestEntry_JSONOmitsEmptyFields(t *testing.T) {
	entry := &Entry{
		ID:      "e1",
		Method:  "POST",
		Path:    "/items",
		Outcome: OutcomeNoRoute,
	}

	data, err := json.Marshal(entry)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		t.Fatalf("unmarshal raw: %v", err)
	}

	for _, key := range []string{"connectionId", "query", "headers", "matchedPath", "responseBody", "error"} {
		if _, ok := raw[key]; ok {
			t.Errorf("field %q should be omitted when empty", key)
		}
	}
}

// ── MemoryStore tests ────────────────────────────────────────────────────────

func TestMemoryStore_LogAssignsIDAndTimestamp(t *testing.T) {
	store := NewMemoryStore(10)

	entry := &Entry{Method: "GET", Path: "/x", Outcome: OutcomeMatched}
	store.Log(entry)

	if entry.ID == "" {
		t.Fatal("expected an ID to be assigned")
	}
	if !id.IsValidULID(entry.ID) {
		t.Errorf("assigned ID is not a ULID: %q", entry.ID)
	}
	if entry.Timestamp.IsZero() {
		t.Error("expected a timestamp to be assigned")
	}
}

func TestMemoryStore_LogPreservesExistingID(t *testing.T) {
	store := NewMemoryStore(10)
	ts := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)

	entry := &Entry{ID: "fixed", Timestamp: ts, Method: "GET", Path: "/x"}
	store.Log(entry)

	if entry.ID != "fixed" {
		t.Errorf("ID overwritten: got %q", entry.ID)
	}
	if !entry.Timestamp.Equal(ts) {
		t.Errorf("timestamp overwritten: got %v", entry.Timestamp)
	}
}

func TestMemoryStore_LogNilIsNoop(t *testing.T) {
	store := NewMemoryStore(10)
	store.Log(nil)
	if store.Count() != 0 {
		t.Errorf("nil entry stored, count = %d", store.Count())
	}
}

func TestMemoryStore_FIFOEviction(t *testing.T) {
	store := NewMemoryStore(3)

	for i := 0; i < 5; i++ {
		store.Log(&Entry{ID: "e" + strconv.Itoa(i), Method: "GET", Path: "/p"})
	}

	if store.Count() != 3 {
		t.Fatalf("count = %d, want 3", store.Count())
	}
	if store.Get("e0") != nil || store.Get("e1") != nil {
		t.Error("oldest entries should have been evicted")
	}
	if store.Get("e4") == nil {
		t.Error("newest entry missing")
	}
}

func TestMemoryStore_DefaultCapacity(t *testing.T) {
	store := NewMemoryStore(0)
	if store.maxEntries != 1000 {
		t.Errorf("default capacity = %d, want 1000", store.maxEntries)
	}
	store = NewMemoryStore(-5)
	if store.maxEntries != 1000 {
		t.Errorf("negative capacity -> %d, want 1000", store.maxEntries)
	}
}

func TestMemoryStore_GetMissing(t *testing.T) {
	store := NewMemoryStore(10)
	if got := store.Get("nope"); got != nil {
		t.Errorf("Get on empty store = %v, want nil", got)
	}
}

func TestMemoryStore_ListNewestFirst(t *testing.T) {
	store := NewMemoryStore(10)
	store.Log(&Entry{ID: "a", Method: "GET", Path: "/1"})
	store.Log(&Entry{ID: "b", Method: "GET", Path: "/2"})
	store.Log(&Entry{ID: "c", Method: "GET", Path: "/3"})

	got := store.List(nil)
	if len(got) != 3 {
		t.Fatalf("len = %d, want 3", len(got))
	}
	if got[0].ID != "c" || got[1].ID != "b" || got[2].ID != "a" {
		t.Errorf("order = [%s %s %s], want [c b a]", got[0].ID, got[1].ID, got[2].ID)
	}
}

func TestMemoryStore_ListFilters(t *testing.T) {
	store := NewMemoryStore(20)
	store.Log(&Entry{ID: "1", Method: "GET", Path: "/api/users", MatchedPath: "/api/users", Outcome: OutcomeMatched, ResponseStatus: 200})
	store.Log(&Entry{ID: "2", Method: "POST", Path: "/api/users", Outcome: OutcomeMethodNotAllowed, ResponseStatus: 405})
	store.Log(&Entry{ID: "3", Method: "GET", Path: "/health", Outcome: OutcomeNoRoute, ResponseStatus: 404})
	store.Log(&Entry{ID: "4", Method: "GET", Path: "/api/items", Outcome: OutcomeBodySourceError, ResponseStatus: 500, Error: "open: no such file"})

	tests := []struct {
		name    string
		filter  *Filter
		wantIDs []string
	}{
		{"by method", &Filter{Method: "POST"}, []string{"2"}},
		{"by path prefix", &Filter{Path: "/api/"}, []string{"4", "2", "1"}},
		{"by matched path", &Filter{MatchedPath: "/api/users"}, []string{"1"}},
		{"by outcome", &Filter{Outcome: OutcomeNoRoute}, []string{"3"}},
		{"by status", &Filter{StatusCode: 405}, []string{"2"}},
		{"has error true", &Filter{HasError: boolPtr(true)}, []string{"4"}},
		{"has error false", &Filter{HasError: boolPtr(false)}, []string{"3", "2", "1"}},
		{"combined", &Filter{Method: "GET", Path: "/api/"}, []string{"4", "1"}},
		{"no match", &Filter{Method: "DELETE"}, []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := store.List(tt.filter)
			if len(got) != len(tt.wantIDs) {
				t.Fatalf("len = %d, want %d", len(got), len(tt.wantIDs))
			}
			for i, want := range tt.wantIDs {
				if got[i].ID != want {
					t.Errorf("entry[%d].ID = %q, want %q", i, got[i].ID, want)
				}
			}
		})
	}
}

func TestMemoryStore_ListOffsetAndLimit(t *testing.T) {
	store := NewMemoryStore(20)
	for i := 0; i < 10; i++ {
		store.Log(&Entry{ID: "e" + strconv.Itoa(i), Method: "GET", Path: "/p"})
	}

	// Newest first: e9 e8 ... e0
	got := store.List(&Filter{Limit: 3})
	if len(got) != 3 || got[0].ID != "e9" || got[2].ID != "e7" {
		t.Errorf("limit 3 = %v", ids(got))
	}

	got = store.List(&Filter{Offset: 2, Limit: 2})
	if len(got) != 2 || got[0].ID != "e7" || got[1].ID != "e6" {
		t.Errorf("offset 2 limit 2 = %v", ids(got))
	}

	got = store.List(&Filter{Offset: 100})
	if len(got) != 0 {
		t.Errorf("offset beyond end = %v", ids(got))
	}
}

func TestMemoryStore_ClearAndCount(t *testing.T) {
	store := NewMemoryStore(10)
	store.Log(&Entry{Method: "GET", Path: "/a"})
	store.Log(&Entry{Method: "GET", Path: "/b"})

	if store.Count() != 2 {
		t.Fatalf("count = %d, want 2", store.Count())
	}

	store.Clear()
	if store.Count() != 0 {
		t.Errorf("count after clear = %d, want 0", store.Count())
	}
	if len(store.List(nil)) != 0 {
		t.Error("list after clear should be empty")
	}
}

func TestMemoryStore_Subscribe(t *testing.T) {
	store := NewMemoryStore(10)

	ch, unsubscribe := store.Subscribe()
	defer unsubscribe()

	store.Log(&Entry{ID: "live", Method: "GET", Path: "/p"})

	select {
	case got := <-ch:
		if got.ID != "live" {
			t.Errorf("received entry %q, want live", got.ID)
		}
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for subscribed entry")
	}
}

func TestMemoryStore_UnsubscribeStopsDelivery(t *testing.T) {
	store := NewMemoryStore(10)

	ch, unsubscribe := store.Subscribe()
	unsubscribe()

	// Must not panic on a closed channel.
	store.Log(&Entry{ID: "after", Method: "GET", Path: "/p"})

	if _, open := <-ch; open {
		t.Error("channel should be closed after unsubscribe")
	}
}

func TestMemoryStore_SlowSubscriberDoesNotBlock(t *testing.T) {
	store := NewMemoryStore(500)

	// Never read from the channel; its buffer fills and further
	// deliveries are dropped rather than blocking Log.
	_, unsubscribe := store.Subscribe()
	defer unsubscribe()

	done := make(chan struct{})
	go func() {
		for i := 0; i < 300; i++ {
			store.Log(&Entry{Method: "GET", Path: "/p"})
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("Log blocked on a slow subscriber")
	}
	if store.Count() != 300 {
		t.Errorf("count = %d, want 300", store.Count())
	}
}

func TestMemoryStore_ConcurrentAccess(t *testing.T) {
	store := NewMemoryStore(100)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				store.Log(&Entry{Method: "GET", Path: "/p"})
				store.List(&Filter{Limit: 5})
				store.Count()
			}
		}()
	}
	wg.Wait()

	if store.Count() != 100 {
		t.Errorf("count = %d, want capacity 100", store.Count())
	}
}

func boolPtr(b bool) *bool { return &b }

func ids(entries []*Entry) []string {
	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = e.ID
	}
	return out
}
