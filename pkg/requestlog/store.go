package requestlog

// Logger is the minimal interface for logging request entries.
// The connection handler accepts this interface so it can work with any
// implementation that records entries, whether an in-memory store, a
// persistent database, or a forwarding sink.
type Logger interface {
	Log(entry *Entry)
}

// Store defines the interface for request history storage.
// Store embeds Logger, so any Store implementation can be used where
// Logger is expected.
type Store interface {
	Logger

	// Get retrieves a log entry by ID.
	Get(id string) *Entry

	// List returns all log entries, optionally filtered.
	List(filter *Filter) []*Entry

	// Clear removes all log entries.
	Clear()

	// Count returns the number of log entries.
	Count() int
}

// Filter defines criteria for filtering request logs.
type Filter struct {
	// Method filters by the HTTP method token.
	Method string

	// Path filters by path prefix.
	Path string

	// MatchedPath filters by the exact route path that was selected.
	MatchedPath string

	// Outcome filters by resolution outcome (matched, no_route, ...).
	Outcome string

	// StatusCode filters by response status code.
	StatusCode int

	// HasError filters by error presence.
	HasError *bool

	// Limit is the maximum number of entries to return.
	Limit int

	// Offset is the number of entries to skip.
	Offset int
}

// Subscriber is a channel that receives new log entries.
// Used for real-time updates.
type Subscriber chan *Entry

// SubscribableStore extends Store with subscription support for real-time updates.
type SubscribableStore interface {
	Store

	// Subscribe registers a subscriber to receive new log entries.
	// Returns a channel that will receive entries and an unsubscribe function.
	Subscribe() (Subscriber, func())
}
