package testing

import (
	"encoding/json"
	"reflect"
	"testing"

	"github.com/getfakerest/fakerest/pkg/requestlog"
)

// AssertRequestHeader asserts that a logged request carried a header with an
// exact value. Header keys are case-sensitive, as on the wire.
func AssertRequestHeader(t testing.TB, e *requestlog.Entry, name, want string) {
	t.Helper()

	got, ok := e.Headers[name]
	if !ok {
		t.Errorf("request %s %s has no %q header", e.Method, e.Path, name)
		return
	}
	if got != want {
		t.Errorf("request %s %s header %q = %q, want %q", e.Method, e.Path, name, got, want)
	}
}

// AssertOutcome asserts how the server resolved a logged request. Outcomes
// are the requestlog constants (OutcomeMatched, OutcomeNoRoute, ...).
func AssertOutcome(t testing.TB, e *requestlog.Entry, want string) {
	t.Helper()

	if e.Outcome != want {
		t.Errorf("request %s %s outcome = %q, want %q", e.Method, e.Path, e.Outcome, want)
	}
}

// AssertResponseJSON asserts that the recorded response body is JSON-equal
// to expected. Expected may be a JSON string, []byte, or any value that
// marshals to the same structure; key order and whitespace do not matter.
func AssertResponseJSON(t testing.TB, e *requestlog.Entry, expected any) {
	t.Helper()

	var want any
	switch v := expected.(type) {
	case string:
		if err := json.Unmarshal([]byte(v), &want); err != nil {
			t.Errorf("failed to parse expected JSON: %v", err)
			return
		}
	case []byte:
		if err := json.Unmarshal(v, &want); err != nil {
			t.Errorf("failed to parse expected JSON: %v", err)
			return
		}
	default:
		// Round-trip to normalize numbers and field names.
		data, err := json.Marshal(v)
		if err != nil {
			t.Errorf("failed to marshal expected value: %v", err)
			return
		}
		if err := json.Unmarshal(data, &want); err != nil {
			t.Errorf("failed to parse expected JSON: %v", err)
			return
		}
	}

	var got any
	if err := json.Unmarshal([]byte(e.ResponseBody), &got); err != nil {
		t.Errorf("response body is not valid JSON: %v\nbody: %s", err, e.ResponseBody)
		return
	}

	if !reflect.DeepEqual(got, want) {
		t.Errorf("response JSON mismatch for %s %s\ngot:  %s\nwant: %v",
			e.Method, e.Path, e.ResponseBody, expected)
	}
}
