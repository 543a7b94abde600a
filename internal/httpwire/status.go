package httpwire

import "strconv"

// Status pairs a numeric HTTP status code with its canonical reason phrase.
type Status struct {
	Code    int
	Message string
}

// String returns the status-line form, e.g. "404 Not Found".
func (s Status) String() string {
	return strconv.Itoa(s.Code) + " " + s.Message
}

// statusText is the closed registry of codes fakerest knows how to speak.
var statusText = map[int]string{
	200: "OK",
	201: "Created",
	400: "Bad Request",
	401: "Unauthorized",
	402: "Payment Required",
	403: "Forbidden",
	404: "Not Found",
	405: "Method Not Allowed",
	406: "Not Acceptable",
	422: "Unprocessable Entity",
	500: "Internal Server Error",
}

// StatusFromCode resolves code against the registry. Codes outside the
// registry deliberately fall back to 200/"OK" rather than erroring; route
// configs are free to name any code, and unknown ones degrade to success.
func StatusFromCode(code int) Status {
	if msg, ok := statusText[code]; ok {
		return Status{Code: code, Message: msg}
	}
	return Status{Code: 200, Message: "OK"}
}

// KnownCode reports whether code is in the registry. Config validation uses
// this to warn about codes that will degrade to 200.
func KnownCode(code int) bool {
	_, ok := statusText[code]
	return ok
}
