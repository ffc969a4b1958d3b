package metrics

// StatusTransportFailure is the Outcome status recorded when no HTTP response
// was received (connection refused, DNS failure, reset, timeout).
const StatusTransportFailure = 0

// NotReported is the ServerTime sentinel used when the response carried no
// usable server timing header.
const NotReported int64 = -1

// Outcome is the result record of one completed or failed request attempt.
type Outcome struct {
	Status        int    `json:"status"`
	RequestID     int64  `json:"request_id"`
	ResponseCount int64  `json:"response_count"`
	ClientTime    int64  `json:"client_time"`
	ServerTime    int64  `json:"server_time"`
	Error         string `json:"error,omitempty"`
	ErrorKind     string `json:"error_kind,omitempty"`
}

// Failed reports whether the attempt ended without an HTTP response.
func (o Outcome) Failed() bool {
	return o.Status == StatusTransportFailure
}

// HasServerTime reports whether the server supplied a compute time.
func (o Outcome) HasServerTime() bool {
	return o.ServerTime != NotReported
}
