package metrics

import (
	"context"
	"errors"
	"net"
	"os"
	"strings"
	"syscall"
)

// Transport failure kinds recorded in Outcome.ErrorKind and Stats.Errors.
const (
	ErrorKindTimeout           = "timeout"
	ErrorKindConnectionRefused = "connection_refused"
	ErrorKindConnectionReset   = "connection_reset"
	ErrorKindDNS               = "dns_error"
	ErrorKindCanceled          = "canceled"
	ErrorKindBodyRead          = "body_read_error"
	ErrorKindOther             = "network_error_other"
)

var friendlyKinds = map[string]string{
	ErrorKindTimeout:           "Timeout",
	ErrorKindConnectionRefused: "Connection refused",
	ErrorKindConnectionReset:   "Connection reset",
	ErrorKindDNS:               "DNS lookup failed",
	ErrorKindCanceled:          "Canceled",
	ErrorKindBodyRead:          "Body read failed",
	ErrorKindOther:             "Other network error",
}

// ClassifyError maps a transport error onto one of the ErrorKind constants.
func ClassifyError(err error) string {
	if err == nil {
		return ""
	}

	if errors.Is(err, context.Canceled) {
		return ErrorKindCanceled
	}
	if errors.Is(err, context.DeadlineExceeded) || os.IsTimeout(err) {
		return ErrorKindTimeout
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return ErrorKindTimeout
	}

	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return ErrorKindDNS
	}
	if errors.Is(err, syscall.ECONNREFUSED) {
		return ErrorKindConnectionRefused
	}
	if errors.Is(err, syscall.ECONNRESET) {
		return ErrorKindConnectionReset
	}

	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "timeout"):
		return ErrorKindTimeout
	case strings.Contains(msg, "connection refused"):
		return ErrorKindConnectionRefused
	case strings.Contains(msg, "connection reset"):
		return ErrorKindConnectionReset
	case strings.Contains(msg, "no such host"):
		return ErrorKindDNS
	}
	return ErrorKindOther
}

// FriendlyErrorKind returns a human-readable label for an ErrorKind.
func FriendlyErrorKind(kind string) string {
	cleaned := strings.TrimSpace(kind)
	if cleaned == "" {
		return "Unknown error"
	}
	if label, ok := friendlyKinds[cleaned]; ok {
		return label
	}
	label := strings.ReplaceAll(cleaned, "_", " ")
	return strings.ToUpper(label[:1]) + label[1:]
}
