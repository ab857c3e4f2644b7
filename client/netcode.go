package client

import (
	"context"
	"errors"
	"net"
	"syscall"

	"github.com/adamwoolhether/normhttp/client/throttle"
)

// Network error codes reported in NetworkError.Code and Result.Code.
const (
	CodeNotFound        = "ENOTFOUND"
	CodeDNSTimeout      = "EAI_AGAIN"
	CodeNetUnreachable  = "ENETUNREACH"
	CodeHostUnreachable = "EHOSTUNREACH"
	CodeConnRefused     = "ECONNREFUSED"
	CodeConnReset       = "ECONNRESET"
	CodeConnAborted     = "ECONNABORTED"
	CodeCanceled        = "ERR_CANCELED"
	CodeBadResponse     = "ERR_BAD_RESPONSE"
	CodeNetwork         = "ERR_NETWORK"
)

// NetworkCode maps an error returned while sending a request to one of
// the Code constants. Errors it doesn't recognize map to [CodeNetwork].
func NetworkCode(err error) string {
	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		if dnsErr.IsTimeout && !dnsErr.IsNotFound {
			return CodeDNSTimeout
		}
		return CodeNotFound
	}

	switch {
	case errors.Is(err, syscall.ENETUNREACH):
		return CodeNetUnreachable
	case errors.Is(err, syscall.EHOSTUNREACH):
		return CodeHostUnreachable
	case errors.Is(err, syscall.ECONNREFUSED):
		return CodeConnRefused
	case errors.Is(err, syscall.ECONNRESET):
		return CodeConnReset
	case errors.Is(err, context.Canceled):
		return CodeCanceled
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, throttle.ErrWaitingFailed):
		return CodeConnAborted
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return CodeConnAborted
	}

	return CodeNetwork
}
