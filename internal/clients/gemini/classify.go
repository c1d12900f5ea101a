package gemini

import (
	"context"
	"errors"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"

	"github.com/googleapis/gax-go/v2/apierror"
	"google.golang.org/api/googleapi"
	"google.golang.org/grpc/codes"
)

// transportMarkers 沒有結構化訊號時才使用的字串判斷
var transportMarkers = []string{
	"xhr error",
	"rpc failed",
	"request entity too large",
	"payload too large",
	"payload size exceeds",
	"connection reset",
	"connection refused",
	"broken pipe",
	"no such host",
	"i/o timeout",
	"tls handshake timeout",
	"larger than max",
}

// classifyFailure 將傳輸層錯誤歸類為 PayloadOrNetwork 或 Backend
func classifyFailure(err error) *Error {
	if isPayloadOrNetwork(err) {
		return &Error{Kind: ErrPayloadOrNetwork, Suggestion: payloadOrNetworkSuggestion, Err: err}
	}
	return &Error{Kind: ErrBackend, Err: err}
}

func isPayloadOrNetwork(err error) bool {
	if err == nil {
		return false
	}

	var apiErr *apierror.APIError
	if errors.As(err, &apiErr) {
		if apiErr.HTTPCode() == http.StatusRequestEntityTooLarge {
			return true
		}
		if apiErr.HTTPCode() > 0 {
			return false
		}
		if st := apiErr.GRPCStatus(); st != nil {
			switch st.Code() {
			case codes.Unavailable, codes.DeadlineExceeded:
				return true
			}
		}
	}
	var gErr *googleapi.Error
	if errors.As(err, &gErr) {
		return gErr.Code == http.StatusRequestEntityTooLarge
	}

	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, io.ErrUnexpectedEOF) {
		return true
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		return true
	}

	msg := strings.ToLower(err.Error())
	for _, marker := range transportMarkers {
		if strings.Contains(msg, marker) {
			return true
		}
	}
	return false
}
