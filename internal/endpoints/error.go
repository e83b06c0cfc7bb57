package endpoints

import (
	"errors"
)

const (
	API_SUCCESS      = iota + 303000 // 303000
	API_FAILURE                      // 303001 - Generic API failure
	API_UNAUTHORIZED                 // 303002 - Authentication/Authorization failure
)

const (
	UNKNOWN_PROJECT        = iota + 101 // 101 - Project id not in the configured list
	UPSTREAM_UNAVAILABLE                // 102 - Monitoring or inventory query failed
	HISTORY_NOT_AVAILABLE               // 103 - No stored snapshots for the criteria
	HISTORY_NOT_CONFIGURED              // 104 - No history database configured
	INVALID_PARAMETERS                  // 105 - Invalid URL or query parameters
	REQUEST_CANCELLED                   // 106 - Request cancelled by client or server timeout
)

var (
	ErrUnknownProject       = errors.New("project id is not in the configured project list")
	ErrUpstreamUnavailable  = errors.New("monitoring or inventory query failed")
	ErrNoHistoryAvailable   = errors.New("no stored snapshots for the specified criteria")
	ErrHistoryNotConfigured = errors.New("report history store is not configured")
	ErrInvalidParameters    = errors.New("invalid limit, offset, start or end parameter; must be integers")
	ErrRequestCancelled     = errors.New("request cancelled by client or server timeout")
)

func GetErrorCode(err error) int {
	if err == nil {
		return API_SUCCESS
	}

	switch {
	case errors.Is(err, ErrUnknownProject):
		return UNKNOWN_PROJECT
	case errors.Is(err, ErrUpstreamUnavailable):
		return UPSTREAM_UNAVAILABLE
	case errors.Is(err, ErrNoHistoryAvailable):
		return HISTORY_NOT_AVAILABLE
	case errors.Is(err, ErrHistoryNotConfigured):
		return HISTORY_NOT_CONFIGURED
	case errors.Is(err, ErrInvalidParameters):
		return INVALID_PARAMETERS
	case errors.Is(err, ErrRequestCancelled):
		return REQUEST_CANCELLED
	default:
		return API_FAILURE
	}
}
