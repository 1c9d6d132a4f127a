package core

import "errors"

// NetworkError categorizes a failed call to a remote endpoint.
type NetworkError int

const (
	NetworkUnknown NetworkError = iota
	NetworkRequestTimeout
	NetworkTooManyRequests
	NetworkNoInternet
	NetworkServerError
	NetworkSerialization
)

func (e NetworkError) Error() string {
	switch e {
	case NetworkRequestTimeout:
		return "request timeout"
	case NetworkTooManyRequests:
		return "too many requests"
	case NetworkNoInternet:
		return "no internet connection"
	case NetworkServerError:
		return "server error"
	case NetworkSerialization:
		return "serialization error"
	default:
		return "unknown network error"
	}
}

// PersistenceError categorizes a failed read or write on a Store.
type PersistenceError int

const (
	PersistenceUnknown PersistenceError = iota
	PersistenceIO
	PersistenceSerialization
)

func (e PersistenceError) Error() string {
	switch e {
	case PersistenceIO:
		return "io error"
	case PersistenceSerialization:
		return "serialization error"
	default:
		return "unknown persistence error"
	}
}

// NetworkErrorOf returns the NetworkError kind wrapped by err.
// Errors that carry no kind are reported as NetworkUnknown.
func NetworkErrorOf(err error) NetworkError {
	var kind NetworkError
	if errors.As(err, &kind) {
		return kind
	}
	return NetworkUnknown
}

// PersistenceErrorOf returns the PersistenceError kind wrapped by err.
// Errors that carry no kind are reported as PersistenceUnknown.
func PersistenceErrorOf(err error) PersistenceError {
	var kind PersistenceError
	if errors.As(err, &kind) {
		return kind
	}
	return PersistenceUnknown
}
