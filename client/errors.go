package client

import (
	"encoding/json"
	"fmt"
	"strings"
)

// ErrorKind classifies why a request failed.
type ErrorKind int

const (
	// KindNetwork: the request never produced an HTTP response.
	KindNetwork ErrorKind = iota
	// KindStatus: the server answered with a non-2xx status.
	KindStatus
	// KindResponse: a 2xx answer whose body was not the expected JSON.
	KindResponse
)

func (k ErrorKind) String() string {
	switch k {
	case KindNetwork:
		return "network"
	case KindStatus:
		return "status"
	case KindResponse:
		return "response"
	default:
		return "unknown"
	}
}

// RequestError is returned for every failed request.
// Error() yields the server's detail when one was sent.
type RequestError struct {
	Kind   ErrorKind
	Method string
	Path   string
	Status int
	Detail string
	Err    error
}

func (e *RequestError) Error() string {
	switch {
	case e.Detail != "":
		return e.Detail
	case e.Kind == KindStatus:
		return fmt.Sprintf("HTTP error! status: %d", e.Status)
	case e.Err != nil:
		return e.Err.Error()
	default:
		return "request failed"
	}
}

func (e *RequestError) Unwrap() error {
	return e.Err
}

// errorBody is the failure envelope. detail is either a string or, for
// request validation failures, a list of {loc, msg, type} entries.
type errorBody struct {
	Detail json.RawMessage `json:"detail"`
}

// parseDetail extracts a human readable message from an error body.
func parseDetail(body []byte) string {
	var eb errorBody
	if err := json.Unmarshal(body, &eb); err != nil || len(eb.Detail) == 0 {
		return ""
	}

	var s string
	if err := json.Unmarshal(eb.Detail, &s); err == nil {
		return s
	}

	var items []struct {
		Msg string `json:"msg"`
	}
	if err := json.Unmarshal(eb.Detail, &items); err == nil {
		msgs := make([]string, 0, len(items))
		for _, it := range items {
			if it.Msg != "" {
				msgs = append(msgs, it.Msg)
			}
		}
		return strings.Join(msgs, "; ")
	}

	return ""
}
