package client

import (
	"errors"
	"fmt"
	"net/http"
)

// Status texts used when nothing better is known.
const (
	msgUnreachable   = "The server could not be reached or the URL was invalid."
	msgNetworkError  = "A network error occurred."
	msgRequestBuild  = "The request could not be built."
	msgUnknownError  = "An unknown error occurred."
	msgAbortedFormat = "Connection was aborted: %s"
)

// codePhrases covers statuses whose text is filled in when neither the
// body nor the transport supplied one.
var codePhrases = map[int]string{
	http.StatusBadRequest:          "Bad Request",
	http.StatusInternalServerError: "Internal Server Error",
}

// Classify converts a failed exchange into a Result with OK unset.
// Every branch sets an all-null Links.
func Classify(err error) *Result {
	var (
		serverErr  *ServerError
		networkErr *NetworkError
		buildErr   *RequestBuildError
	)

	switch {
	case errors.As(err, &serverErr) && serverErr.Response != nil:
		return classifyServer(serverErr, err)

	case errors.As(err, &networkErr):
		return &Result{
			StatusText: networkText(networkErr),
			Links:      &LinkSet{},
			Code:       networkErr.Code,
			Request:    networkErr.Request,
			URL:        requestURL(networkErr.Request),
			Method:     requestMethod(networkErr.Request),
			Err:        err,
		}

	case errors.As(err, &buildErr):
		text := msgRequestBuild
		if buildErr.Err != nil && buildErr.Err.Error() != "" {
			text = buildErr.Err.Error()
		}

		return &Result{
			StatusText: text,
			Links:      &LinkSet{},
			Err:        err,
		}

	default:
		return &Result{
			StatusText: msgUnknownError,
			Links:      &LinkSet{},
			Err:        err,
		}
	}
}

func classifyServer(serverErr *ServerError, err error) *Result {
	resp := serverErr.Response
	data := decodeData(resp.Body, false)

	return &Result{
		Status:     resp.Status,
		StatusText: serverText(serverErr.Message, data, resp),
		Data:       data,
		Links:      &LinkSet{},
		Header:     resp.Header,
		Body:       resp.Body,
		Method:     resp.Method,
		URL:        resp.URL,
		Request:    resp.Request,
		Err:        err,
	}
}

// serverText picks the first non-empty of: the response-level message,
// data.message, data.error.message, the transport status text, a phrase
// for the status code.
func serverText(message string, data any, resp *Response) string {
	if message != "" {
		return message
	}

	if doc, ok := data.(map[string]any); ok {
		if msg, ok := doc["message"].(string); ok && msg != "" {
			return msg
		}

		if inner, ok := doc["error"].(map[string]any); ok {
			if msg, ok := inner["message"].(string); ok && msg != "" {
				return msg
			}
		}
	}

	if resp.StatusText != "" {
		return resp.StatusText
	}

	return codePhrases[resp.Status]
}

func networkText(e *NetworkError) string {
	switch e.Code {
	case CodeNetUnreachable, CodeNotFound:
		return msgUnreachable
	case CodeConnAborted:
		return fmt.Sprintf(msgAbortedFormat, errMessage(e.Err))
	}

	if msg := errMessage(e.Err); msg != "" {
		return msg
	}

	return msgNetworkError
}

func errMessage(err error) string {
	if err == nil {
		return ""
	}

	return err.Error()
}

func requestURL(r *http.Request) string {
	if r == nil || r.URL == nil {
		return ""
	}

	return r.URL.String()
}

func requestMethod(r *http.Request) string {
	if r == nil {
		return ""
	}

	return r.Method
}
