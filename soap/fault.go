package soap

import (
	"errors"
	"fmt"
	"strings"
)

// ApiError is one entry of the fault detail the service attaches to a
// rejected request.
type ApiError struct {
	FieldPath   string `xml:"fieldPath" json:"fieldPath,omitempty"`
	Trigger     string `xml:"trigger" json:"trigger,omitempty"`
	ErrorString string `xml:"errorString" json:"errorString"`
}

// Fault is a SOAP fault returned by the service. It is returned unchanged
// to callers; nothing in this module retries on it.
type Fault struct {
	Code    string     `xml:"faultcode"`
	Message string     `xml:"faultstring"`
	Errors  []ApiError `xml:"detail>ApiExceptionFault>errors"`
}

func (f *Fault) Error() string {
	if len(f.Errors) == 0 {
		return fmt.Sprintf("soap: %s: %s", f.Code, f.Message)
	}
	reasons := make([]string, 0, len(f.Errors))
	for _, e := range f.Errors {
		if e.Trigger != "" {
			reasons = append(reasons, fmt.Sprintf("%s @ %s; trigger:'%s'", e.ErrorString, e.FieldPath, e.Trigger))
			continue
		}
		reasons = append(reasons, fmt.Sprintf("%s @ %s", e.ErrorString, e.FieldPath))
	}
	return fmt.Sprintf("soap: %s: %s", f.Code, strings.Join(reasons, ", "))
}

// HasError reports whether the fault carries an ApiError with the given
// error string, e.g. "AuthenticationError.NETWORK_NOT_FOUND".
func (f *Fault) HasError(errorString string) bool {
	for _, e := range f.Errors {
		if e.ErrorString == errorString {
			return true
		}
	}
	return false
}

// AsFault unwraps err into a *Fault.
func AsFault(err error) (*Fault, bool) {
	var f *Fault
	if errors.As(err, &f) {
		return f, true
	}
	return nil, false
}

// HTTPError is returned when the endpoint answers with a non-2xx status and
// no SOAP fault in the body.
type HTTPError struct {
	StatusCode int
	Body       string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("soap: unexpected HTTP status %d: %s", e.StatusCode, e.Body)
}
