package xmlrpc

import (
	"bytes"
	"net/http"
	"time"

	"github.com/pkg/errors"
)

// DefaultClient is used by Call.
var DefaultClient = &http.Client{Timeout: 10 * time.Second}

// Fault is an XML-RPC fault response.
type Fault struct {
	Code    int32
	Message string
}

func (f *Fault) Error() string {
	return "xmlrpc fault " + itoa(f.Code) + ": " + f.Message
}

// Call invokes method on the XML-RPC server at url.
func Call(url string, method string, args ...interface{}) (interface{}, error) {
	var buffer bytes.Buffer
	if err := emitRequest(&buffer, method, args...); err != nil {
		return nil, errors.Wrapf(err, "building %s request", method)
	}
	r, err := DefaultClient.Post(url, "text/xml", &buffer)
	if err != nil {
		return nil, errors.Wrapf(err, "sending %s request", method)
	}
	defer r.Body.Close()
	if r.StatusCode != http.StatusOK {
		return nil, errors.Errorf("%s: HTTP status %s", method, r.Status)
	}

	ok, result, err := parseResponse(r.Body)
	if err != nil {
		return nil, errors.Wrapf(err, "parsing %s response", method)
	}
	if ok {
		return result, nil
	}
	m, isMap := result.(map[string]interface{})
	if !isMap {
		return nil, errors.New("malformed fault response")
	}
	code, _ := m["faultCode"].(int32)
	message, _ := m["faultString"].(string)
	return nil, &Fault{Code: code, Message: message}
}
