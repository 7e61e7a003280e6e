package xmlrpc

import (
	"bytes"
	"fmt"
	"net/http"
	"reflect"
	"strconv"
	"sync"
)

// Method is a Go func taking the decoded XML-RPC arguments and returning
// (result, error).
type Method interface{}

// Handler serves XML-RPC requests by dispatching to registered methods.
type Handler struct {
	mapping map[string]Method
	wait    sync.WaitGroup
}

func NewHandler(mapping map[string]Method) *Handler {
	return &Handler{mapping: mapping}
}

// WaitForShutdown blocks until in-flight requests have been answered.
func (h *Handler) WaitForShutdown() {
	h.wait.Wait()
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	h.wait.Add(1)
	defer h.wait.Done()

	var buffer bytes.Buffer
	name, args, err := parseRequest(req.Body)
	if err != nil {
		writeFault(w, &buffer, "Invalid request.")
		return
	}
	method, ok := h.mapping[name]
	if !ok {
		writeFault(w, &buffer, fmt.Sprintf("No method named '%v'.", name))
		return
	}

	fun := reflect.ValueOf(method)
	funType := fun.Type()
	if funType.NumIn() != len(args) || funType.NumOut() != 2 {
		writeFault(w, &buffer, fmt.Sprintf("Method '%v' called with %d arguments.", name, len(args)))
		return
	}
	in := make([]reflect.Value, len(args))
	for i, arg := range args {
		want := funType.In(i)
		if arg == nil {
			in[i] = reflect.Zero(want)
			continue
		}
		v := reflect.ValueOf(arg)
		if !v.Type().AssignableTo(want) {
			writeFault(w, &buffer, fmt.Sprintf("Method '%v' argument %d has type %v.", name, i, v.Type()))
			return
		}
		in[i] = v
	}

	out := fun.Call(in)
	if errValue := out[1]; !errValue.IsNil() {
		writeFault(w, &buffer, fmt.Sprintf("Method '%v' call failed: %v", name, errValue.Interface()))
		return
	}
	if err := emitResponse(&buffer, out[0].Interface()); err != nil {
		buffer.Reset()
		writeFault(w, &buffer, fmt.Sprintf("Method '%v' returned an invalid result type.", name))
		return
	}
	w.Header().Set("Content-Type", "text/xml")
	w.Header().Set("Content-Length", strconv.Itoa(buffer.Len()))
	buffer.WriteTo(w)
}

func writeFault(w http.ResponseWriter, buffer *bytes.Buffer, message string) {
	emitFault(buffer, 1, message)
	w.Header().Set("Content-Type", "text/xml")
	w.Header().Set("Content-Length", strconv.Itoa(buffer.Len()))
	buffer.WriteTo(w)
}

func itoa(i int32) string {
	return strconv.FormatInt(int64(i), 10)
}
