package responseformat

import (
	"encoding/json"
	"net/http"

	"github.com/vmihailenco/msgpack/v5"
)

// Formatter handles encoding and writing responses in JSON or MessagePack format
type Formatter struct{}

// NewFormatter creates a new response formatter
func NewFormatter() *Formatter {
	return &Formatter{}
}

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Error  string `json:"error"`
	Status int    `json:"status"`
}

// WantsMsgPack reports whether the request asked for MessagePack with format=msgpack.
func WantsMsgPack(req *http.Request) bool {
	return req.URL.Query().Get("format") == "msgpack"
}

// WriteResponse writes data with status 200 in the format the request asked for.
// JSON is the default format. MessagePack is used when format=msgpack is specified
func (f *Formatter) WriteResponse(w http.ResponseWriter, req *http.Request, data any, headers map[string]string) error {
	return f.WriteStatus(w, req, http.StatusOK, data, headers)
}

// WriteStatus is WriteResponse with an explicit status code.
func (f *Formatter) WriteStatus(w http.ResponseWriter, req *http.Request, status int, data any, headers map[string]string) error {
	// Set any provided headers first
	for k, v := range headers {
		w.Header().Set(k, v)
	}

	// Always set CORS header
	w.Header().Set("Access-Control-Allow-Origin", "*")

	if WantsMsgPack(req) {
		return f.writeMsgPack(w, status, data)
	}
	return f.writeJSON(w, status, data)
}

// WriteError writes an ErrorResponse in the requested format.
func (f *Formatter) WriteError(w http.ResponseWriter, req *http.Request, status int, msg string) error {
	return f.WriteStatus(w, req, status, ErrorResponse{Error: msg, Status: status}, nil)
}

func (f *Formatter) writeJSON(w http.ResponseWriter, status int, data any) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	return json.NewEncoder(w).Encode(data)
}

func (f *Formatter) writeMsgPack(w http.ResponseWriter, status int, data any) error {
	w.Header().Set("Content-Type", "application/x-msgpack")
	w.WriteHeader(status)
	encoder := msgpack.NewEncoder(w)
	encoder.SetCustomStructTag("json") // Use json tags for MessagePack
	return encoder.Encode(data)
}
