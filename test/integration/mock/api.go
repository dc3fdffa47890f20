package mock

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
)

// ApiMock is a recording HTTP server. Unconfigured routes answer 200 with an empty object.
type ApiMock struct {
	mu        sync.Mutex
	server    *httptest.Server
	requests  map[string][]map[string]any
	headers   map[string][]http.Header
	responses map[string]mockResponse
	served    int
}

type mockResponse struct {
	status int
	body   any
}

func NewApiServer() *ApiMock {
	return &ApiMock{
		requests:  map[string][]map[string]any{},
		headers:   map[string][]http.Header{},
		responses: map[string]mockResponse{},
	}
}

func (a *ApiMock) Start() {
	a.server = httptest.NewServer(http.HandlerFunc(a.handle))
}

func (a *ApiMock) Close() {
	if a.server != nil {
		a.server.Close()
	}
}

func (a *ApiMock) GetUrl() string {
	return a.server.URL
}

func (a *ApiMock) handle(w http.ResponseWriter, r *http.Request) {
	key := r.Method + r.URL.Path

	body, _ := io.ReadAll(r.Body)
	var request map[string]any
	_ = json.Unmarshal(body, &request)
	if request == nil {
		request = map[string]any{}
	}

	a.mu.Lock()
	a.requests[key] = append(a.requests[key], request)
	a.headers[key] = append(a.headers[key], r.Header.Clone())
	a.served++
	response, ok := a.responses[key]
	served := a.served
	a.mu.Unlock()

	if !ok {
		response = mockResponse{status: http.StatusOK, body: map[string]any{}}
	}
	if fn, isFunc := response.body.(func(int) any); isFunc {
		response.body = fn(served)
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(response.status)
	_ = json.NewEncoder(w).Encode(response.body)
}

// SetResponse fixes the reply of method+path. body may be a func(n int) any that
// receives the running count of served requests.
func (a *ApiMock) SetResponse(method, path string, status int, body any) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.responses[method+path] = mockResponse{status: status, body: body}
}

// Requests returns the decoded JSON bodies received on method+path.
func (a *ApiMock) Requests(method, path string) []map[string]any {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]map[string]any(nil), a.requests[method+path]...)
}

// GetRequestHeaders returns the headers of the index-th request on method+path.
func (a *ApiMock) GetRequestHeaders(method, path string, index int) (http.Header, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	received := a.headers[method+path]
	if index < 0 || index >= len(received) {
		return nil, fmt.Errorf("no request %d on %s %s", index, method, path)
	}
	return received[index], nil
}

// Reset forgets received requests and configured responses.
func (a *ApiMock) Reset() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.requests = map[string][]map[string]any{}
	a.headers = map[string][]http.Header{}
	a.responses = map[string]mockResponse{}
	a.served = 0
}
