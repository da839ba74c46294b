package inttest

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/dhis2-sre/eventos/internal/handler"
	"github.com/dhis2-sre/eventos/internal/server"
	"github.com/dhis2-sre/eventos/internal/util"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

// SetupHTTPServer creates an HTTP server using Gin. An HTTP client is returned to interact with the
// created server. The client keeps cookies like a browser would but doesn't follow redirects so
// tests can assert on them.
func SetupHTTPServer(t *testing.T, f func(engine *gin.Engine)) *HTTPClient {
	t.Helper()

	err := handler.RegisterValidation()
	require.NoError(t, err, "failed to register validation")
	gin.SetMode(gin.TestMode)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	engine := server.GetEngine(logger, util.CookieSettings{SameSite: http.SameSiteLaxMode})
	f(engine)

	server := httptest.NewServer(engine.Handler())
	client := newClient(t)
	t.Cleanup(func() {
		client.CloseIdleConnections()
		server.Close()
	})

	return &HTTPClient{Client: client, ServerURL: server.URL}
}

func newClient(t *testing.T) *http.Client {
	jar, err := cookiejar.New(nil)
	require.NoError(t, err, "failed to create cookie jar")

	return &http.Client{
		Jar: jar,
		CheckRedirect: func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
}

// HTTPClient allows making requests in a way most of our handlers would expect them. It does so by
// wrapping an http.Client. Access the actual http.Client for specific use cases where our defaults don't
// work.
type HTTPClient struct {
	Client    *http.Client
	ServerURL string
}

// NewSession returns a client for the same server which doesn't share any cookies with hc.
func (hc *HTTPClient) NewSession(t *testing.T) *HTTPClient {
	t.Helper()
	return &HTTPClient{Client: newClient(t), ServerURL: hc.ServerURL}
}

// WithHeader adds a header with the given key and value to HTTP request headers.
func WithHeader(key string, value string) func(http.Header) {
	return func(header http.Header) {
		header.Add(key, value)
	}
}

// WithAcceptJSON asks for JSON instead of HTML.
func WithAcceptJSON() func(http.Header) {
	return WithHeader("Accept", "application/json")
}

// Get sends an HTTP GET request to given path. Optional headers are applied to the request. The
// response body is read in full and returned as is. Failure to read or close the HTTP response body
// and HTTP status other than 200 will fail the test associated with t.
func (hc *HTTPClient) Get(t *testing.T, path string, headers ...func(http.Header)) []byte {
	t.Helper()
	return hc.Do(t, http.MethodGet, path, nil, http.StatusOK, headers...)
}

// GetJSON sends an HTTP GET request to given path asking for JSON. The response body is
// unmarshaled into given responseBody. Failure to read or close the HTTP response body and HTTP
// status other than 200 will fail the test associated with t.
func (hc *HTTPClient) GetJSON(t *testing.T, path string, responseBody any, headers ...func(http.Header)) {
	t.Helper()

	body := hc.Get(t, path, append(headers, WithAcceptJSON())...)

	err := json.Unmarshal(body, &responseBody)
	errMsg := httpClientErrMessage(http.MethodGet, path)
	require.NoError(t, err, errMsg+": failed to unmarshal response body")
}

// Post sends an HTTP POST request to given path. The response body is read in full and returned as
// is. HTTP status other than 201 will fail the test associated with t.
func (hc *HTTPClient) Post(t *testing.T, path string, requestBody io.Reader, headers ...func(http.Header)) []byte {
	t.Helper()
	return hc.Do(t, http.MethodPost, path, requestBody, http.StatusCreated, headers...)
}

// PostJSON sends given JSON as an HTTP POST request to given path. The response body is
// unmarshaled into given responseBody. HTTP status other than 201 will fail the test associated
// with t.
func (hc *HTTPClient) PostJSON(t *testing.T, path string, requestBody io.Reader, responseBody any, headers ...func(http.Header)) {
	t.Helper()

	if requestBody != nil {
		headers = append(headers, WithHeader("Content-Type", "application/json"))
	}
	body := hc.Post(t, path, requestBody, append(headers, WithAcceptJSON())...)

	err := json.Unmarshal(body, &responseBody)
	errMsg := httpClientErrMessage(http.MethodPost, path)
	require.NoError(t, err, errMsg+": failed to unmarshal response body")
}

// Delete sends an HTTP DELETE request to given path. HTTP status other than 204 will fail the test
// associated with t.
func (hc *HTTPClient) Delete(t *testing.T, path string, headers ...func(http.Header)) []byte {
	t.Helper()
	return hc.Do(t, http.MethodDelete, path, nil, http.StatusNoContent, headers...)
}

// GetRedirect sends an HTTP GET request to given path and returns the location it redirects to.
// HTTP status other than 303 will fail the test associated with t.
func (hc *HTTPClient) GetRedirect(t *testing.T, path string, headers ...func(http.Header)) string {
	t.Helper()
	return hc.Redirect(t, http.MethodGet, path, nil, headers...)
}

// PostForm sends given form as an HTTP POST request to given path and returns the location it
// redirects to. HTTP status other than 303 will fail the test associated with t.
func (hc *HTTPClient) PostForm(t *testing.T, path string, form url.Values, headers ...func(http.Header)) string {
	t.Helper()
	headers = append(headers, WithHeader("Content-Type", "application/x-www-form-urlencoded"))
	return hc.Redirect(t, http.MethodPost, path, strings.NewReader(form.Encode()), headers...)
}

// PostFormStatus sends given form as an HTTP POST request to given path and returns the response
// body. HTTP status other than given expectedStatus will fail the test associated with t.
func (hc *HTTPClient) PostFormStatus(t *testing.T, path string, form url.Values, expectedStatus int, headers ...func(http.Header)) []byte {
	t.Helper()
	headers = append(headers, WithHeader("Content-Type", "application/x-www-form-urlencoded"))
	return hc.Do(t, http.MethodPost, path, strings.NewReader(form.Encode()), expectedStatus, headers...)
}

// Redirect sends an HTTP request of given method to given path and returns the location it
// redirects to. HTTP status other than 303 will fail the test associated with t.
func (hc *HTTPClient) Redirect(t *testing.T, method, path string, requestBody io.Reader, headers ...func(http.Header)) string {
	t.Helper()

	req := hc.newRequest(t, method, path, requestBody, headers...)
	res := hc.do(t, req)

	errMsg := httpClientErrMessage(method, path)
	defer func() {
		require.NoError(t, res.Body.Close(), errMsg+": failed to close HTTP response body")
	}()
	require.Equal(t, http.StatusSeeOther, res.StatusCode, errMsg+": HTTP status mismatch")
	return res.Header.Get("Location")
}

// Do sends an HTTP request of given method to given path. Optional headers are applied to the
// request. The response body is read in full and returned as is. Failure to read or close the HTTP
// response body and HTTP status other than given expectedStatus will fail the test associated with t.
func (hc *HTTPClient) Do(t *testing.T, method, path string, requestBody io.Reader, expectedStatus int, headers ...func(http.Header)) []byte {
	t.Helper()

	req := hc.newRequest(t, method, path, requestBody, headers...)
	res := hc.do(t, req)

	errMsg := httpClientErrMessage(method, path)
	defer func() {
		require.NoError(t, res.Body.Close(), errMsg+": failed to close HTTP response body")
	}()
	body, err := io.ReadAll(res.Body)
	require.NoError(t, err, errMsg+": failed to read HTTP response body")
	require.Equal(t, expectedStatus, res.StatusCode, errMsg+": HTTP status mismatch, body: "+string(body))
	return body
}

// do delegates the request to the underlying HTTP client.
func (hc *HTTPClient) do(t *testing.T, req *http.Request) *http.Response {
	resp, err := hc.Client.Do(req)
	require.NoError(t, err, httpClientErrMessage(req.Method, req.URL.Path)+": HTTP request failed")
	return resp
}

func httpClientErrMessage(method, path string) string {
	return fmt.Sprintf("failed %s %q", method, path)
}

// newRequest creates a new HTTP request to the server at given path after applying any optional
// headers.
func (hc *HTTPClient) newRequest(t *testing.T, method, path string, body io.Reader, headers ...func(http.Header)) *http.Request {
	t.Helper()

	req, err := http.NewRequest(method, hc.ServerURL+path, body)
	require.NoError(t, err, httpClientErrMessage(method, path)+": failed to create request")

	for _, f := range headers {
		f(req.Header)
	}

	return req
}
