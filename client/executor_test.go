package client_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/adamwoolhether/normhttp/client"
)

type payload struct {
	Body string `json:"body"`
}

// roundTripFunc adapts a function into an http.RoundTripper.
type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(r *http.Request) (*http.Response, error) {
	return f(r)
}

type panicTransport struct{}

func (panicTransport) Send(context.Context, *client.Call) (*client.Response, error) {
	panic("transport exploded")
}

func mockServer(t *testing.T) *httptest.Server {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("GET /users", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Add("Link", `<https://x/2>; rel="next", <https://x/0>; rel="first"`)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[{"login":"octocat"}]`))
	})
	mux.HandleFunc("GET /plain", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("hello"))
	})
	mux.HandleFunc("GET /empty", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	mux.HandleFunc("GET /number", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"id":12345678901234567}`))
	})
	mux.HandleFunc("GET /query", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(r.URL.Query())
	})
	mux.HandleFunc("GET /headers", func(w http.ResponseWriter, r *http.Request) {
		cookie, _ := r.Cookie("session")
		out := map[string]string{
			"x-custom":     r.Header.Get("X-Custom"),
			"content-type": r.Header.Get("Content-Type"),
		}
		if cookie != nil {
			out["session"] = cookie.Value
		}
		_ = json.NewEncoder(w).Encode(out)
	})
	mux.HandleFunc("GET /malformed", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Add("Link", `<https://x/3>; rel="next", nonsense`)
		_, _ = w.Write([]byte(`{}`))
	})
	mux.HandleFunc("GET /missing", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"message":"Not Found"}`))
	})
	mux.HandleFunc("GET /problem", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/problem+json")
		w.WriteHeader(http.StatusUnprocessableEntity)
		_, _ = w.Write([]byte(`{"title":"Invalid input","detail":"name is required"}`))
	})
	mux.HandleFunc("GET /slow", func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	})
	mux.HandleFunc("/echo", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Method", r.Method)
		w.Header().Set("X-Content-Type", r.Header.Get("Content-Type"))
		if r.Method == http.MethodDelete {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		w.Header().Add("Link", `<https://x/2>; rel="next"`)
		_, _ = io.Copy(w, r.Body)
	})
	mux.HandleFunc("POST /upload", func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		f, hdr, err := r.FormFile("file")
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		defer f.Close()

		content, _ := io.ReadAll(f)
		_ = json.NewEncoder(w).Encode(map[string]string{
			"name":     r.FormValue("name"),
			"filename": hdr.Filename,
			"content":  string(content),
		})
	})

	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)

	return server
}

func buildClient(t *testing.T, opts ...client.Option) *client.Client {
	t.Helper()

	c, err := client.Build(opts...)
	if err != nil {
		t.Fatalf("failed to create client: %v", err)
	}

	return c
}

func TestGet_Links(t *testing.T) {
	server := mockServer(t)
	c := buildClient(t)

	res := client.Get(t.Context(), c, server.URL+"/users")
	if !res.OK {
		t.Fatalf("expected success, got: %s (%v)", res.StatusText, res.Err)
	}

	if res.Status != http.StatusOK || res.StatusText != "OK" {
		t.Errorf("got status %d %q", res.Status, res.StatusText)
	}

	wantLinks := &client.LinkSet{Next: "https://x/2", First: "https://x/0"}
	if diff := cmp.Diff(wantLinks, res.Links); diff != "" {
		t.Errorf("links mismatch (-want +got):\n%s", diff)
	}

	wantData := []any{map[string]any{"login": "octocat"}}
	if diff := cmp.Diff(wantData, res.Data); diff != "" {
		t.Errorf("data mismatch (-want +got):\n%s", diff)
	}

	if res.Kind() != client.KindNone {
		t.Errorf("got kind %s, want %s", res.Kind(), client.KindNone)
	}
}

func TestGet_NoLinkHeader(t *testing.T) {
	server := mockServer(t)
	c := buildClient(t)

	res := client.Get(t.Context(), c, server.URL+"/plain")
	if !res.OK {
		t.Fatalf("expected success, got: %v", res.Err)
	}

	if diff := cmp.Diff(&client.LinkSet{}, res.Links); diff != "" {
		t.Errorf("links should be all null (-want +got):\n%s", diff)
	}
	if res.Data != "hello" {
		t.Errorf("non JSON body should be kept as text, got %#v", res.Data)
	}
}

func TestGet_EmptyBody(t *testing.T) {
	server := mockServer(t)
	c := buildClient(t)

	res := client.Get(t.Context(), c, server.URL+"/empty")
	if !res.OK || res.Status != http.StatusNoContent {
		t.Fatalf("unexpected result: ok=%v status=%d", res.OK, res.Status)
	}
	if res.Data != nil {
		t.Errorf("expected nil data, got %#v", res.Data)
	}
}

func TestGet_MalformedLinkHeader(t *testing.T) {
	server := mockServer(t)

	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))
	c := buildClient(t, client.WithLogger(logger))

	res := client.Get(t.Context(), c, server.URL+"/malformed")
	if !res.OK {
		t.Fatalf("malformed links must not fail the request: %v", res.Err)
	}

	if diff := cmp.Diff(&client.LinkSet{Next: "https://x/3"}, res.Links); diff != "" {
		t.Errorf("links mismatch (-want +got):\n%s", diff)
	}

	if !strings.Contains(buf.String(), "malformed link header") {
		t.Errorf("expected a warning to be logged, got: %s", buf.String())
	}
}

func TestGet_NotFound(t *testing.T) {
	server := mockServer(t)
	c := buildClient(t)

	res := client.Get(t.Context(), c, server.URL+"/missing")

	if res.OK {
		t.Fatal("expected failure")
	}
	if res.Status != http.StatusNotFound || res.StatusText != "Not Found" {
		t.Errorf("got status %d %q", res.Status, res.StatusText)
	}
	if diff := cmp.Diff(map[string]any{"message": "Not Found"}, res.Data); diff != "" {
		t.Errorf("data mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(&client.LinkSet{}, res.Links); diff != "" {
		t.Errorf("links should be all null (-want +got):\n%s", diff)
	}
}

func TestGet_ProblemDetail(t *testing.T) {
	server := mockServer(t)
	c := buildClient(t)

	res := client.Get(t.Context(), c, server.URL+"/problem")

	if res.Status != http.StatusUnprocessableEntity {
		t.Errorf("got status %d", res.Status)
	}
	if res.StatusText != "name is required" {
		t.Errorf("got status text %q, want problem detail", res.StatusText)
	}
}

func TestGet_HostNotFound(t *testing.T) {
	dnsFail := roundTripFunc(func(r *http.Request) (*http.Response, error) {
		return nil, &net.DNSError{Err: "no such host", Name: r.URL.Hostname(), IsNotFound: true}
	})
	c := buildClient(t, client.WithTransport(dnsFail))

	res := client.Get(t.Context(), c, "https://nowhere.invalid/users")

	if res.OK || res.Data != nil {
		t.Fatalf("unexpected result: ok=%v data=%v", res.OK, res.Data)
	}
	if res.StatusText != "The server could not be reached or the URL was invalid." {
		t.Errorf("got status text %q", res.StatusText)
	}
	if res.Code != client.CodeNotFound {
		t.Errorf("got code %q, want %q", res.Code, client.CodeNotFound)
	}
	if res.Request == nil {
		t.Error("expected request to be kept")
	}
}

func TestGet_ConnectionRefused(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	addr := server.URL
	server.Close()

	c := buildClient(t)

	res := client.Get(t.Context(), c, addr)
	if res.Kind() != client.KindNetwork {
		t.Fatalf("got kind %s, want %s", res.Kind(), client.KindNetwork)
	}
	if res.Code != client.CodeConnRefused {
		t.Errorf("got code %q, want %q", res.Code, client.CodeConnRefused)
	}
}

func TestGet_RequestTimeout(t *testing.T) {
	server := mockServer(t)
	c := buildClient(t)

	res := client.Get(t.Context(), c, server.URL+"/slow", client.WithRequestTimeout(50*time.Millisecond))

	if res.Code != client.CodeConnAborted {
		t.Fatalf("got code %q, want %q", res.Code, client.CodeConnAborted)
	}
	if !strings.HasPrefix(res.StatusText, "Connection was aborted: ") {
		t.Errorf("got status text %q", res.StatusText)
	}
}

func TestGet_Params(t *testing.T) {
	server := mockServer(t)
	c := buildClient(t)

	res := client.Get(t.Context(), c, server.URL+"/query?keep=1",
		client.WithParams(map[string]string{"page": "2", "per_page": "5"}),
	)
	if !res.OK {
		t.Fatalf("expected success, got: %v", res.Err)
	}

	var got map[string][]string
	if err := res.Decode(&got); err != nil {
		t.Fatalf("decode: %v", err)
	}

	want := map[string][]string{"keep": {"1"}, "page": {"2"}, "per_page": {"5"}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("query mismatch (-want +got):\n%s", diff)
	}
}

func TestGet_HeadersAndCookies(t *testing.T) {
	server := mockServer(t)
	c := buildClient(t)

	res := client.Get(t.Context(), c, server.URL+"/headers",
		client.WithHeaders(map[string][]string{"X-Custom": {"yes"}}),
		client.WithCookies(&http.Cookie{Name: "session", Value: "abc"}),
	)
	if !res.OK {
		t.Fatalf("expected success, got: %v", res.Err)
	}

	want := map[string]any{"x-custom": "yes", "content-type": "", "session": "abc"}
	if diff := cmp.Diff(want, res.Data); diff != "" {
		t.Errorf("headers mismatch (-want +got):\n%s", diff)
	}
}

func TestGet_JSONNumber(t *testing.T) {
	server := mockServer(t)
	c := buildClient(t)

	res := client.Get(t.Context(), c, server.URL+"/number", client.WithJSONNumber())
	if !res.OK {
		t.Fatalf("expected success, got: %v", res.Err)
	}

	doc, ok := res.Data.(map[string]any)
	if !ok {
		t.Fatalf("unexpected data type %T", res.Data)
	}
	if got := doc["id"]; got != json.Number("12345678901234567") {
		t.Errorf("got %#v, want json.Number", got)
	}
}

func TestGet_ValidateStatus(t *testing.T) {
	server := mockServer(t)
	c := buildClient(t)

	res := client.Get(t.Context(), c, server.URL+"/missing",
		client.WithValidateStatus(func(status int) bool { return status < http.StatusInternalServerError }),
	)
	if !res.OK || res.Status != http.StatusNotFound {
		t.Errorf("expected 404 to be accepted, got ok=%v status=%d", res.OK, res.Status)
	}
}

func TestVerbs(t *testing.T) {
	server := mockServer(t)
	c := buildClient(t)
	url := server.URL + "/echo"

	tests := []struct {
		name     string
		res      *client.Result
		method   string
		wantData any
	}{
		{
			name:     "post",
			res:      client.Post(t.Context(), c, url, payload{Body: "created"}),
			method:   http.MethodPost,
			wantData: map[string]any{"body": "created"},
		},
		{
			name:     "put",
			res:      client.Put(t.Context(), c, url, payload{Body: "updated"}),
			method:   http.MethodPut,
			wantData: map[string]any{"body": "updated"},
		},
		{
			name:   "delete",
			res:    client.Delete(t.Context(), c, url),
			method: http.MethodDelete,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if !tt.res.OK {
				t.Fatalf("expected success, got: %s (%v)", tt.res.StatusText, tt.res.Err)
			}
			if got := tt.res.Header.Get("X-Method"); got != tt.method {
				t.Errorf("got method %q, want %q", got, tt.method)
			}
			if tt.res.Method != tt.method {
				t.Errorf("result method %q, want %q", tt.res.Method, tt.method)
			}
			if tt.res.Links != nil {
				t.Errorf("only GET results carry links, got %+v", tt.res.Links)
			}
			if diff := cmp.Diff(tt.wantData, tt.res.Data); diff != "" {
				t.Errorf("data mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestPost_ContentType(t *testing.T) {
	server := mockServer(t)
	c := buildClient(t)
	url := server.URL + "/echo"

	tests := []struct {
		name string
		data any
		opts []client.RequestOption
		want string
	}{
		{name: "struct is json", data: payload{Body: "x"}, want: "application/json"},
		{name: "string is text", data: "x", want: "text/plain; charset=utf-8"},
		{name: "bytes unset", data: []byte("x"), want: ""},
		{
			name: "override",
			data: []byte("a=b"),
			opts: []client.RequestOption{client.WithContentType("application/x-www-form-urlencoded")},
			want: "application/x-www-form-urlencoded",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := client.Post(t.Context(), c, url, tt.data, tt.opts...)
			if !res.OK {
				t.Fatalf("expected success, got: %v", res.Err)
			}
			if got := res.Header.Get("X-Content-Type"); got != tt.want {
				t.Errorf("got content type %q, want %q", got, tt.want)
			}
		})
	}
}

func TestPostMultipart(t *testing.T) {
	server := mockServer(t)
	c := buildClient(t)

	form := &client.MultipartForm{
		Fields: map[string]string{"name": "report"},
		Files: []client.FormFile{
			{FieldName: "file", FileName: "report.csv", ContentType: "text/csv", Data: []byte("a,b\n1,2\n")},
		},
	}

	res := client.PostMultipart(t.Context(), c, server.URL+"/upload", form)
	if !res.OK {
		t.Fatalf("expected success, got: %s (%v)", res.StatusText, res.Err)
	}

	want := map[string]any{"name": "report", "filename": "report.csv", "content": "a,b\n1,2\n"}
	if diff := cmp.Diff(want, res.Data); diff != "" {
		t.Errorf("upload mismatch (-want +got):\n%s", diff)
	}
	if res.Links != nil {
		t.Error("multipart results don't carry links")
	}
}

func TestPostMultipart_InvalidForm(t *testing.T) {
	c := buildClient(t)

	form := &client.MultipartForm{Files: []client.FormFile{{FileName: "orphan.txt"}}}

	res := client.PostMultipart(t.Context(), c, "http://localhost/upload", form)
	if res.Kind() != client.KindRequestBuild {
		t.Fatalf("got kind %s, want %s", res.Kind(), client.KindRequestBuild)
	}
}

func TestExecute_RequestBuildFailures(t *testing.T) {
	c := buildClient(t)

	tests := []struct {
		name string
		res  *client.Result
	}{
		{
			name: "bad option",
			res:  client.Get(t.Context(), c, "http://localhost", client.WithContentType("")),
		},
		{
			name: "bad url",
			res:  client.Get(t.Context(), c, "http://[::1"),
		},
		{
			name: "unencodable payload",
			res:  client.Post(t.Context(), c, "http://localhost", map[string]any{"ch": make(chan int)}),
		},
		{
			name: "nil transport",
			res:  client.Get(t.Context(), nil, "http://localhost"),
		},
		{
			name: "nil call",
			res:  client.Execute(t.Context(), c, nil),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.res.OK {
				t.Fatal("expected failure")
			}
			if tt.res.Kind() != client.KindRequestBuild {
				t.Errorf("got kind %s, want %s (%v)", tt.res.Kind(), client.KindRequestBuild, tt.res.Err)
			}
			if tt.res.Status != 0 || tt.res.Data != nil {
				t.Errorf("unexpected result: status=%d data=%v", tt.res.Status, tt.res.Data)
			}
			if diff := cmp.Diff(&client.LinkSet{}, tt.res.Links); diff != "" {
				t.Errorf("links should be all null (-want +got):\n%s", diff)
			}
		})
	}
}

func TestExecute_RecoversPanic(t *testing.T) {
	res := client.Get(t.Context(), panicTransport{}, "http://localhost")

	if res.OK {
		t.Fatal("expected failure")
	}
	if res.Kind() != client.KindUnknown {
		t.Errorf("got kind %s, want %s", res.Kind(), client.KindUnknown)
	}
	if res.StatusText != "An unknown error occurred." {
		t.Errorf("got status text %q", res.StatusText)
	}
}

func TestResult_Decode(t *testing.T) {
	server := mockServer(t)
	c := buildClient(t)

	res := client.Post(t.Context(), c, server.URL+"/echo", payload{Body: "typed"})

	var got payload
	if err := res.Decode(&got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.Body != "typed" {
		t.Errorf("got %q, want %q", got.Body, "typed")
	}

	empty := client.Delete(t.Context(), c, server.URL+"/echo")
	if err := empty.Decode(&got); err == nil {
		t.Error("expected error decoding an empty body")
	}
}

func TestResult_JSON(t *testing.T) {
	res := client.Classify(errors.New("boom"))

	data, err := json.Marshal(res)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	want := `{"ok":false,"statusText":"An unknown error occurred.","data":null,` +
		`"links":{"first":null,"last":null,"prev":null,"next":null}}`
	if string(data) != want {
		t.Errorf("got %s, want %s", data, want)
	}
}

func TestURI(t *testing.T) {
	got, err := client.URI("https://foo.com/bar", client.WithParams(map[string]string{"baz": "foobar"}))
	if err != nil {
		t.Fatalf("uri: %v", err)
	}

	if want := "https://foo.com/bar?baz=foobar"; got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}
