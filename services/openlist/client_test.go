package openlist

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"testing"
)

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(req *http.Request) (*http.Response, error) {
	return f(req)
}

func jsonResponse(status int, body string) *http.Response {
	return &http.Response{
		StatusCode: status,
		Body:       io.NopCloser(bytes.NewBufferString(body)),
		Header:     make(http.Header),
	}
}

func newTestClient(handler func(*http.Request) (*http.Response, error)) *Client {
	return New("http://openlist.local", "admin", "pw", &http.Client{
		Transport: roundTripFunc(handler),
	})
}

func TestFsGetSuccess(t *testing.T) {
	logins := 0
	client := newTestClient(func(req *http.Request) (*http.Response, error) {
		switch req.URL.Path {
		case "/api/auth/login":
			logins++
			var creds map[string]string
			if err := json.NewDecoder(req.Body).Decode(&creds); err != nil {
				t.Fatalf("decode login body: %v", err)
			}
			if creds["username"] != "admin" || creds["password"] != "pw" {
				t.Fatalf("unexpected credentials %v", creds)
			}
			return jsonResponse(http.StatusOK, `{"code":200,"data":{"token":"tok-1"}}`), nil
		case "/api/fs/get":
			if got := req.Header.Get("Authorization"); got != "tok-1" {
				t.Fatalf("expected token header, got %q", got)
			}
			var body map[string]string
			if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
				t.Fatalf("decode fs/get body: %v", err)
			}
			if body["path"] != "/x/A/b.mp4" {
				t.Fatalf("expected path /x/A/b.mp4, got %q", body["path"])
			}
			return jsonResponse(http.StatusOK, `{"code":200,"data":{"name":"b.mp4","raw_url":"https://cdn.example.com/b.mp4"}}`), nil
		}
		t.Fatalf("unexpected request to %s", req.URL.Path)
		return nil, nil
	})

	info, err := client.FsGet(context.Background(), "/x/A/b.mp4")
	if err != nil {
		t.Fatalf("FsGet returned error: %v", err)
	}
	if info.RawURL != "https://cdn.example.com/b.mp4" {
		t.Fatalf("unexpected raw url %q", info.RawURL)
	}

	// Token is cached across calls.
	if _, err := client.FsGet(context.Background(), "/x/A/b.mp4"); err != nil {
		t.Fatalf("second FsGet: %v", err)
	}
	if logins != 1 {
		t.Fatalf("expected 1 login, got %d", logins)
	}
}

func TestFsGetNonSuccessCode(t *testing.T) {
	client := newTestClient(func(req *http.Request) (*http.Response, error) {
		if req.URL.Path == "/api/auth/login" {
			return jsonResponse(http.StatusOK, `{"code":200,"data":{"token":"tok-1"}}`), nil
		}
		return jsonResponse(http.StatusOK, `{"code":500,"message":"object not found"}`), nil
	})

	_, err := client.FsGet(context.Background(), "/missing.mp4")
	var statusErr *StatusError
	if !errors.As(err, &statusErr) {
		t.Fatalf("expected StatusError, got %v", err)
	}
	if statusErr.Code != 500 || statusErr.Message != "object not found" {
		t.Fatalf("unexpected status error %+v", statusErr)
	}
}

func TestFsGetMissingRawURL(t *testing.T) {
	client := newTestClient(func(req *http.Request) (*http.Response, error) {
		if req.URL.Path == "/api/auth/login" {
			return jsonResponse(http.StatusOK, `{"code":200,"data":{"token":"tok-1"}}`), nil
		}
		return jsonResponse(http.StatusOK, `{"code":200,"data":{"name":"dir","is_dir":true}}`), nil
	})

	_, err := client.FsGet(context.Background(), "/dir")
	var statusErr *StatusError
	if !errors.As(err, &statusErr) {
		t.Fatalf("expected StatusError for missing raw_url, got %v", err)
	}
}

func TestLoginFailure(t *testing.T) {
	client := newTestClient(func(req *http.Request) (*http.Response, error) {
		return jsonResponse(http.StatusOK, `{"code":401,"message":"invalid credentials"}`), nil
	})

	_, err := client.FsGet(context.Background(), "/x")
	if err == nil {
		t.Fatal("expected login failure")
	}
}
