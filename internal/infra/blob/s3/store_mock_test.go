package s3

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"testing"
	"time"

	"catalogcore/internal/blob"
)

// fakeS3Transport answers a small S3 subset in memory so the driver can be
// exercised without network access. Objects are keyed by object key; the
// bucket segment of the path-style URL is ignored.
type fakeS3Transport struct {
	objects map[string]fakeObject
}

type fakeObject struct {
	data        []byte
	contentType string
}

func (f *fakeS3Transport) RoundTrip(req *http.Request) (*http.Response, error) {
	parts := strings.SplitN(strings.TrimPrefix(req.URL.Path, "/"), "/", 2)
	var key string
	if len(parts) == 2 {
		key = parts[1]
	}

	if req.Method == http.MethodGet && req.URL.Query().Get("list-type") == "2" {
		return f.listResponse(req), nil
	}

	switch req.Method {
	case http.MethodHead:
		obj, ok := f.objects[key]
		if !ok {
			return xmlStatus(http.StatusNotFound), nil
		}
		resp := xmlStatus(http.StatusOK)
		resp.Header.Set("Content-Length", strconv.Itoa(len(obj.data)))
		resp.Header.Set("Content-Type", obj.contentType)
		resp.Header.Set("ETag", `"fake-etag"`)
		resp.Header.Set("Last-Modified", time.Now().UTC().Format(http.TimeFormat))
		return resp, nil
	case http.MethodPut:
		body, _ := io.ReadAll(req.Body)
		if plain, ok := stripAWSChunking(body); ok {
			body = plain
		}
		if _, exists := f.objects[key]; !exists {
			f.objects[key] = fakeObject{data: body, contentType: req.Header.Get("Content-Type")}
		}
		resp := xmlStatus(http.StatusOK)
		resp.Header.Set("ETag", `"fake-etag"`)
		return resp, nil
	case http.MethodGet:
		obj, ok := f.objects[key]
		if !ok {
			return xmlStatus(http.StatusNotFound), nil
		}
		resp := xmlStatus(http.StatusOK)
		resp.Body = io.NopCloser(bytes.NewReader(obj.data))
		resp.Header.Set("Content-Length", strconv.Itoa(len(obj.data)))
		resp.Header.Set("Content-Type", obj.contentType)
		resp.Header.Set("ETag", `"fake-etag"`)
		resp.Header.Set("Last-Modified", time.Now().UTC().Format(http.TimeFormat))
		return resp, nil
	case http.MethodDelete:
		delete(f.objects, key)
		return xmlStatus(http.StatusNoContent), nil
	}
	return xmlStatus(http.StatusNotImplemented), nil
}

// listResponse paginates deliberately: with more than one matching key and no
// continuation token it returns only the first key truncated, forcing the
// driver to follow NextContinuationToken for the rest.
func (f *fakeS3Transport) listResponse(req *http.Request) *http.Response {
	prefix := req.URL.Query().Get("prefix")
	cont := req.URL.Query().Get("continuation-token")

	var keys []string
	for k := range f.objects {
		if prefix == "" || strings.HasPrefix(k, prefix) {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)

	var b strings.Builder
	b.WriteString(`<?xml version="1.0"?><ListBucketResult>`)
	writeEntry := func(k string) {
		fmt.Fprintf(&b, "<Contents><Key>%s</Key><Size>%d</Size><LastModified>2024-01-01T00:00:00Z</LastModified></Contents>", k, len(f.objects[k].data))
	}
	switch {
	case cont == "" && len(keys) > 1:
		b.WriteString("<IsTruncated>true</IsTruncated><NextContinuationToken>page-2</NextContinuationToken>")
		writeEntry(keys[0])
	default:
		b.WriteString("<IsTruncated>false</IsTruncated>")
		start := 0
		if cont != "" && len(keys) > 1 {
			start = 1
		}
		for _, k := range keys[start:] {
			writeEntry(k)
		}
	}
	b.WriteString("</ListBucketResult>")

	resp := xmlStatus(http.StatusOK)
	resp.Body = io.NopCloser(strings.NewReader(b.String()))
	return resp
}

func xmlStatus(code int) *http.Response {
	return &http.Response{
		StatusCode: code,
		Body:       io.NopCloser(bytes.NewReader(nil)),
		Header:     http.Header{"Content-Type": {"application/xml"}},
	}
}

// stripAWSChunking unwraps a single-chunk aws-chunked body
// (<hex-size>\r\n<payload>\r\n0\r\n...) produced by the SDK's streaming
// signer. Returns the payload and true, or (nil, false) when the body is
// not chunked.
func stripAWSChunking(body []byte) ([]byte, bool) {
	segments := strings.Split(string(body), "\r\n")
	if len(segments) < 3 || segments[2] != "0" {
		return nil, false
	}
	size, err := strconv.ParseInt(segments[0], 16, 64)
	if err != nil || size <= 0 || int64(len(segments[1])) != size {
		return nil, false
	}
	return []byte(segments[1]), true
}

func newMockedStore(t *testing.T) (*Store, *fakeS3Transport) {
	t.Helper()
	transport := &fakeS3Transport{objects: make(map[string]fakeObject)}
	store, err := New(context.Background(), Config{
		Bucket:          "exports",
		Region:          "us-east-1",
		Endpoint:        "https://mock.s3.local",
		AccessKeyID:     "AKIA",
		SecretAccessKey: "SECRET",
		PathStyle:       true,
		HTTPClient:      &http.Client{Transport: transport},
	})
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	return store, transport
}

func TestPutIsCreateOnly(t *testing.T) {
	store, _ := newMockedStore(t)
	ctx := context.Background()

	info, err := store.Put(ctx, "e-1/rows.csv", bytes.NewReader([]byte("id,title\n")), blob.PutOptions{ContentType: "text/csv"})
	if err != nil {
		t.Fatalf("put: %v", err)
	}
	if info.Key != "e-1/rows.csv" || info.ContentType != "text/csv" || info.Size == 0 {
		t.Fatalf("info %+v", info)
	}
	if info.URL != "https://mock.s3.local/exports/e-1/rows.csv" {
		t.Fatalf("url %q", info.URL)
	}

	if _, err := store.Put(ctx, "e-1/rows.csv", bytes.NewReader([]byte("other")), blob.PutOptions{ContentType: "text/csv"}); err == nil {
		t.Fatal("expected error writing over an existing key")
	}

	_, rc, err := store.Get(ctx, "e-1/rows.csv")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	data, _ := io.ReadAll(rc)
	_ = rc.Close()
	if string(data) != "id,title\n" {
		t.Fatalf("body %q", string(data))
	}
}

func TestListFollowsContinuationTokens(t *testing.T) {
	store, _ := newMockedStore(t)
	ctx := context.Background()

	for _, key := range []string{"e-1/rows.csv", "e-1/rows.json", "e-2/rows.csv"} {
		if _, err := store.Put(ctx, key, bytes.NewReader([]byte("payload")), blob.PutOptions{ContentType: "application/octet-stream"}); err != nil {
			t.Fatalf("put %s: %v", key, err)
		}
	}

	infos, err := store.List(ctx, "e-1/")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(infos) != 2 {
		t.Fatalf("list returned %d entries", len(infos))
	}
	if infos[0].Key != "e-1/rows.csv" || infos[1].Key != "e-1/rows.json" {
		t.Fatalf("keys %q %q", infos[0].Key, infos[1].Key)
	}

	all, err := store.List(ctx, "")
	if err != nil {
		t.Fatalf("list all: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("list all returned %d entries", len(all))
	}
}

func TestMissingObjectPaths(t *testing.T) {
	store, _ := newMockedStore(t)
	ctx := context.Background()

	if _, err := store.Head(ctx, "ghost"); err == nil {
		t.Fatal("expected head error for missing key")
	}
	if _, _, err := store.Get(ctx, "ghost"); err == nil {
		t.Fatal("expected get error for missing key")
	}
	if ok, err := store.Delete(ctx, "ghost"); err != nil || ok {
		t.Fatalf("delete missing: %v %v", ok, err)
	}
}

func TestDeleteRemovesObject(t *testing.T) {
	store, transport := newMockedStore(t)
	ctx := context.Background()

	if _, err := store.Put(ctx, "e-1/rows.json", bytes.NewReader([]byte(`[]`)), blob.PutOptions{ContentType: "application/json"}); err != nil {
		t.Fatalf("put: %v", err)
	}
	if ok, err := store.Delete(ctx, "e-1/rows.json"); err != nil || !ok {
		t.Fatalf("delete: %v %v", ok, err)
	}
	if len(transport.objects) != 0 {
		t.Fatalf("objects remain: %d", len(transport.objects))
	}
}
