package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"io/fs"
	"sort"
	"strconv"
	"strings"
)

type copyCall struct {
	src, dstBucket, dst string
}

// mockBackend implements Backend for testing.
type mockBackend struct {
	name    string
	objects map[string][]byte
	// pages, when set, is served by ListPage instead of objects.
	pages  [][]string
	failOn string // method name to fail on

	listCalls int
	copies    []copyCall
	deletes   []string
	lastPut   PutOptions
	closed    bool
	gets      int
	getCloses int
}

func newMockBackend(name string) *mockBackend {
	return &mockBackend{name: name, objects: make(map[string][]byte)}
}

func (m *mockBackend) Name() string     { return m.name }
func (m *mockBackend) Provider() string { return "mock" }

func (m *mockBackend) ListPage(_ context.Context, prefix, token string, _ int) (Page, error) {
	m.listCalls++
	if m.failOn == "list" {
		return Page{}, fmt.Errorf("mock list error")
	}
	if m.pages != nil {
		idx := 0
		if token != "" {
			idx, _ = strconv.Atoi(token)
		}
		p := Page{Keys: m.pages[idx]}
		if idx+1 < len(m.pages) {
			p.NextToken = strconv.Itoa(idx + 1)
		}
		return p, nil
	}
	var keys []string
	for k := range m.objects {
		if strings.HasPrefix(k, prefix) {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	return Page{Keys: keys}, nil
}

type trackingCloser struct {
	io.Reader
	onClose func()
}

func (t *trackingCloser) Close() error {
	t.onClose()
	return nil
}

func (m *mockBackend) Get(_ context.Context, key string) (io.ReadCloser, error) {
	if m.failOn == "get" {
		return nil, fmt.Errorf("mock get error")
	}
	data, ok := m.objects[key]
	if !ok {
		return nil, fmt.Errorf("no such key %s: %w", key, fs.ErrNotExist)
	}
	m.gets++
	return &trackingCloser{Reader: bytes.NewReader(data), onClose: func() { m.getCloses++ }}, nil
}

func (m *mockBackend) Put(_ context.Context, key string, body io.Reader, opts PutOptions) error {
	if m.failOn == "put" {
		return fmt.Errorf("mock put error")
	}
	data, err := io.ReadAll(body)
	if err != nil {
		return err
	}
	m.objects[key] = data
	m.lastPut = opts
	return nil
}

func (m *mockBackend) Copy(_ context.Context, src, dstBucket, dst string) error {
	if m.failOn == "copy" || (m.failOn == "copy:"+src) {
		return fmt.Errorf("mock copy error")
	}
	m.copies = append(m.copies, copyCall{src, dstBucket, dst})
	return nil
}

func (m *mockBackend) Delete(_ context.Context, key string) error {
	if m.failOn == "delete" {
		return fmt.Errorf("mock delete error")
	}
	m.deletes = append(m.deletes, key)
	delete(m.objects, key)
	return nil
}

func (m *mockBackend) Close() error {
	m.closed = true
	return nil
}
