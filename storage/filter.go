package storage

import "strings"

// ListFilter selects keys during listing. The zero value accepts every key.
type ListFilter struct {
	// FilenameContains rejects keys that do not contain this substring.
	FilenameContains string
	// OnlyFiles rejects directory markers (keys ending in "/").
	OnlyFiles bool
	// Extensions rejects keys that end in none of these suffixes.
	Extensions []string
}

// Match reports whether key passes the filter.
func (f ListFilter) Match(key string) bool {
	if f.FilenameContains != "" && !strings.Contains(key, f.FilenameContains) {
		return false
	}
	if f.OnlyFiles && strings.HasSuffix(key, "/") {
		return false
	}
	if len(f.Extensions) == 0 {
		return true
	}
	for _, ext := range f.Extensions {
		if strings.HasSuffix(key, ext) {
			return true
		}
	}
	return false
}

// Apply returns the keys that pass the filter, in order.
func (f ListFilter) Apply(keys []string) []string {
	out := make([]string, 0, len(keys))
	for _, k := range keys {
		if f.Match(k) {
			out = append(out, k)
		}
	}
	return out
}

// ListOptions configures List.
type ListOptions struct {
	ListFilter
	// Folder is resolved with FolderPath into the listing prefix.
	Folder string
	// PageSize is a hint for the provider page size. Zero keeps the
	// provider default.
	PageSize int
}

// ListOption adjusts ListOptions.
type ListOption func(*ListOptions)

// DefaultListOptions lists files only, with no other filtering.
func DefaultListOptions() ListOptions {
	return ListOptions{ListFilter: ListFilter{OnlyFiles: true}}
}

// NewListOptions starts from DefaultListOptions for folder and applies opts.
func NewListOptions(folder string, opts ...ListOption) ListOptions {
	o := DefaultListOptions()
	o.Folder = folder
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// WithFilenameContains keeps keys containing s.
func WithFilenameContains(s string) ListOption {
	return func(o *ListOptions) { o.FilenameContains = s }
}

// WithExtensions keeps keys ending in any of exts.
func WithExtensions(exts ...string) ListOption {
	return func(o *ListOptions) { o.Extensions = exts }
}

// WithDirectories keeps directory markers in the listing.
func WithDirectories() ListOption {
	return func(o *ListOptions) { o.OnlyFiles = false }
}

// WithPageSize sets the provider page size hint.
func WithPageSize(n int) ListOption {
	return func(o *ListOptions) { o.PageSize = n }
}
