package assets

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"mime"
	"net/http"
	"path"
	"strconv"
	"strings"
)

// FilesystemFetcher serves assets from an fs.FS rooted at the configured
// asset directory.
type FilesystemFetcher struct {
	root fs.FS
	name string
}

// NewFilesystemFetcher creates a fetcher backed by the given filesystem.
// The name shows up in logs and metrics, typically the root directory path.
func NewFilesystemFetcher(root fs.FS, name string) *FilesystemFetcher {
	return &FilesystemFetcher{
		root: root,
		name: name,
	}
}

// Name returns the asset source identifier.
func (f *FilesystemFetcher) Name() string {
	return f.name
}

// Fetch resolves the request path inside the root filesystem. Missing files
// and directories produce a 404 response; only I/O failures are errors.
func (f *FilesystemFetcher) Fetch(req *http.Request) (*http.Response, error) {
	name := strings.TrimPrefix(path.Clean(req.URL.Path), "/")

	if name == "" || name == "." || !fs.ValidPath(name) {
		return notFoundResponse(), nil
	}

	info, err := fs.Stat(f.root, name)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return notFoundResponse(), nil
		}
		return nil, fmt.Errorf("stat asset %s: %w", name, err)
	}

	if info.IsDir() {
		return notFoundResponse(), nil
	}

	data, err := fs.ReadFile(f.root, name)
	if err != nil {
		return nil, fmt.Errorf("read asset %s: %w", name, err)
	}

	header := make(http.Header)
	header.Set("Content-Type", contentType(name, data))
	header.Set("Content-Length", strconv.Itoa(len(data)))
	header.Set("Last-Modified", info.ModTime().UTC().Format(http.TimeFormat))

	return &http.Response{
		StatusCode: http.StatusOK,
		Header:     header,
		Body:       io.NopCloser(bytes.NewReader(data)),
	}, nil
}

func contentType(name string, data []byte) string {
	if ct := mime.TypeByExtension(path.Ext(name)); ct != "" {
		return ct
	}

	return http.DetectContentType(data)
}

func notFoundResponse() *http.Response {
	header := make(http.Header)
	header.Set("Content-Type", "text/plain; charset=utf-8")

	return &http.Response{
		StatusCode: http.StatusNotFound,
		Header:     header,
		Body:       io.NopCloser(strings.NewReader("not found\n")),
	}
}
