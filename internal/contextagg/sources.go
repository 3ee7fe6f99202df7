package contextagg

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"
	"unicode/utf8"
)

// readFile resolves relPath against u.ProjectRoot (rejecting any path that
// escapes the root, the same sandbox invariant the project loader
// enforces), and dispatches to a format-specific reader by extension.
func (u *Unit) readFile(cfg Config, relPath string) resolvedFile {
	abs := filepath.Join(u.ProjectRoot, relPath)
	if !strings.HasPrefix(abs, u.ProjectRoot) {
		return resolvedFile{Name: relPath, RelPath: relPath, Err: fmt.Errorf("path escapes project root")}
	}

	info, err := os.Stat(abs)
	if err != nil {
		return resolvedFile{Name: filepath.Base(relPath), RelPath: relPath, Err: err}
	}
	if cfg.MaxFileSize > 0 && int(info.Size()) > cfg.MaxFileSize {
		content, _ := readTruncated(abs, cfg.MaxFileSize)
		return resolvedFile{Name: filepath.Base(relPath), RelPath: relPath, Content: content, SizeBytes: int(info.Size()), ModifiedTime: info.ModTime(), Truncated: true}
	}

	content, err := readByExtension(abs)
	if err != nil {
		return resolvedFile{Name: filepath.Base(relPath), RelPath: relPath, Err: err}
	}
	return resolvedFile{Name: filepath.Base(relPath), RelPath: relPath, Content: content, SizeBytes: int(info.Size()), ModifiedTime: info.ModTime()}
}

func readTruncated(path string, limit int) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()
	buf := make([]byte, limit)
	n, err := io.ReadFull(f, buf)
	if err != nil && err != io.ErrUnexpectedEOF {
		return "", err
	}
	return decodeBytes(buf[:n]), nil
}

func readByExtension(path string) (string, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx":
		return readExcel(path)
	case ".pdf":
		return readPDF(path)
	case ".docx":
		return readDocx(path)
	default:
		data, err := os.ReadFile(path)
		if err != nil {
			return "", err
		}
		return decodeBytes(data), nil
	}
}

// decodeBytes decodes UTF-8 text, falling back to a latin-1 (byte-as-rune)
// interpretation for files that aren't valid UTF-8, so the aggregator never
// hard-fails just because a source file used a legacy encoding.
func decodeBytes(data []byte) string {
	if utf8.Valid(data) {
		return string(data)
	}
	runes := make([]rune, len(data))
	for i, b := range data {
		runes[i] = rune(b)
	}
	return string(runes)
}

// readDirectory walks cfg.Path (optionally recursive), applying exclusion
// globs and max_files, returning files sorted by relative path for
// deterministic output ordering.
func (u *Unit) readDirectory(ctx context.Context, cfg Config) []resolvedFile {
	root := filepath.Join(u.ProjectRoot, cfg.Path)
	var files []resolvedFile

	walkFn := func(path string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return nil
		}
		if !cfg.Recursive && filepath.Dir(path) != root {
			return nil
		}
		rel, _ := filepath.Rel(u.ProjectRoot, path)
		for _, pattern := range cfg.Exclude {
			if ok, _ := filepath.Match(pattern, filepath.Base(path)); ok {
				return nil
			}
		}
		if cfg.MaxFiles > 0 && len(files) >= cfg.MaxFiles {
			return fs.SkipAll
		}
		files = append(files, u.readFile(cfg, rel))
		return nil
	}
	_ = filepath.WalkDir(root, walkFn)
	sortNames(files)
	return files
}

// fetchURL retrieves cfg.URL with the configured timeout, following
// redirects (the net/http client's default policy).
func (u *Unit) fetchURL(ctx context.Context, cfg Config) resolvedFile {
	reqCtx, cancel := context.WithTimeout(ctx, time.Duration(cfg.TimeoutSeconds)*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, cfg.URL, nil)
	if err != nil {
		return resolvedFile{Name: cfg.URL, RelPath: cfg.URL, Err: err}
	}
	resp, err := u.HTTPClient.Do(req)
	if err != nil {
		return resolvedFile{Name: cfg.URL, RelPath: cfg.URL, Err: err}
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 400 {
		return resolvedFile{Name: cfg.URL, RelPath: cfg.URL, Err: fmt.Errorf("http %d", resp.StatusCode)}
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return resolvedFile{Name: cfg.URL, RelPath: cfg.URL, Err: err}
	}
	return resolvedFile{Name: cfg.URL, RelPath: cfg.URL, Content: decodeBytes(body), SizeBytes: len(body)}
}
