// Package vault stores notes as plain files under a single root directory.
//
// Paths handed to and returned from a Vault are vault-relative and always use
// forward slashes. The empty string names the root collection.
package vault

import (
	"context"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/pkg/errors"
)

var (
	ErrInvalidPath      = errors.New("invalid path")
	ErrSandboxViolation = errors.New("path escapes vault")
	ErrNotFound         = errors.New("document not found")
	ErrExists           = errors.New("document already exists")
	ErrNotDocument      = errors.New("not a document")
)

var textExtensions = map[string]bool{
	"md":       true,
	"markdown": true,
	"txt":      true,
}

// Document describes one file in the vault.
type Document struct {
	Basename  string `json:"basename"`
	Extension string `json:"extension"`
	Path      string `json:"path"`
	Parent    string `json:"parent"`
}

// Name is the file name including its extension.
func (d Document) Name() string {
	return path.Base(d.Path)
}

// IsText reports whether the document holds plain text that can be pulled
// into a prompt.
func (d Document) IsText() bool {
	return textExtensions[strings.ToLower(d.Extension)]
}

func newDocument(rel string) Document {
	name := path.Base(rel)
	ext := path.Ext(name)
	parent := path.Dir(rel)
	if parent == "." {
		parent = ""
	}
	return Document{
		Basename:  strings.TrimSuffix(name, ext),
		Extension: strings.TrimPrefix(ext, "."),
		Path:      rel,
		Parent:    parent,
	}
}

type Vault struct {
	root string
}

// Open returns a Vault rooted at dir, which must be an existing directory.
func Open(dir string) (*Vault, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, errors.Wrap(err, "resolve vault root")
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, errors.Wrap(err, "open vault")
	}
	if !info.IsDir() {
		return nil, errors.Errorf("open vault: %s is not a directory", abs)
	}
	return &Vault{root: abs}, nil
}

func (v *Vault) Root() string {
	return v.root
}

// Rel converts a filesystem path into a vault-relative document path.
func (v *Vault) Rel(fullPath string) (string, error) {
	abs, err := filepath.Abs(fullPath)
	if err != nil {
		return "", errors.Wrap(err, "resolve path")
	}
	rel, err := filepath.Rel(v.root, abs)
	if err != nil {
		return "", errors.Wrap(err, "relative path")
	}
	rel = filepath.ToSlash(rel)
	if rel == ".." || strings.HasPrefix(rel, "../") {
		return "", ErrSandboxViolation
	}
	return rel, nil
}

// Document looks up an existing regular file.
func (v *Vault) Document(ctx context.Context, rel string) (Document, error) {
	if err := ctx.Err(); err != nil {
		return Document{}, err
	}
	clean, full, err := v.locate(rel)
	if err != nil {
		return Document{}, err
	}
	info, err := os.Stat(full)
	if err != nil {
		if os.IsNotExist(err) {
			return Document{}, errors.Wrapf(ErrNotFound, "%s", clean)
		}
		return Document{}, errors.Wrapf(err, "stat %s", clean)
	}
	if !info.Mode().IsRegular() {
		return Document{}, errors.Wrapf(ErrNotDocument, "%s", clean)
	}
	return newDocument(clean), nil
}

func (v *Vault) Read(ctx context.Context, doc Document) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	_, full, err := v.locate(doc.Path)
	if err != nil {
		return "", err
	}
	data, err := os.ReadFile(full)
	if err != nil {
		return "", errors.Wrapf(err, "read %s", doc.Path)
	}
	return string(data), nil
}

func (v *Vault) Exists(ctx context.Context, rel string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	_, full, err := v.locate(rel)
	if err != nil {
		return false, err
	}
	info, err := os.Stat(full)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, errors.Wrapf(err, "stat %s", rel)
	}
	return info.Mode().IsRegular(), nil
}

// Create writes a new document. Missing parent folders are created.
func (v *Vault) Create(ctx context.Context, rel, text string) (Document, error) {
	if err := ctx.Err(); err != nil {
		return Document{}, err
	}
	clean, full, err := v.locate(rel)
	if err != nil {
		return Document{}, err
	}
	if _, err := os.Stat(full); err == nil {
		return Document{}, errors.Wrapf(ErrExists, "%s", clean)
	}
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return Document{}, errors.Wrapf(err, "create folder for %s", clean)
	}
	if err := atomicWrite(full, []byte(text)); err != nil {
		return Document{}, errors.Wrapf(err, "create %s", clean)
	}
	return newDocument(clean), nil
}

func (v *Vault) Append(ctx context.Context, doc Document, text string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	_, full, err := v.locate(doc.Path)
	if err != nil {
		return err
	}
	file, err := os.OpenFile(full, os.O_APPEND|os.O_WRONLY, 0)
	if err != nil {
		if os.IsNotExist(err) {
			return errors.Wrapf(ErrNotFound, "%s", doc.Path)
		}
		return errors.Wrapf(err, "open %s", doc.Path)
	}
	if _, err := file.WriteString(text); err != nil {
		_ = file.Close()
		return errors.Wrapf(err, "append %s", doc.Path)
	}
	return errors.Wrapf(file.Close(), "close %s", doc.Path)
}

// ListChildren returns the regular files directly inside a collection,
// ordered by path.
func (v *Vault) ListChildren(ctx context.Context, collection string) ([]Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	dir := v.root
	prefix := ""
	if collection != "" {
		clean, full, err := v.locate(collection)
		if err != nil {
			return nil, err
		}
		dir = full
		prefix = clean + "/"
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, errors.Wrapf(err, "list %q", collection)
	}
	docs := make([]Document, 0, len(entries))
	for _, entry := range entries {
		if !entry.Type().IsRegular() || strings.HasPrefix(entry.Name(), ".") {
			continue
		}
		docs = append(docs, newDocument(prefix+entry.Name()))
	}
	sort.Slice(docs, func(i, j int) bool { return docs[i].Path < docs[j].Path })
	return docs, nil
}

// walk visits every visible regular file in the vault.
func (v *Vault) walk(fn func(rel string)) error {
	return filepath.WalkDir(v.root, func(full string, entry fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		name := entry.Name()
		if entry.IsDir() {
			if full != v.root && strings.HasPrefix(name, ".") {
				return filepath.SkipDir
			}
			return nil
		}
		if !entry.Type().IsRegular() || strings.HasPrefix(name, ".") {
			return nil
		}
		rel, relErr := filepath.Rel(v.root, full)
		if relErr != nil {
			return nil
		}
		fn(filepath.ToSlash(rel))
		return nil
	})
}

// locate validates a vault-relative path and maps it onto the filesystem.
func (v *Vault) locate(rel string) (string, string, error) {
	rel = strings.TrimSpace(rel)
	if rel == "" || strings.Contains(rel, "\\") || strings.ContainsRune(rel, 0) {
		return "", "", errors.Wrapf(ErrInvalidPath, "%q", rel)
	}
	clean := path.Clean(strings.TrimPrefix(rel, "/"))
	if clean == "." || clean == ".." || strings.HasPrefix(clean, "../") {
		return "", "", errors.Wrapf(ErrSandboxViolation, "%q", rel)
	}
	full := filepath.Join(v.root, filepath.FromSlash(clean))
	if !strings.HasPrefix(full, v.root+string(filepath.Separator)) {
		return "", "", errors.Wrapf(ErrSandboxViolation, "%q", rel)
	}
	return clean, full, nil
}

func atomicWrite(path string, data []byte) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".tmp")
	if err != nil {
		return err
	}
	name := tmp.Name()
	defer os.Remove(name)
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(name, path)
}
