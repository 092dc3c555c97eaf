package fs

import (
	"bytes"
	"context"
	"fmt"
	iofs "io/fs"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/aretw0/folio/pkg/core"
)

// DefaultSystemDir is the hidden directory holding the header index.
const DefaultSystemDir = ".folio"

// Repository implements core.Repository over a directory of content files.
type Repository struct {
	Path        string
	config      Config
	serializers map[string]Serializer
	cache       *cache

	mu            sync.RWMutex
	watcherActive bool
	lastScan      *time.Time
	lastScanDocs  int
}

// Config holds the configuration for the filesystem repository.
type Config struct {
	Path      string
	SystemDir string   // e.g. ".folio"
	Ignore    []string // doublestar patterns matched against slash-separated relative paths
	NoCache   bool     // disable the persistent header index
	Logger    *slog.Logger

	// ErrorHandler receives errors raised by background watchers.
	ErrorHandler func(error)
}

// NewRepository creates a new filesystem-backed repository.
func NewRepository(config Config) *Repository {
	if config.SystemDir == "" {
		config.SystemDir = DefaultSystemDir
	}
	if config.Logger == nil {
		config.Logger = slog.Default()
	}
	return &Repository{
		Path:        config.Path,
		config:      config,
		serializers: DefaultSerializers(),
		cache:       newCache(config.Path, config.SystemDir),
	}
}

// Initialize checks that the content root exists and that the ignore
// patterns are well formed.
func (r *Repository) Initialize(ctx context.Context) error {
	info, err := os.Stat(r.Path)
	if os.IsNotExist(err) {
		return fmt.Errorf("content path does not exist: %s", r.Path)
	}
	if err != nil {
		return fmt.Errorf("failed to stat content path: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("content path is not a directory: %s", r.Path)
	}
	for _, pattern := range r.config.Ignore {
		if !doublestar.ValidatePattern(pattern) {
			return fmt.Errorf("invalid ignore pattern %q", pattern)
		}
	}
	return nil
}

// Get retrieves a document by ID. The ID may carry an extension; without
// one, .md and then .markdown are tried.
//
// A file whose header cannot be parsed is returned with ParseErr set rather
// than as an error, so callers can report it as a contract violation.
func (r *Repository) Get(ctx context.Context, id string) (core.Document, error) {
	relPath, info, err := r.resolve(id)
	if err != nil {
		return core.Document{}, err
	}
	return r.readDocument(relPath, info), nil
}

// Raw returns the stored bytes of a document.
func (r *Repository) Raw(ctx context.Context, id string) ([]byte, error) {
	relPath, _, err := r.resolve(id)
	if err != nil {
		return nil, err
	}
	return os.ReadFile(filepath.Join(r.Path, filepath.FromSlash(relPath)))
}

// Encode renders doc using the serializer registered for its extension.
func (r *Repository) Encode(doc core.Document) ([]byte, error) {
	return r.serializerFor(r.pathFor(doc)).Serialize(doc)
}

// Save writes doc atomically, replacing the stored file.
func (r *Repository) Save(ctx context.Context, doc core.Document) error {
	if doc.ID == "" && doc.Path == "" {
		return core.ErrEmptyID
	}
	relPath := r.pathFor(doc)
	if !isLocal(relPath) {
		return fmt.Errorf("document path escapes content root: %s", relPath)
	}

	data, err := r.Encode(doc)
	if err != nil {
		return fmt.Errorf("failed to serialize document: %w", err)
	}

	fullPath := filepath.Join(r.Path, filepath.FromSlash(relPath))
	if err := os.MkdirAll(filepath.Dir(fullPath), 0755); err != nil {
		return fmt.Errorf("failed to create directories: %w", err)
	}
	if err := writeFileAtomic(fullPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write file: %w", err)
	}

	r.cache.Delete(relPath)
	r.config.Logger.Debug("document saved", "path", relPath)
	return nil
}

// List reads every document in the content tree, bodies included.
func (r *Repository) List(ctx context.Context) ([]core.Document, error) {
	var docs []core.Document
	err := r.walk(ctx, func(relPath string, info iofs.FileInfo) {
		docs = append(docs, r.readDocument(relPath, info))
	})
	if err != nil {
		return nil, err
	}
	r.recordScan(len(docs))
	return docs, nil
}

// Index returns every document with its header only.
//
// Strategy:
//  1. Load the header index from disk.
//  2. Walk the tree; for each file whose mtime and size match its entry,
//     use the cached header.
//  3. Otherwise parse the file and refresh its entry. Unparseable files are
//     never cached, so they are re-read and re-reported on every run.
//  4. Prune entries of vanished files and save the index back.
func (r *Repository) Index(ctx context.Context) ([]core.Document, error) {
	if r.config.NoCache {
		return r.List(ctx)
	}

	if err := r.cache.Load(); err != nil {
		r.config.Logger.Warn("header index unreadable, rebuilding", "error", err)
	}

	seen := make(map[string]bool)
	var docs []core.Document
	err := r.walk(ctx, func(relPath string, info iofs.FileInfo) {
		seen[relPath] = true

		if entry, hit := r.cache.Get(relPath, info.ModTime(), info.Size()); hit {
			docs = append(docs, core.Document{
				ID:       entry.ID,
				Path:     relPath,
				Format:   entry.Format,
				Metadata: core.Metadata(entry.Metadata),
				ModTime:  entry.LastModified,
			})
			return
		}

		doc := r.readDocument(relPath, info)
		if doc.ParseErr == nil {
			r.cache.Set(relPath, &indexEntry{
				ID:           doc.ID,
				Format:       doc.Format,
				Metadata:     doc.Metadata,
				LastModified: info.ModTime(),
				Size:         info.Size(),
			})
		}
		doc.Content = ""
		docs = append(docs, doc)
	})
	if err != nil {
		return nil, err
	}

	r.cache.Prune(seen)
	if err := r.cache.Save(); err != nil {
		r.config.Logger.Warn("failed to save header index", "path", r.cache.Path, "error", err)
	}

	r.recordScan(len(docs))
	return docs, nil
}

func (r *Repository) readDocument(relPath string, info iofs.FileInfo) core.Document {
	doc := core.Document{
		ID:      r.idFor(relPath),
		Path:    relPath,
		ModTime: info.ModTime(),
	}

	data, err := os.ReadFile(filepath.Join(r.Path, filepath.FromSlash(relPath)))
	if err != nil {
		doc.ParseErr = err
		return doc
	}

	parsed, err := r.serializerFor(relPath).Parse(bytes.NewReader(data))
	if err != nil {
		r.config.Logger.Debug("failed to parse document", "path", relPath, "error", err)
		doc.ParseErr = err
		return doc
	}

	doc.Format = parsed.Format
	doc.Metadata = parsed.Metadata
	doc.Content = parsed.Content
	return doc
}

// walk visits every content file under the root, skipping .git, the system
// directory, hidden directories, temp files and ignored paths.
func (r *Repository) walk(ctx context.Context, visit func(relPath string, info iofs.FileInfo)) error {
	return filepath.WalkDir(r.Path, func(fullPath string, d iofs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}

		relPath, err := filepath.Rel(r.Path, fullPath)
		if err != nil {
			return err
		}
		relPath = filepath.ToSlash(relPath)

		if d.IsDir() {
			if relPath == "." {
				return nil
			}
			if r.skipDir(d.Name()) || r.ignored(relPath) {
				return filepath.SkipDir
			}
			return nil
		}

		if !r.isContentFile(d.Name()) || r.ignored(relPath) {
			return nil
		}

		info, err := d.Info()
		if err != nil {
			// Vanished between listing and stat.
			return nil
		}
		visit(relPath, info)
		return nil
	})
}

func (r *Repository) skipDir(name string) bool {
	return name == ".git" || name == r.config.SystemDir || strings.HasPrefix(name, ".")
}

func (r *Repository) isContentFile(name string) bool {
	if isTempFile(name) {
		return false
	}
	_, ok := r.serializers[strings.ToLower(filepath.Ext(name))]
	return ok
}

func (r *Repository) ignored(relPath string) bool {
	for _, pattern := range r.config.Ignore {
		if ok, _ := doublestar.Match(pattern, relPath); ok {
			return true
		}
	}
	return false
}

// resolve maps an ID to an existing content file.
func (r *Repository) resolve(id string) (string, iofs.FileInfo, error) {
	if id == "" {
		return "", nil, core.ErrEmptyID
	}
	id = path.Clean(filepath.ToSlash(id))
	if !isLocal(id) {
		return "", nil, fmt.Errorf("%w: %s", core.ErrNotFound, id)
	}

	candidates := []string{id}
	if _, ok := r.serializers[strings.ToLower(path.Ext(id))]; !ok {
		candidates = []string{id + ".md", id + ".markdown"}
	}

	for _, c := range candidates {
		info, err := os.Stat(filepath.Join(r.Path, filepath.FromSlash(c)))
		if err == nil && !info.IsDir() {
			return c, info, nil
		}
		if err != nil && !os.IsNotExist(err) {
			return "", nil, err
		}
	}
	return "", nil, fmt.Errorf("%w: %s", core.ErrNotFound, id)
}

// idFor strips the content extension, so "posts/newcomb.md" is "posts/newcomb".
func (r *Repository) idFor(relPath string) string {
	ext := path.Ext(relPath)
	if _, ok := r.serializers[strings.ToLower(ext)]; ok {
		return strings.TrimSuffix(relPath, ext)
	}
	return relPath
}

func (r *Repository) pathFor(doc core.Document) string {
	if doc.Path != "" {
		return doc.Path
	}
	if _, ok := r.serializers[strings.ToLower(path.Ext(doc.ID))]; ok {
		return doc.ID
	}
	return doc.ID + ".md"
}

func (r *Repository) serializerFor(relPath string) Serializer {
	if s, ok := r.serializers[strings.ToLower(path.Ext(relPath))]; ok {
		return s
	}
	return r.serializers[".md"]
}

func isLocal(p string) bool {
	return p != "" && p != "." && !path.IsAbs(p) && p != ".." && !strings.HasPrefix(p, "../")
}

var (
	_ core.Repository = (*Repository)(nil)
	_ core.Watchable  = (*Repository)(nil)
)
