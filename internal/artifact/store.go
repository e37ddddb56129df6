// File path: internal/artifact/store.go
package artifact

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Artifact is one generated code deliverable persisted to disk. Content is
// stored in its own file; the index carries metadata only.
type Artifact struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Language    string    `json:"language"`
	Description string    `json:"description,omitempty"`
	Path        string    `json:"path"`
	Size        int       `json:"size"`
	CreatedAt   time.Time `json:"created_at"`
}

// Store persists artifacts under a single directory with a JSONL index.
type Store struct {
	root string
	mu   sync.RWMutex
}

var unsafeNameChars = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

func NewStore(root string) (*Store, error) {
	if strings.TrimSpace(root) == "" {
		return nil, errors.New("artifact dir required")
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("create artifact dir: %w", err)
	}
	return &Store{root: root}, nil
}

// Root returns the directory used for persistence.
func (s *Store) Root() string {
	if s == nil {
		return ""
	}
	return s.root
}

// Create writes the content file and appends the index entry. The artifact
// id doubles as the filename prefix so collisions between like-named
// deliverables cannot occur.
func (s *Store) Create(ctx context.Context, name, language, description, content string) (Artifact, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return Artifact{}, errors.New("artifact name required")
	}
	if content == "" {
		return Artifact{}, errors.New("artifact content required")
	}
	select {
	case <-ctx.Done():
		return Artifact{}, ctx.Err()
	default:
	}
	art := Artifact{
		ID:          uuid.NewString(),
		Name:        name,
		Language:    strings.ToLower(strings.TrimSpace(language)),
		Description: strings.TrimSpace(description),
		Size:        len(content),
		CreatedAt:   time.Now().UTC(),
	}
	if art.Language == "" {
		art.Language = "rpgle"
	}
	art.Path = filepath.Join(s.root, art.ID+"_"+sanitizeName(name))

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := os.WriteFile(art.Path, []byte(content), 0o644); err != nil {
		return Artifact{}, fmt.Errorf("write artifact: %w", err)
	}
	if err := s.appendIndex(art); err != nil {
		os.Remove(art.Path)
		return Artifact{}, err
	}
	return art, nil
}

// List returns all recorded artifacts, newest first.
func (s *Store) List(ctx context.Context) ([]Artifact, error) {
	if s == nil {
		return nil, errors.New("store not initialized")
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	file, err := os.Open(s.indexPath())
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("open artifact index: %w", err)
	}
	defer file.Close()
	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 64<<10), 1<<20)
	var arts []Artifact
	for scanner.Scan() {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		var art Artifact
		if err := json.Unmarshal(line, &art); err != nil {
			return nil, fmt.Errorf("decode artifact entry: %w", err)
		}
		arts = append(arts, art)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan artifact index: %w", err)
	}
	for i, j := 0, len(arts)-1; i < j; i, j = i+1, j-1 {
		arts[i], arts[j] = arts[j], arts[i]
	}
	return arts, nil
}

// Read loads the stored content for an artifact id.
func (s *Store) Read(ctx context.Context, id string) (Artifact, string, error) {
	arts, err := s.List(ctx)
	if err != nil {
		return Artifact{}, "", err
	}
	for _, art := range arts {
		if art.ID != id {
			continue
		}
		data, err := os.ReadFile(art.Path)
		if err != nil {
			return Artifact{}, "", fmt.Errorf("read artifact: %w", err)
		}
		return art, string(data), nil
	}
	return Artifact{}, "", fmt.Errorf("artifact %q not found", id)
}

func (s *Store) appendIndex(art Artifact) error {
	file, err := os.OpenFile(s.indexPath(), os.O_APPEND|os.O_WRONLY|os.O_CREATE, 0o644)
	if err != nil {
		return fmt.Errorf("open artifact index: %w", err)
	}
	defer file.Close()
	if err := json.NewEncoder(file).Encode(art); err != nil {
		return fmt.Errorf("encode artifact entry: %w", err)
	}
	return nil
}

func (s *Store) indexPath() string {
	return filepath.Join(s.root, "artifacts.jsonl")
}

func sanitizeName(name string) string {
	cleaned := unsafeNameChars.ReplaceAllString(filepath.Base(name), "_")
	cleaned = strings.Trim(cleaned, "._")
	if cleaned == "" {
		return "artifact"
	}
	return cleaned
}
