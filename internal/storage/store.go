package storage

import (
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/minio/highwayhash"
	"github.com/zeebo/blake3"

	"github.com/san-kum/asciimate/internal/anim"
	"github.com/san-kum/asciimate/internal/format"
	"github.com/san-kum/asciimate/internal/ramp"
)

const (
	metadataFile  = "metadata.json"
	animationFile = "animation.asci"
)

var (
	ErrNotFound       = errors.New("storage: no such animation")
	ErrAmbiguous      = errors.New("storage: id prefix matches several animations")
	ErrDigestMismatch = errors.New("storage: animation digest mismatch")
)

// idKey keys the short content hash used for IDs. Changing it changes
// every ID in existing libraries.
var idKey = [32]byte{
	'a', 's', 'c', 'i', 'i', 'm', 'a', 't', 'e', '-', 'l', 'i', 'b', 'r', 'a', 'r',
	'y', '-', 'i', 'd', '-', 'k', 'e', 'y', '-', 'v', '1', 0, 0, 0, 0, 0,
}

// Store keeps one directory per animation under baseDir, holding
// metadata.json and the binary stream.
type Store struct {
	baseDir string
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

func (s *Store) Dir() string { return s.baseDir }

type Metadata struct {
	ID        string             `json:"id"`
	Name      string             `json:"name"`
	Source    string             `json:"source,omitempty"`
	Timestamp time.Time          `json:"timestamp"`
	Cols      uint16             `json:"cols"`
	Rows      uint16             `json:"rows"`
	FPS       uint8              `json:"fps"`
	Frames    uint16             `json:"frames"`
	Duration  float64            `json:"duration"`
	ColorMode string             `json:"color_mode"`
	Ramp      string             `json:"ramp"`
	Bytes     int                `json:"bytes"`
	Digest    string             `json:"digest"`
	Metrics   map[string]float64 `json:"metrics,omitempty"`
}

// Save writes a into the library and returns its ID. Saving identical
// content under the same name yields the same ID.
func (s *Store) Save(name, source string, a *anim.Animation, metrics map[string]float64) (string, error) {
	data, err := format.Marshal(a)
	if err != nil {
		return "", err
	}
	id, err := contentID(name, data)
	if err != nil {
		return "", err
	}
	dir := filepath.Join(s.baseDir, id)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", err
	}

	m := a.Meta
	meta := Metadata{
		ID:        id,
		Name:      name,
		Source:    source,
		Timestamp: time.Now(),
		Cols:      m.Cols,
		Rows:      m.Rows,
		FPS:       m.FPS,
		Frames:    m.FrameCount,
		Duration:  m.Duration(),
		ColorMode: m.ColorMode.String(),
		Ramp:      ramp.Ramp(m.Ramp).String(),
		Bytes:     len(data),
		Digest:    digest(data),
		Metrics:   metrics,
	}

	if err := os.WriteFile(filepath.Join(dir, animationFile), data, 0644); err != nil {
		return "", err
	}

	metaFile, err := os.Create(filepath.Join(dir, metadataFile))
	if err != nil {
		return "", err
	}
	enc := json.NewEncoder(metaFile)
	enc.SetIndent("", "  ")
	if err := enc.Encode(meta); err != nil {
		metaFile.Close()
		return "", err
	}
	if err := metaFile.Close(); err != nil {
		return "", fmt.Errorf("write metadata for %s: %w", id, err)
	}
	return id, nil
}

func contentID(name string, data []byte) (string, error) {
	h, err := highwayhash.New64(idKey[:])
	if err != nil {
		return "", err
	}
	h.Write(data)
	return fmt.Sprintf("%s_%010x", slug(name), h.Sum64()&0xffffffffff), nil
}

func digest(data []byte) string {
	h := blake3.New()
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

func slug(name string) string {
	var sb strings.Builder
	for _, r := range strings.ToLower(name) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			sb.WriteRune(r)
		case r == '-' || r == '_' || r == '.' || r == ' ':
			sb.WriteByte('-')
		}
	}
	s := strings.Trim(sb.String(), "-")
	if s == "" {
		return "anim"
	}
	return s
}

// List returns every readable entry, newest first.
func (s *Store) List() ([]Metadata, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []Metadata{}, nil
		}
		return nil, err
	}

	out := make([]Metadata, 0)
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		meta, err := s.Load(entry.Name())
		if err != nil {
			continue
		}
		out = append(out, *meta)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Timestamp.After(out[j].Timestamp) })
	return out, nil
}

func (s *Store) Load(id string) (*Metadata, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, id, metadataFile))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
		}
		return nil, err
	}
	var meta Metadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, err
	}
	return &meta, nil
}

// Find resolves an exact ID or a unique ID prefix.
func (s *Store) Find(ref string) (*Metadata, error) {
	if meta, err := s.Load(ref); err == nil {
		return meta, nil
	}
	all, err := s.List()
	if err != nil {
		return nil, err
	}
	var match *Metadata
	for i := range all {
		if strings.HasPrefix(all[i].ID, ref) {
			if match != nil {
				return nil, fmt.Errorf("%w: %s", ErrAmbiguous, ref)
			}
			match = &all[i]
		}
	}
	if match == nil {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, ref)
	}
	return match, nil
}

// LoadAnimation reads and verifies the stream stored under id.
func (s *Store) LoadAnimation(id string) (*anim.Animation, *Metadata, error) {
	meta, err := s.Find(id)
	if err != nil {
		return nil, nil, err
	}
	data, err := os.ReadFile(filepath.Join(s.baseDir, meta.ID, animationFile))
	if err != nil {
		return nil, nil, err
	}
	if meta.Digest != "" && digest(data) != meta.Digest {
		return nil, nil, fmt.Errorf("%w: %s", ErrDigestMismatch, meta.ID)
	}
	a, err := format.Unmarshal(data)
	if err != nil {
		return nil, nil, fmt.Errorf("%s: %w", meta.ID, err)
	}
	return a, meta, nil
}

// Open loads ref as a file path if one exists, otherwise as a library ID.
func (s *Store) Open(ref string) (*anim.Animation, string, error) {
	if _, err := os.Stat(ref); err == nil {
		a, _, err := format.Load(ref)
		return a, filepath.Base(ref), err
	}
	a, meta, err := s.LoadAnimation(ref)
	if err != nil {
		return nil, "", err
	}
	return a, meta.Name, nil
}

func (s *Store) Delete(id string) error {
	meta, err := s.Find(id)
	if err != nil {
		return err
	}
	return os.RemoveAll(filepath.Join(s.baseDir, meta.ID))
}

// WriteTable prints entries as aligned columns.
func WriteTable(w io.Writer, entries []Metadata) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tGRID\tFRAMES\tFPS\tCOLOR\tSIZE\tCREATED")
	for _, e := range entries {
		fmt.Fprintf(tw, "%s\t%s\t%dx%d\t%d\t%d\t%s\t%d\t%s\n",
			e.ID, e.Name, e.Cols, e.Rows, e.Frames, e.FPS, e.ColorMode, e.Bytes,
			e.Timestamp.Format("2006-01-02 15:04"))
	}
	return tw.Flush()
}
