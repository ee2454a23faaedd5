package repository

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/afero"

	"FinScreen/internal/domain/models"
	"FinScreen/internal/domain/repository"
)

const artifactExt = ".xbrl"

// FileArtifactStore keeps one XBRL file per filing in a single directory.
type FileArtifactStore struct {
	fs   afero.Fs
	dir  string
	mode repository.ExistingMode
}

var _ repository.ArtifactStore = (*FileArtifactStore)(nil)

// NewFileArtifactStore creates the directory if needed. A nil fs means the
// OS filesystem.
func NewFileArtifactStore(fs afero.Fs, dir string, mode repository.ExistingMode) (*FileArtifactStore, error) {
	if fs == nil {
		fs = afero.NewOsFs()
	}
	switch mode {
	case repository.ExistingSkip, repository.ExistingReplace:
	default:
		return nil, fmt.Errorf("unknown existing-file mode %q", mode)
	}
	if err := fs.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create storage dir: %w", err)
	}
	return &FileArtifactStore{fs: fs, dir: dir, mode: mode}, nil
}

// ArtifactName is "{edinetCode}_{submitDateTime}_{docID}.xbrl".
func ArtifactName(a models.Artifact) string {
	return a.EdinetCode + "_" + a.SubmitDateTime + "_" + a.DocID + artifactExt
}

// ParseArtifactName reverses ArtifactName. The submit time may itself
// contain spaces and colons but never underscores.
func ParseArtifactName(name string) (models.Artifact, bool) {
	base, ok := strings.CutSuffix(name, artifactExt)
	if !ok {
		return models.Artifact{}, false
	}
	first := strings.Index(base, "_")
	last := strings.LastIndex(base, "_")
	if first <= 0 || last == first || last == len(base)-1 {
		return models.Artifact{}, false
	}
	return models.Artifact{
		EdinetCode:     base[:first],
		SubmitDateTime: base[first+1 : last],
		DocID:          base[last+1:],
	}, true
}

func (s *FileArtifactStore) Mode() repository.ExistingMode { return s.mode }

func (s *FileArtifactStore) pathOf(a models.Artifact) string {
	if a.Path != "" {
		return a.Path
	}
	return filepath.Join(s.dir, ArtifactName(a))
}

func (s *FileArtifactStore) Exists(a models.Artifact) bool {
	ok, err := afero.Exists(s.fs, s.pathOf(a))
	return err == nil && ok
}

// Save writes through a temporary file and renames it into place, so a
// crashed download never leaves a truncated artifact behind.
func (s *FileArtifactStore) Save(ctx context.Context, a models.Artifact, content io.Reader) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	dst := s.pathOf(a)
	// replace mode keeps the old file until the rename below swaps it out
	if s.mode == repository.ExistingSkip && s.Exists(a) {
		return false, nil
	}

	tmp, err := afero.TempFile(s.fs, s.dir, ".partial-*")
	if err != nil {
		return false, fmt.Errorf("create temp artifact: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := io.Copy(tmp, content); err != nil {
		tmp.Close()
		_ = s.fs.Remove(tmpName)
		return false, fmt.Errorf("write artifact: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = s.fs.Remove(tmpName)
		return false, fmt.Errorf("close artifact: %w", err)
	}
	if err := s.fs.Rename(tmpName, dst); err != nil {
		_ = s.fs.Remove(tmpName)
		return false, fmt.Errorf("rename artifact: %w", err)
	}
	return true, nil
}

// List returns stored artifacts sorted by file name. Files that do not follow
// the naming scheme are ignored.
func (s *FileArtifactStore) List(ctx context.Context) ([]models.Artifact, error) {
	entries, err := afero.ReadDir(s.fs, s.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read storage dir: %w", err)
	}

	var out []models.Artifact
	for _, e := range entries {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if e.IsDir() {
			continue
		}
		a, ok := ParseArtifactName(e.Name())
		if !ok {
			continue
		}
		a.Path = filepath.Join(s.dir, e.Name())
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Path < out[j].Path })
	return out, nil
}

func (s *FileArtifactStore) Open(a models.Artifact) (io.ReadCloser, error) {
	f, err := s.fs.Open(s.pathOf(a))
	if err != nil {
		return nil, fmt.Errorf("open artifact: %w", err)
	}
	return f, nil
}
