package repository

import (
	"context"
	"io"
	"time"

	"FinScreen/internal/domain/models"
)

// ExistingMode decides what happens when an artifact is already stored.
type ExistingMode string

const (
	ExistingSkip    ExistingMode = "skip"
	ExistingReplace ExistingMode = "replace"
)

type ArtifactStore interface {
	// Save writes the artifact content. stored is false when the artifact
	// already existed and the store runs in skip mode.
	Save(ctx context.Context, a models.Artifact, content io.Reader) (stored bool, err error)
	Exists(a models.Artifact) bool
	Mode() ExistingMode
	List(ctx context.Context) ([]models.Artifact, error)
	Open(a models.Artifact) (io.ReadCloser, error)
}

type Publisher interface {
	Publish(ctx context.Context, r *models.ScreeningResult) error
	PublishBatch(ctx context.Context, results []*models.ScreeningResult) error
	Close() error
}

type Storage interface {
	Init(ctx context.Context) error // ensure tables, health checks
	Store(ctx context.Context, r *models.ScreeningResult) error
	StoreBatch(ctx context.Context, results []*models.ScreeningResult) error
	Query(ctx context.Context, from time.Time, minRatio float64, industry string, limit int) ([]*models.ScreeningResult, error)
	Health(ctx context.Context) error // ping
	Close() error
}

type Metrics interface {
	RecordFiling(status string)
	RecordRejection(stage string)
	RecordResult(industry string)
	RecordError(kind string)
	RecordLatency(op string, seconds float64)
}
