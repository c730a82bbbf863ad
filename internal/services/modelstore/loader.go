package modelstore

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"emi-eligibility-engine/internal/config"
	"emi-eligibility-engine/internal/utils"
)

// Source fetches a named artifact.
type Source interface {
	Fetch(ctx context.Context, name string) ([]byte, error)
	String() string
}

// FileSource reads artifacts from a local directory.
type FileSource struct {
	Dir string
}

// NewFileSource creates a FileSource rooted at dir.
func NewFileSource(dir string) *FileSource {
	return &FileSource{Dir: dir}
}

// Fetch reads dir/name.
func (f *FileSource) Fetch(ctx context.Context, name string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(filepath.Join(f.Dir, name))
	if err != nil {
		return nil, fmt.Errorf("failed to read artifact: %w", err)
	}
	return data, nil
}

func (f *FileSource) String() string {
	return "file://" + f.Dir
}

// ArtifactNames are the object names of the three artifacts within a Source.
type ArtifactNames struct {
	Classifier   string
	Regressor    string
	LabelEncoder string
}

// NamesFromConfig returns the configured artifact names.
func NamesFromConfig(cfg *config.Config) ArtifactNames {
	clf, reg, enc := cfg.ArtifactNames()
	return ArtifactNames{Classifier: clf, Regressor: reg, LabelEncoder: enc}
}

// Bundle is the load-once, read-only model state shared by all requests.
type Bundle struct {
	Classifier   *LinearClassifier
	Regressor    *LinearRegressor
	LabelEncoder *LabelEncoder
	Source       string
	LoadedAt     time.Time
}

// Classes returns the eligibility labels in code order.
func (b *Bundle) Classes() []string {
	out := make([]string, len(b.LabelEncoder.Classes))
	copy(out, b.LabelEncoder.Classes)
	return out
}

// Load fetches, decodes and validates all three artifacts.
func Load(ctx context.Context, src Source, names ArtifactNames) (*Bundle, error) {
	logger := utils.GetLogger()

	var clf LinearClassifier
	if err := fetchJSON(ctx, src, names.Classifier, &clf); err != nil {
		return nil, err
	}
	if err := clf.Validate(); err != nil {
		return nil, fmt.Errorf("classifier %s: %w", names.Classifier, err)
	}

	var reg LinearRegressor
	if err := fetchJSON(ctx, src, names.Regressor, &reg); err != nil {
		return nil, err
	}
	if err := reg.Validate(); err != nil {
		return nil, fmt.Errorf("regressor %s: %w", names.Regressor, err)
	}

	var enc LabelEncoder
	if err := fetchJSON(ctx, src, names.LabelEncoder, &enc); err != nil {
		return nil, err
	}
	if err := enc.Validate(); err != nil {
		return nil, fmt.Errorf("label encoder %s: %w", names.LabelEncoder, err)
	}

	if len(enc.Classes) != clf.NumClasses() {
		return nil, fmt.Errorf("%w: label encoder has %d classes, classifier scores %d",
			ErrInvalidArtifact, len(enc.Classes), clf.NumClasses())
	}

	logger.Info("Loaded model artifacts",
		zap.String("source", src.String()),
		zap.Strings("classes", enc.Classes),
		zap.Int("classifier_features", len(clf.FeatureNamesIn)),
		zap.Int("regressor_features", len(reg.FeatureNamesIn)),
	)

	return &Bundle{
		Classifier:   &clf,
		Regressor:    &reg,
		LabelEncoder: &enc,
		Source:       src.String(),
		LoadedAt:     time.Now().UTC(),
	}, nil
}

// NewSource picks the artifact source named by the configuration.
func NewSource(ctx context.Context, cfg *config.Config) (Source, error) {
	switch cfg.ModelSource {
	case config.ModelSourceFile:
		return NewFileSource(cfg.ModelDir), nil
	case config.ModelSourceS3:
		return NewS3Source(ctx, cfg.AWSRegion, cfg.ModelBucket, cfg.ModelPrefix)
	default:
		return nil, fmt.Errorf("%w: %q", config.ErrUnknownModelSource, cfg.ModelSource)
	}
}

// LoadFromConfig is NewSource followed by Load.
func LoadFromConfig(ctx context.Context, cfg *config.Config) (*Bundle, error) {
	src, err := NewSource(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create artifact source: %w", err)
	}
	return Load(ctx, src, NamesFromConfig(cfg))
}

func fetchJSON(ctx context.Context, src Source, name string, into any) error {
	data, err := src.Fetch(ctx, name)
	if err != nil {
		return fmt.Errorf("failed to fetch %s from %s: %w", name, src, err)
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(into); err != nil {
		return fmt.Errorf("%w: failed to decode %s: %v", ErrInvalidArtifact, name, err)
	}
	return nil
}
