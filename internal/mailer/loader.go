package mailer

import (
	"context"
	"embed"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
)

//go:embed templates/*.tmpl
var embedded embed.FS

// Template names.
const (
	TemplateOTP               = "otp.tmpl"
	TemplateOrderConfirmation = "order_confirmation.tmpl"
)

// Loader reads the source of a named template.
type Loader interface {
	Load(ctx context.Context, name string) (string, error)
}

type embeddedLoader struct{}

// NewEmbeddedLoader serves the templates compiled into the binary.
func NewEmbeddedLoader() Loader {
	return embeddedLoader{}
}

func (embeddedLoader) Load(_ context.Context, name string) (string, error) {
	b, err := embedded.ReadFile("templates/" + name)
	if err != nil {
		return "", fmt.Errorf("no embedded template %s: %w", name, err)
	}
	return string(b), nil
}

type fileLoader struct {
	dir    string
	logger zerolog.Logger
}

// NewFileLoader reads templates from dir.
func NewFileLoader(dir string, logger zerolog.Logger) Loader {
	return &fileLoader{
		dir:    dir,
		logger: logger.With().Str("component", "template-loader").Logger(),
	}
}

func (l *fileLoader) Load(_ context.Context, name string) (string, error) {
	path := filepath.Join(l.dir, name)
	b, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read template %s: %w", path, err)
	}

	l.logger.Debug().Str("file", path).Msg("template loaded")
	return string(b), nil
}

// chainLoader tries each loader in order and returns the first hit.
type chainLoader struct {
	loaders []Loader
	logger  zerolog.Logger
}

// NewChainLoader builds a loader that falls through loaders in order. Nil
// entries are skipped.
func NewChainLoader(logger zerolog.Logger, loaders ...Loader) Loader {
	kept := make([]Loader, 0, len(loaders))
	for _, l := range loaders {
		if l != nil {
			kept = append(kept, l)
		}
	}
	return &chainLoader{
		loaders: kept,
		logger:  logger.With().Str("component", "template-loader").Logger(),
	}
}

func (l *chainLoader) Load(ctx context.Context, name string) (string, error) {
	var lastErr error
	for _, loader := range l.loaders {
		src, err := loader.Load(ctx, name)
		if err == nil {
			return src, nil
		}
		l.logger.Debug().Err(err).Str("template", name).Msg("template source missed, trying next")
		lastErr = err
	}
	if lastErr == nil {
		lastErr = fmt.Errorf("no template loaders configured")
	}
	return "", fmt.Errorf("template %s not found: %w", name, lastErr)
}
