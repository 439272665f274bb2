// Package sinks picks the upload.Sink named by the configuration.
package sinks

import (
	"fmt"

	"github.com/aanand-mishra/schools-api/internal/config"
	"github.com/aanand-mishra/schools-api/internal/upload"
	"github.com/aanand-mishra/schools-api/internal/upload/local"
	"github.com/aanand-mishra/schools-api/internal/upload/s3"
)

// New returns the sink for cfg.Upload.Mode.
func New(cfg *config.Config) (upload.Sink, error) {
	switch cfg.Upload.Mode {
	case config.UploadModeLocal:
		return local.New(cfg.Upload.Dir, cfg.Upload.URLPrefix), nil
	case config.UploadModeRemote:
		sink, err := s3.New(cfg.S3)
		if err != nil {
			return nil, err
		}
		return sink, nil
	default:
		return nil, fmt.Errorf("sinks.New: unknown upload mode %q", cfg.Upload.Mode)
	}
}
