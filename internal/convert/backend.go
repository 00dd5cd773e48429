// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package convert

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/pdiddy/pdfmerge/internal/container"
	"github.com/pdiddy/pdfmerge/pkg/types"
)

// SelectLauncher returns the Word backend named by cfg.Backend. With "auto"
// it prefers LibreOffice, then the conversion container, and falls back to a
// launcher that reports the capability as unsupported.
func SelectLauncher(cfg types.WordConfig, logger *zap.Logger) (Launcher, error) {
	return selectLauncher(cfg, NewLibreOfficeLauncher(), container.DetectRuntime, logger)
}

func selectLauncher(cfg types.WordConfig, office *LibreOfficeLauncher, detect func() (container.Runtime, error), logger *zap.Logger) (Launcher, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	cfg = types.MergeConfig{Word: cfg}.Defaults().Word

	switch cfg.Backend {
	case types.WordBackendLibreOffice:
		return office, nil

	case types.WordBackendContainer:
		rt, err := detect()
		if err != nil {
			return Unsupported(err.Error()), nil
		}
		return NewContainerLauncher(rt, cfg.ContainerImage), nil

	case types.WordBackendNone:
		return Unsupported("word conversion disabled"), nil

	case types.WordBackendAuto:
		if office.Available() {
			logger.Debug("word backend selected", zap.String("backend", office.Name()))
			return office, nil
		}
		rt, err := detect()
		if err != nil {
			logger.Debug("no container runtime for word conversion", zap.Error(err))
			return Unsupported("no LibreOffice installation or container runtime found"), nil
		}
		if err := rt.ImageExists(cfg.ContainerImage); err != nil {
			logger.Debug("word conversion image missing", zap.Error(err))
			return Unsupported("no LibreOffice installation or conversion image found"), nil
		}
		l := NewContainerLauncher(rt, cfg.ContainerImage)
		logger.Debug("word backend selected", zap.String("backend", l.Name()))
		return l, nil
	}

	return nil, fmt.Errorf("unknown word backend %q: use auto, libreoffice, container, or none", cfg.Backend)
}
