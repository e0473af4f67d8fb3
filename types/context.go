package types

import (
	"go.uber.org/zap"

	"github.com/lepinkainen/videolabeler/config"
)

// DefaultVersion is the fallback version when AppContext is nil
const DefaultVersion = "dev"

// AppContext holds application-wide context information passed to commands
type AppContext struct {
	Version string
	Config  *config.Config
	Logger  *zap.Logger
}

// VersionOrDefault returns the version, tolerating a nil context
func (a *AppContext) VersionOrDefault() string {
	if a == nil || a.Version == "" {
		return DefaultVersion
	}
	return a.Version
}

// Log returns the logger, or a no-op logger when none is set
func (a *AppContext) Log() *zap.Logger {
	if a == nil || a.Logger == nil {
		return zap.NewNop()
	}
	return a.Logger
}
