package app

import (
	"context"

	"github.com/jovoneybrown2-dot/inspection-powered-by-zo-zi/internal/conf"
	"github.com/jovoneybrown2-dot/inspection-powered-by-zo-zi/internal/logger"
)

// Context carries build metadata and, once Load has run, the settings and
// logger shared by every command.
type Context struct {
	Version   string
	BuildDate string

	Settings *conf.Settings
	Logger   logger.Logger

	central *logger.CentralLogger
}

// NewContext returns a Context for the given build metadata.
func NewContext(version, buildDate string) *Context {
	return &Context{Version: version, BuildDate: buildDate}
}

// Load reads the configuration and starts the central logger. An empty
// configFile searches the default locations.
func (c *Context) Load(configFile string, debug bool) error {
	settings, err := conf.LoadFile(configFile)
	if err != nil {
		return err
	}
	settings.Version = c.Version
	settings.BuildDate = c.BuildDate
	if debug {
		settings.Debug = true
		settings.Logging.DefaultLevel = string(logger.LogLevelDebug)
		if settings.Logging.Console != nil {
			settings.Logging.Console.Level = string(logger.LogLevelDebug)
		}
	}

	central, err := logger.NewCentralLogger(&settings.Logging)
	if err != nil {
		return err
	}

	c.Settings = settings
	c.central = central
	c.Logger = central.Module("main")
	return nil
}

// Close flushes and closes the log outputs.
func (c *Context) Close() error {
	if c.central == nil {
		return nil
	}
	central := c.central
	c.central = nil
	_ = central.Flush()
	return central.Close()
}

// OpenServices opens the alerting services with the loaded settings.
func (c *Context) OpenServices(ctx context.Context) (*Services, error) {
	return Open(ctx, c.Settings, Options{Logger: c.Logger})
}
