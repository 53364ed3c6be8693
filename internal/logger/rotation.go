package logger

import (
	"fmt"
	"io"
	"os"

	"gopkg.in/natefinch/lumberjack.v2"
)

// RotationConfig holds size-based rotation settings for one log file.
type RotationConfig struct {
	MaxSize         int // megabytes before rotation, 0 disables rotation
	MaxAge          int // days to keep rotated files, 0 keeps them forever
	MaxRotatedFiles int // rotated files to keep, 0 keeps all
	Compress        bool
}

// IsEnabled reports whether the file should be rotated at all.
func (r RotationConfig) IsEnabled() bool {
	return r.MaxSize > 0
}

// RotationConfigFromFileOutput returns the rotation settings of the main log file.
func RotationConfigFromFileOutput(fo *FileOutput) RotationConfig {
	if fo == nil {
		return RotationConfig{}
	}
	return RotationConfig{
		MaxSize:         fo.MaxSize,
		MaxAge:          fo.MaxAge,
		MaxRotatedFiles: fo.MaxRotatedFiles,
		Compress:        fo.Compress,
	}
}

// RotationConfigFromModuleOutput returns the rotation settings of a module
// file. Zero values fall back to the main file output.
func RotationConfigFromModuleOutput(mo *ModuleOutput, fo *FileOutput) RotationConfig {
	rc := RotationConfigFromFileOutput(fo)
	if mo == nil {
		return rc
	}
	if mo.MaxSize > 0 {
		rc.MaxSize = mo.MaxSize
	}
	if mo.MaxAge > 0 {
		rc.MaxAge = mo.MaxAge
	}
	if mo.MaxRotatedFiles > 0 {
		rc.MaxRotatedFiles = mo.MaxRotatedFiles
	}
	if mo.Compress != nil {
		rc.Compress = *mo.Compress
	}
	return rc
}

// logFile is an open log destination owned by the CentralLogger.
type logFile interface {
	io.Writer
	Sync() error
	Close() error
}

// rotatingFile adapts lumberjack to logFile. lumberjack writes through to
// the file without buffering, so Sync has nothing to do.
type rotatingFile struct {
	*lumberjack.Logger
}

func (rotatingFile) Sync() error { return nil }

// openLogFile opens path for appending, rotating it when rc is enabled.
func openLogFile(path string, rc RotationConfig) (logFile, error) {
	if err := ensureFileDirectory(path); err != nil {
		return nil, err
	}

	if rc.IsEnabled() {
		return rotatingFile{&lumberjack.Logger{
			Filename:   path,
			MaxSize:    rc.MaxSize,
			MaxAge:     rc.MaxAge,
			MaxBackups: rc.MaxRotatedFiles,
			Compress:   rc.Compress,
		}}, nil
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, logFilePermissions)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file %s: %w", path, err)
	}
	return f, nil
}
