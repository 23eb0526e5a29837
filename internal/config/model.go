package config

import (
	"context"
	"time"

	"github.com/vk/pixel/internal/palette"
)

// Loader reads a settings file into the format-agnostic File model.
type Loader interface {
	Load(ctx context.Context, path string) (*File, error)
}

// File is the decoded settings file. Zero values mean "not set".
type File struct {
	// PalettesDir is resolved against the settings file's directory.
	PalettesDir string
	LogLevel    string
	LogFormat   string
	NotifyURL   string
	Notify      Notify
	Defaults    Defaults
	// Palettes declared inline; they override directory palettes of the same name.
	Palettes []*palette.Palette
}

// Defaults are per-image options used when the command line leaves them unset.
type Defaults struct {
	Palette   string
	Colors    int
	PixelSize int
	Dither    bool
	Format    string
}

// Notify tunes the socket.io connection used for batch progress events.
type Notify struct {
	Namespace          string
	InsecureSkipVerify bool
	// Timeout bounds the connection handshake; zero means the notifier's default.
	Timeout time.Duration
}
