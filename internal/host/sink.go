package host

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/dustin/go-humanize"
	"github.com/rs/zerolog"
)

// Sink receives the rendered container after an update.
type Sink interface {
	Write(b []byte) error
}

// FileSink replaces a file with each write. Readers never see a partial file.
type FileSink struct {
	Path string
	Log  zerolog.Logger
}

func (s *FileSink) Write(b []byte) error {
	dir := filepath.Dir(s.Path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(s.Path)+".*")
	if err != nil {
		return fmt.Errorf("error creating output file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(b); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("error writing output file: %w", err)
	}
	if err := tmp.Chmod(0o644); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Rename(tmp.Name(), s.Path); err != nil {
		return fmt.Errorf("error writing output file: %w", err)
	}
	s.Log.Info().Str("path", s.Path).Str("size", humanize.Bytes(uint64(len(b)))).Msg("output written")
	return nil
}
