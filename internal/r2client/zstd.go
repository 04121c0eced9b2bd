package r2client

import (
	"fmt"
	"io"

	"github.com/klauspost/compress/zstd"
)

// ContentTypeZstd is the content type of compressed backups.
const ContentTypeZstd = "application/zstd"

// Compress streams src into dst as zstd.
func Compress(dst io.Writer, src io.Reader) error {
	enc, err := zstd.NewWriter(dst, zstd.WithEncoderLevel(zstd.SpeedBetterCompression))
	if err != nil {
		return fmt.Errorf("compress: create encoder: %w", err)
	}
	if _, err := io.Copy(enc, src); err != nil {
		_ = enc.Close()
		return fmt.Errorf("compress: %w", err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("compress: flush: %w", err)
	}
	return nil
}

// Decompress streams zstd data from src into dst.
func Decompress(dst io.Writer, src io.Reader) error {
	dec, err := zstd.NewReader(src)
	if err != nil {
		return fmt.Errorf("decompress: create decoder: %w", err)
	}
	defer dec.Close()

	if _, err := io.Copy(dst, dec); err != nil {
		return fmt.Errorf("decompress: %w", err)
	}
	return nil
}
