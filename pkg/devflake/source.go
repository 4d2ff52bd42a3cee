package devflake

import (
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/ulikunitz/xz"
	"zombiezen.com/go/nix"
	"zombiezen.com/go/nix/nar"
)

// SourceHash returns the SRI sha256 of the NAR serialization of dir
func SourceHash(dir string) (string, error) {
	start := time.Now()

	h := nix.NewHasher(nix.SHA256)
	if err := nar.DumpPath(h, dir); err != nil {
		return "", fmt.Errorf("failed to serialize source tree (%s): %w", dir, err)
	}

	sum := h.SumHash().SRI()
	slog.Debug("hashed source tree", "dir", dir, "hash", sum, "took", time.Since(start).String())
	return sum, nil
}

// PackSource writes dir to w as an xz compressed NAR
func PackSource(dir string, w io.Writer) error {
	xw, err := xz.NewWriter(w)
	if err != nil {
		return fmt.Errorf("creating xz writer: %w", err)
	}

	if err := nar.DumpPath(xw, dir); err != nil {
		xw.Close()
		return fmt.Errorf("failed to serialize source tree (%s): %w", dir, err)
	}

	if err := xw.Close(); err != nil {
		return fmt.Errorf("finishing xz stream: %w", err)
	}
	return nil
}

// WithSourceHash fills in the source hash of a build output
func WithSourceHash(out BuildOutput) (BuildOutput, error) {
	sum, err := SourceHash(out.Source)
	if err != nil {
		return BuildOutput{}, err
	}
	out.SourceHash = sum
	return out, nil
}
