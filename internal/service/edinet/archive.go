package edinet

import (
	"archive/zip"
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"
)

// ErrInstanceTooLarge is returned when the XBRL member exceeds maxInstanceBytes.
var ErrInstanceTooLarge = errors.New("edinet: xbrl instance too large")

// Real instances are a few MB; anything near this is not an annual report.
var maxInstanceBytes int64 = 256 << 20

// ExtractPublicInstance returns the first archive member whose name contains
// both "PublicDoc" and ".xbrl", in archive order, with its name.
func ExtractPublicInstance(archive []byte) ([]byte, string, error) {
	zr, err := zip.NewReader(bytes.NewReader(archive), int64(len(archive)))
	if err != nil {
		// The API answers unavailable documents with a JSON body.
		return nil, "", fmt.Errorf("%w: not an archive: %v", ErrDocumentUnavailable, err)
	}

	for _, f := range zr.File {
		if !strings.Contains(f.Name, "PublicDoc") || !strings.Contains(f.Name, ".xbrl") {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return nil, "", fmt.Errorf("open %s: %w", f.Name, err)
		}
		content, err := io.ReadAll(io.LimitReader(rc, maxInstanceBytes+1))
		rc.Close()
		if err != nil {
			return nil, "", fmt.Errorf("read %s: %w", f.Name, err)
		}
		if int64(len(content)) > maxInstanceBytes {
			return nil, "", fmt.Errorf("%w: %s exceeds %d bytes", ErrInstanceTooLarge, f.Name, maxInstanceBytes)
		}
		return content, f.Name, nil
	}
	return nil, "", ErrPublicDocNotFound
}
