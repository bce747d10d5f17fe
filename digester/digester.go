package digester

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// Suffix is appended to an output path to name its digest
// file.
const Suffix = ".digest"

// Sum returns the SHA256 hex digest of content.
func Sum(content []byte) string {
	ha := sha256.Sum256(content)

	return hex.EncodeToString(ha[:])
}

// CalculateDigest computes the SHA256 hex digest of the file at
// path. Returns empty string with no error if the file does not
// exist.
func CalculateDigest(path string) (result string, retErr error) {
	const errCtx = "calculating digest"

	fi, err := os.Open(path) //nolint:gosec // path is caller-provided by design
	if errors.Is(err, os.ErrNotExist) {
		return "", nil
	}

	if err != nil {
		return "", fmt.Errorf("%s: %w", errCtx, err)
	}

	defer func() {
		if closeErr := fi.Close(); closeErr != nil && retErr == nil {
			retErr = fmt.Errorf("%s: %w", errCtx, closeErr)
		}
	}()

	ha := sha256.New()

	if _, err := io.Copy(ha, fi); err != nil {
		return "", fmt.Errorf("%s: %w", errCtx, err)
	}

	return hex.EncodeToString(ha.Sum(nil)), nil
}

// GetDigest reads the stored digest for path. Returns empty
// string with no error if there is none.
func GetDigest(path string) (string, error) {
	const errCtx = "getting stored digest"

	digest, err := os.ReadFile(path + Suffix) //nolint:gosec // path is caller-provided by design
	if errors.Is(err, os.ErrNotExist) {
		return "", nil
	}

	if err != nil {
		return "", fmt.Errorf("%s: %w", errCtx, err)
	}

	return string(digest), nil
}

// Unchanged reports whether the file at path already holds
// content and its stored digest agrees.
func Unchanged(path string, content []byte) (bool, error) {
	const errCtx = "checking digest"

	want := Sum(content)

	stored, err := GetDigest(path)
	if err != nil {
		return false, fmt.Errorf("%s: %w", errCtx, err)
	}

	if stored != want {
		return false, nil
	}

	calc, err := CalculateDigest(path)
	if err != nil {
		return false, fmt.Errorf("%s: %w", errCtx, err)
	}

	return calc == want, nil
}

// WriteIfChanged writes content to path together with its
// digest file, unless Unchanged holds. It reports whether
// anything was written.
func WriteIfChanged(
	path string,
	content []byte,
	perm os.FileMode,
) (bool, error) {
	const errCtx = "writing output"

	same, err := Unchanged(path, content)
	if err != nil {
		return false, fmt.Errorf("%s: %w", errCtx, err)
	}

	if same {
		return false, nil
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil { //nolint:gosec // output dirs are world readable
		return false, fmt.Errorf("%s: %w", errCtx, err)
	}

	if err := os.WriteFile(path, content, perm); err != nil {
		return false, fmt.Errorf("%s: %w", errCtx, err)
	}

	if err := os.WriteFile(
		path+Suffix, []byte(Sum(content)), 0o600,
	); err != nil {
		return false, fmt.Errorf("%s: %w", errCtx, err)
	}

	return true, nil
}
