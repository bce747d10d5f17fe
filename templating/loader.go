package templating

import (
	"fmt"
	"io/fs"
	"os"
)

// Loader reads template bodies. A zero Loader reads from
// the OS filesystem, relative to the working directory.
type Loader struct {
	FS fs.FS
}

// Load returns the template body at locator.
func (ld Loader) Load(locator string) (string, error) {
	const errCtx = "loading template"

	var (
		content []byte
		err     error
	)

	if ld.FS != nil {
		content, err = fs.ReadFile(ld.FS, locator)
	} else {
		content, err = os.ReadFile(locator) //nolint:gosec // locators come from stage configuration
	}

	if err != nil {
		return "", fmt.Errorf("%s: %w", errCtx, err)
	}

	return string(content), nil
}
