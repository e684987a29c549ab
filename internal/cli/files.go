// Copyright (c) 2022. Alvin Baena.
// SPDX-License-Identifier: MIT

package cli

import (
	"fmt"
	"os"
	"path/filepath"
)

// createOutFile creates path, refusing to replace an existing file unless
// overwrite is set.
func createOutFile(path string, overwrite bool) (*os.File, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("could not get absolute path of file: %w", err)
	}

	if !overwrite {
		if _, err = os.Stat(abs); err == nil {
			return nil, fmt.Errorf("file %s exists and overwrite flag is not set", abs)
		}
	}

	return os.Create(abs)
}
