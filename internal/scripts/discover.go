// SPDX-License-Identifier: MPL-2.0

package scripts

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/charlievieth/fastwalk"
)

// SourcePattern selects the files compiled from the staging root.
const SourcePattern = "**/*.{ts,js}"

const declarationSuffix = ".d.ts"

// Discover returns the slash-separated paths, relative to root, of every
// script source under root in lexical order. Declaration files are skipped.
func Discover(ctx context.Context, root string) ([]string, error) {
	var (
		mu    sync.Mutex
		files []string
	)

	conf := fastwalk.Config{Follow: false}
	err := fastwalk.Walk(&conf, root, func(p string, d os.DirEntry, err error) error {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}

		rel, err := filepath.Rel(root, p)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)
		if strings.HasSuffix(rel, declarationSuffix) {
			return nil
		}
		if ok, _ := doublestar.Match(SourcePattern, rel); !ok {
			return nil
		}

		mu.Lock()
		files = append(files, rel)
		mu.Unlock()
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan %s: %w", root, err)
	}

	slices.Sort(files)
	return files, nil
}
