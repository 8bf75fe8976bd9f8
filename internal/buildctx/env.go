// SPDX-License-Identifier: MPL-2.0

package buildctx

import (
	"errors"
	"fmt"

	"github.com/kelseyhightower/envconfig"
)

// ErrRootDirMissing is returned when neither ROOT_DIR nor an explicit root is available.
var ErrRootDirMissing = errors.New("ROOT_DIR environment variable not found")

// Env is the environment contract of a pipeline filter invocation.
type Env struct {
	// RootDir is the project root exported by the pipeline.
	RootDir string `envconfig:"ROOT_DIR"`
	// FilterDir is the directory the filter itself lives in. Informational only.
	FilterDir string `envconfig:"FILTER_DIR"`
}

// LoadEnv reads the filter environment from the process environment.
func LoadEnv() (Env, error) {
	var env Env
	if err := envconfig.Process("", &env); err != nil {
		return Env{}, fmt.Errorf("failed to read filter environment: %w", err)
	}
	return env, nil
}

// ResolveRoot returns override when set, otherwise the environment root.
func (e Env) ResolveRoot(override string) (string, error) {
	if override != "" {
		return override, nil
	}
	if e.RootDir == "" {
		return "", ErrRootDirMissing
	}
	return e.RootDir, nil
}
