// SPDX-License-Identifier: MPL-2.0

// Package buildctx defines the immutable context of one packaging run.
//
// The context is constructed once at process entry from the pipeline
// environment (ROOT_DIR, FILTER_DIR) or an explicit root, and every path the
// build touches is derived from it as an absolute path. Nothing in the build
// changes the process working directory.
package buildctx
