// SPDX-License-Identifier: MPL-2.0

// Package scripts compiles the script staging tree into the behavior pack.
//
// Every TypeScript or JavaScript file under the staging root is transformed
// independently into an ES module. A synthesized entry file imports each
// declared entrypoint. When bundling is enabled the per-file outputs are then
// bundled into a single scripts/index.js. A failing file never stops its
// siblings; the Result reports which files failed and whether a usable entry
// exists afterwards.
//
// Decorators compile, but decorator metadata is not emitted. Code that reads
// design:type or similar keys through reflect-metadata sees undefined.
package scripts
