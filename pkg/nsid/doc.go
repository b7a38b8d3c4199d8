// SPDX-License-Identifier: MPL-2.0

// Package nsid converts package-relative datapack paths into namespaced
// identifiers of the form "namespace:path/segments".
//
// A datapack stores every callable unit under data/<namespace>/<category>/...,
// where the category scaffolding differs by artifact kind (functions sit one
// level below the namespace, function tags two). Normalize takes the index of
// the first path segment so each artifact kind can share the same rules.
package nsid
