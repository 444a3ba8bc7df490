// Package assets defines the asset-fetch contract consumed by the request
// handler, along with the filesystem and origin-backed implementations.
package assets
