// Package healthcheck monitors the availability of the upstream origin by
// probing it at a fixed interval and updating its health flag.
package healthcheck
