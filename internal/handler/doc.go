// Package handler implements the main HTTP request handler for the gateway.
// It coordinates root-path normalization, asset fetching, and error handling.
package handler
