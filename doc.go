// Package docd implements a document-editing service: JSON-RPC 2.0 tool
// calls over HTTP, backed by interchangeable document stores (S3-compatible
// object storage, a mounted volume, or a local directory) with a linear
// startup fallback chain.
//
// The library surface is Config plus NewServer; the docd command in
// cmd/docd wraps it with flag and environment configuration.
package docd
