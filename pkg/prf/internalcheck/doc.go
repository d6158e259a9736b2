// Package internalcheck holds static policy tests for the toolkit's own
// source: no == on byte slices (use crypto/subtle), no %x formatting of
// buffers that may hold secrets, and S-box tables read only through the
// constant-time lookup.
//
// # Internal Use Only
//
// This package has no exported API. Applications should import pkg/prf and
// its primitive subpackages instead.
package internalcheck
