// Package identity canonicalizes vendor product codes and generates
// globally unique canonical identifiers backed by an atomic registry.
package identity
