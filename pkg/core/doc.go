// Package core provides the fundamental types and interfaces for dispatchq.
//
// This package contains:
//   - The Job data model with GORM annotations
//   - Storage and Queue interfaces defining the persistence and hand-off contracts
//   - Event types and the Broadcaster for lifecycle monitoring
//   - Error values shared across the module
//
// Most users should import the root package github.com/forgeworks/dispatchq
// instead of this package directly.
package core
