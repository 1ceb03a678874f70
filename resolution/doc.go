// Package resolution provides a minimal component registry used as the
// default dependency-resolution collaborator for pipeline builds. Components
// are registered by prototype type and optional name, with singleton or
// transient lifetimes. Any container can take its place by implementing
// interception.DependencyResolver.
package resolution
