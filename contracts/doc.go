// Package contracts defines the shared types of the interception engine:
// method descriptors and their canonical identities, the invocation record
// that travels through interceptor pipelines, and the error taxonomy every
// layer agrees on.
//
// Identity is the lookup key for everything: it is structural (built from
// the declaring type name, method name and parameter signature, never from
// reflective handle identity), and generic instantiations of one declaring
// type share a single identity.
package contracts
