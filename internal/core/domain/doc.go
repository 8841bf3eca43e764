// Package domain contains the core business entities and rules for the
// inkwell content library: document versions, feedback events, and the
// learned ranking model. It has no dependencies on adapters or frameworks.
package domain
