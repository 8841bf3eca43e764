// Package driven provides interfaces for infrastructure adapters
// (secondary/outbound ports): storage, the similarity index, embedding and
// LLM providers, the web fetcher, and configuration.
package driven
