// Package registry provides a generic, thread-safe registry keyed by
// case-insensitive names. Pipelines are registered here by kind
// (install, delete, reinstall, import) and looked up by the orchestrator.
package registry
