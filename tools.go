//go:build tools

package tools

// mockery v3 runs as an installed binary, so nothing is imported here.
// Run mockery from the module root to regenerate pkg/wrangler/mocks.
