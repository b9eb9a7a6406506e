package buildinfo

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSetAndGetters(t *testing.T) {
	Set("1.2.3", "abc123", "2026-01-01", "ci")

	assert.Equal(t, "1.2.3", Version())
	assert.Equal(t, "abc123", Commit())
	assert.Equal(t, "2026-01-01", Date())
	assert.Equal(t, "ci", BuiltBy())
}

func TestEnrichFillsDefaults(t *testing.T) {
	Set("dev", "none", "unknown", "unknown")
	Enrich()
	assert.NotEqual(t, "unknown", BuiltBy())
}

func TestEnrichPreservesExplicitValues(t *testing.T) {
	Set("v1.0.0", "deadbeef", "2026-06-01", "goreleaser")
	Enrich()

	assert.Equal(t, "deadbeef", Commit())
	assert.Equal(t, "goreleaser", BuiltBy())
}

func TestString(t *testing.T) {
	Set("v0.3.0", "0123456789abcdef", "2026-10-01", "ci")
	assert.Equal(t, "gitix v0.3.0 (commit 0123456, built 2026-10-01 by ci)", String())

	Set("dev", "none", "unknown", "unknown")
	assert.Equal(t, "gitix dev (commit none, built unknown by unknown)", String())
}
