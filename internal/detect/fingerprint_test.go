package detect

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestManifestHash(t *testing.T) {
	root := t.TempDir()
	assert.Equal(t, "sha256:empty", ManifestHash(root), "missing manifest hashes as empty")

	writeFile(t, root, "package.json", `{"dependencies":{"react":"^18.2.0"}}`)
	h1 := ManifestHash(root)
	assert.NotEqual(t, "sha256:empty", h1)
	assert.Equal(t, h1, ManifestHash(root), "same content must hash identically")

	writeFile(t, root, "package.json", `{"dependencies":{"vue":"^3.4.0"}}`)
	assert.NotEqual(t, h1, ManifestHash(root), "changed manifest must change the hash")
}
