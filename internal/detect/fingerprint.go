package detect

import (
	"crypto/sha256"
	"encoding/hex"
	"os"
	"path/filepath"
)

// ManifestHash fingerprints the project's package.json for history keying
// and cache invalidation. An absent or unreadable manifest hashes as empty
// rather than erroring, so manifest-less projects still get a stable key.
func ManifestHash(root string) string {
	data, err := os.ReadFile(filepath.Join(root, "package.json"))
	if err != nil || len(data) == 0 {
		return "sha256:empty"
	}
	sum := sha256.Sum256(data)
	return "sha256:" + hex.EncodeToString(sum[:])
}
