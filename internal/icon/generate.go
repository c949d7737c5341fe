package icon

import (
	"bytes"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
)

// Generate writes every icon under dir/icons and patches dir/manifest.json.
func Generate(log *slog.Logger, dir string) error {
	iconsDir := filepath.Join(dir, "icons")
	if err := os.MkdirAll(iconsDir, 0o755); err != nil {
		return fmt.Errorf("failed to create icons dir: %w", err)
	}
	for _, size := range Sizes {
		var buf bytes.Buffer
		if err := Encode(&buf, size); err != nil {
			return fmt.Errorf("failed to render %dpx icon: %w", size, err)
		}
		if err := os.WriteFile(filepath.Join(dir, Path(size)), buf.Bytes(), 0o644); err != nil {
			return fmt.Errorf("failed to write %dpx icon: %w", size, err)
		}
		log.Info("generated icon", "size", size, "path", Path(size))
	}

	manifestPath := filepath.Join(dir, "manifest.json")
	raw, err := os.ReadFile(manifestPath)
	if err != nil {
		return fmt.Errorf("failed to read manifest: %w", err)
	}
	patched, err := PatchManifest(raw, Sizes)
	if err != nil {
		return err
	}
	if err := os.WriteFile(manifestPath, patched, 0o644); err != nil {
		return fmt.Errorf("failed to write manifest: %w", err)
	}
	log.Info("updated manifest icon paths", "path", manifestPath)
	return nil
}
