package extract

import (
	"fmt"
	"path/filepath"
	"strings"
)

// FileSource turns a local file into a Source by its extension. PDFs are
// converted to text up front; anything unrecognized is treated as text.
func FileSource(name string, content []byte) (Source, error) {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".pdf":
		text, err := textFromPDF(content)
		if err != nil {
			return Source{}, fmt.Errorf("failed to read pdf %s: %w", name, err)
		}
		return Source{Text: text}, nil
	case ".html", ".htm", ".xhtml":
		return Source{HTML: string(content)}, nil
	default:
		return Source{Text: string(content)}, nil
	}
}
