package icon

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/tidwall/gjson"
	"github.com/tidwall/pretty"
	"github.com/tidwall/sjson"
)

// Path is the manifest-relative location of the icon for size.
func Path(size int) string {
	return fmt.Sprintf("icons/icon%d.png", size)
}

var manifestStyle = &pretty.Options{Indent: "  "}

// PatchManifest replaces the manifest's icons map with one entry per size.
// Other keys keep their order and values.
func PatchManifest(manifest []byte, sizes []int) ([]byte, error) {
	if !gjson.ValidBytes(manifest) || !gjson.ParseBytes(manifest).IsObject() {
		return nil, fmt.Errorf("manifest is not a JSON object")
	}
	icons, err := iconsObject(sizes)
	if err != nil {
		return nil, err
	}
	out, err := sjson.SetRawBytes(manifest, "icons", icons)
	if err != nil {
		return nil, fmt.Errorf("failed to set icons: %w", err)
	}
	return pretty.PrettyOptions(out, manifestStyle), nil
}

// iconsObject keeps sizes in the order given; a Go map would not.
func iconsObject(sizes []int) ([]byte, error) {
	var b bytes.Buffer
	b.WriteByte('{')
	for i, size := range sizes {
		if i > 0 {
			b.WriteByte(',')
		}
		path, err := json.Marshal(Path(size))
		if err != nil {
			return nil, err
		}
		b.WriteString(strconv.Quote(strconv.Itoa(size)))
		b.WriteByte(':')
		b.Write(path)
	}
	b.WriteByte('}')
	return b.Bytes(), nil
}
