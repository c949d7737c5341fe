// Command genicons renders the extension icons and updates manifest.json.
package main

import (
	"flag"
	"os"

	"summarai/internal/icon"
	"summarai/internal/logger"
)

func main() {
	dir := flag.String("dir", ".", "extension directory containing manifest.json")
	level := flag.String("log-level", "info", "log level")
	flag.Parse()

	log := logger.NewWithWriter(os.Stderr, *level, "text")
	if err := icon.Generate(log, *dir); err != nil {
		log.Error("icon generation failed", "err", err)
		os.Exit(1)
	}
}
