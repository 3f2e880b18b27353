// Command schema-generator writes the JSON Schemas remux publishes: the
// session record schema embedded in the binary and the configuration file
// schema for editors.
package main

import (
	"log"
	"os"
	"path/filepath"

	"github.com/grovetools/remux/config"
	"github.com/grovetools/remux/pkg/sessions"
)

type target struct {
	path     string
	generate func() ([]byte, error)
}

func main() {
	targets := []target{
		{path: "pkg/sessions/record.schema.json", generate: sessions.GenerateSchema},
		{path: "schema/remux.schema.json", generate: config.GenerateSchema},
	}

	for _, t := range targets {
		data, err := t.generate()
		if err != nil {
			log.Fatalf("Error generating %s: %v", t.path, err)
		}
		if err := os.MkdirAll(filepath.Dir(t.path), 0755); err != nil {
			log.Fatalf("Error creating directory for %s: %v", t.path, err)
		}
		if err := os.WriteFile(t.path, append(data, '\n'), 0644); err != nil {
			log.Fatalf("Error writing %s: %v", t.path, err)
		}
		log.Printf("Generated %s", t.path)
	}
}
