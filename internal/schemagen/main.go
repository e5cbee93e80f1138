package main

import (
	"flag"
	"log"
	"os"
	"path/filepath"

	"github.com/macropower/kls/pkg/config"
	"github.com/macropower/kls/pkg/yaml"
)

var (
	outFile = flag.String("o", "schema.json", "Output file for the generated schema")
	rootDir = flag.String("root", "../..", "Module root, relative to the working directory")
)

func main() {
	flag.Parse()

	out, err := filepath.Abs(*outFile)
	if err != nil {
		log.Fatalf("resolve output path: %v", err)
	}

	// Go comments are keyed by package path, so they must be read from the module root.
	err = os.Chdir(*rootDir)
	if err != nil {
		log.Fatalf("change to module root: %v", err)
	}

	gen := yaml.NewSchemaGenerator(config.New(),
		"github.com/macropower/kls/api/v1beta1",
		"github.com/macropower/kls/pkg/config",
		"github.com/macropower/kls/pkg/rule",
	)

	jsData, err := gen.Generate()
	if err != nil {
		log.Fatalf("generate JSON schema: %v", err)
	}

	// Write schema.json file.
	err = os.WriteFile(out, jsData, 0o600)
	if err != nil {
		log.Fatalf("write schema file: %v", err)
	}
}
