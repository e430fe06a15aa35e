// Command xlstpl renders a .xlsx Handlebars template against a JSON data
// file and writes the resulting workbook to disk.
//
// Grounded on original_source/examples/rust_example.rs's read-template /
// build-data / render / write-output flow, expressed as a standard Go
// flag-driven CLI in the teacher's style (main packages under cmd/, no
// third-party CLI framework pulled in for a four-flag tool).
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/sheetcraft/xlstpl/render"
	"github.com/sheetcraft/xlstpl/xl"
)

func main() {
	log.SetFlags(0)

	var (
		templatePath = flag.String("template", "", "path to the .xlsx template (required)")
		dataPath     = flag.String("data", "", "path to the JSON data file (required)")
		outPath      = flag.String("out", "", "path to write the rendered .xlsx (required)")
		debugDir     = flag.String("debug-dir", "", "also dump the rendered part set as loose XML files under this directory")
	)
	flag.Parse()

	if *templatePath == "" || *dataPath == "" || *outPath == "" {
		flag.Usage()
		os.Exit(2)
	}

	if err := run(*templatePath, *dataPath, *outPath, *debugDir); err != nil {
		log.Fatalf("xlstpl: %v", err)
	}
}

func run(templatePath, dataPath, outPath, debugDir string) error {
	template, err := os.ReadFile(templatePath)
	if err != nil {
		return fmt.Errorf("reading template: %w", err)
	}

	dataJSON, err := os.ReadFile(dataPath)
	if err != nil {
		return fmt.Errorf("reading data: %w", err)
	}

	var data map[string]interface{}
	if err := json.Unmarshal(dataJSON, &data); err != nil {
		return fmt.Errorf("parsing data: %w", err)
	}

	out, parts, err := render.RenderWithParts(template, data)
	if err != nil {
		return fmt.Errorf("rendering: %w", err)
	}

	if debugDir != "" {
		if err := xl.DumpParts(xl.NewDirStorage(debugDir), parts); err != nil {
			return fmt.Errorf("writing debug dump: %w", err)
		}
		log.Printf("wrote debug parts under %s", debugDir)
	}

	if err := os.WriteFile(outPath, out, 0o644); err != nil {
		return fmt.Errorf("writing output: %w", err)
	}

	log.Printf("wrote %s (%d bytes)", outPath, len(out))
	return nil
}
