// CUE schema validation code
package config

import (
	"fmt"
	"os"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"
	"cuelang.org/go/encoding/yaml"
)

// ValidateWithCue checks a YAML configuration file against a CUE schema file.
// Every violation is reported, one per line.
func ValidateWithCue(configFile, cueFile string) error {
	ctx := cuecontext.New()

	configVal, err := compileYAML(ctx, configFile)
	if err != nil {
		return err
	}
	schemaBytes, err := os.ReadFile(cueFile)
	if err != nil {
		return fmt.Errorf("read CUE schema: %w", err)
	}
	schemaVal := ctx.CompileBytes(schemaBytes, cue.Filename(cueFile))
	if err := schemaVal.Err(); err != nil {
		return fmt.Errorf("compile CUE schema: %s", details(err))
	}

	final := schemaVal.Unify(configVal)
	if err := final.Validate(); err != nil {
		return fmt.Errorf("%s: %s", configFile, details(err))
	}
	return nil
}

func compileYAML(ctx *cue.Context, path string) (cue.Value, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return cue.Value{}, fmt.Errorf("read config: %w", err)
	}
	f, err := yaml.Extract(path, b)
	if err != nil {
		return cue.Value{}, fmt.Errorf("parse config: %w", err)
	}
	v := ctx.BuildFile(f)
	if err := v.Err(); err != nil {
		return cue.Value{}, fmt.Errorf("build config: %s", details(err))
	}
	return v, nil
}

func details(err error) string {
	return strings.TrimSpace(cueerrors.Details(err, nil))
}
