// Package yamlenc renders a built model.ToscaFile to the canonical YAML
// shape described by the TOSCA Simple Profile emitter design: fixed key
// order at the file and service-template levels, recursive elision of
// null/empty values, and a generation-metadata block stamped into the
// file's top-level metadata. It builds its own *yaml.Node tree instead
// of leaning on struct tags, because struct-tag-driven marshaling gives
// no hook for conditional elision or for injecting namespaced metadata
// the Go model has no field for.
package yamlenc

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"time"

	yaml "go.yaml.in/yaml/v4"

	"github.com/edelwud/tf2tosca/internal/tosca/model"
	"github.com/edelwud/tf2tosca/internal/tosca/ordered"
)

// DefaultGeneratedBy is the value stamped into metadata.generated_by
// when the caller doesn't override it.
const DefaultGeneratedBy = "tf2tosca"

// GenerationMetadata describes the provenance block injected into the
// output file's top-level metadata. GeneratedAt is supplied by the
// caller (the CLI entrypoint); when it is left zero, the current time
// is used instead.
type GenerationMetadata struct {
	GeneratedBy      string
	GeneratorVersion string
	GeneratedAt      time.Time
}

func (g GenerationMetadata) apply(meta *ordered.Map[string]) *ordered.Map[string] {
	if meta == nil {
		meta = ordered.NewMap[string]()
	}
	generatedBy := g.GeneratedBy
	if generatedBy == "" {
		generatedBy = DefaultGeneratedBy
	}
	meta.Set("generated_by", generatedBy)
	if g.GeneratorVersion != "" {
		meta.Set("generator_version", g.GeneratorVersion)
	}
	at := g.GeneratedAt
	if at.IsZero() {
		at = time.Now()
	}
	meta.Set("generation_timestamp", at.UTC().Format(time.RFC3339))
	return meta
}

// Marshal renders a ToscaFile into canonical YAML bytes, stamping the
// given generation metadata into the file-level metadata block first.
func Marshal(file *model.ToscaFile, gen GenerationMetadata) ([]byte, error) {
	if file == nil {
		return nil, &SerializationError{NodePath: "$", Reason: "nil tosca file"}
	}
	file.Metadata = gen.apply(file.Metadata)

	root, err := toscaFileToNode(file)
	if err != nil {
		var serr *SerializationError
		if ok := asSerializationError(err, &serr); ok {
			return nil, serr
		}
		return nil, &SerializationError{NodePath: "$", Reason: err.Error()}
	}

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(root); err != nil {
		return nil, &SerializationError{NodePath: "$", Reason: err.Error()}
	}
	if err := enc.Close(); err != nil {
		return nil, &SerializationError{NodePath: "$", Reason: err.Error()}
	}
	return buf.Bytes(), nil
}

func asSerializationError(err error, target **SerializationError) bool {
	if serr, ok := err.(*SerializationError); ok {
		*target = serr
		return true
	}
	return false
}

// WriteFile marshals file and writes it to path, via a temp file in the
// same directory renamed into place so a reader never observes a
// partially-written document.
func WriteFile(path string, file *model.ToscaFile, gen GenerationMetadata) error {
	data, err := Marshal(file, gen)
	if err != nil {
		return err
	}

	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".tf2tosca-*.yaml.tmp")
	if err != nil {
		return &IoError{Path: path, Err: err}
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return &IoError{Path: path, Err: err}
	}
	if err := tmp.Close(); err != nil {
		return &IoError{Path: path, Err: err}
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return &IoError{Path: path, Err: fmt.Errorf("rename into place: %w", err)}
	}
	return nil
}
