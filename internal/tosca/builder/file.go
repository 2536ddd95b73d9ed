package builder

import (
	"github.com/edelwud/tf2tosca/internal/tosca/model"
	"github.com/edelwud/tf2tosca/internal/tosca/ordered"
)

// ToscaFileBuilder builds the root ToscaFile, delegating the topology
// itself to a ServiceTemplateBuilder.
type ToscaFileBuilder struct {
	file    *model.ToscaFile
	service *ServiceTemplateBuilder
	err     error
}

// NewToscaFileBuilder starts a file at the only supported profile
// version.
func NewToscaFileBuilder() *ToscaFileBuilder {
	f, err := model.NewToscaFile(model.ToscaDefinitionsVersion)
	b := &ToscaFileBuilder{file: f, service: NewServiceTemplateBuilder()}
	if err != nil {
		b.err = err
	}
	return b
}

func (b *ToscaFileBuilder) WithDescription(s string) *ToscaFileBuilder {
	b.file.Description = s
	return b
}

func (b *ToscaFileBuilder) WithMetadata(kvs ...KV) *ToscaFileBuilder {
	m := ordered.NewMap[string]()
	for _, kv := range kvs {
		if s, ok := kv.Value.(string); ok {
			m.Set(kv.Key, s)
		}
	}
	b.file.Metadata = m
	return b
}

func (b *ToscaFileBuilder) WithProfile(profile string) *ToscaFileBuilder {
	b.file.Profile = profile
	return b
}

func (b *ToscaFileBuilder) WithImport(url, namespace string) *ToscaFileBuilder {
	b.file.Imports = append(b.file.Imports, model.Import{URL: url, Namespace: namespace})
	return b
}

// Service returns the embedded service-template builder, used by the
// orchestrator (C7) and mappers (C6) to build the topology.
func (b *ToscaFileBuilder) Service() *ServiceTemplateBuilder {
	return b.service
}

// Build finalizes the file, attaching the built service template.
func (b *ToscaFileBuilder) Build() (*model.ToscaFile, error) {
	if b.err != nil {
		return nil, b.err
	}
	svc, err := b.service.Build()
	if err != nil {
		return nil, err
	}
	b.file.ServiceTemplate = svc
	return b.file, nil
}

// CreateToscaFile is a convenience factory mirroring the original
// create_tosca_file helper: a file with one Simple Profile import and
// an empty service template ready for mappers to populate.
func CreateToscaFile(profileImportURL string) *ToscaFileBuilder {
	return NewToscaFileBuilder().WithImport(profileImportURL, "")
}
