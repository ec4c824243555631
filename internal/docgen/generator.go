// internal/docgen/generator.go
package docgen

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/xeipuuv/gojsonschema"

	"hrdesk-automation/internal/common/logger"
)

var (
	ErrTemplateNotFound         = errors.New("TEMPLATE_NOT_FOUND")
	ErrTemplateValidationFailed = errors.New("TEMPLATE_VALIDATION_FAILED")
	ErrTemplateRenderFailed     = errors.New("TEMPLATE_RENDER_FAILED")
)

var placeholderPattern = regexp.MustCompile(`\{\{\s*([a-zA-Z0-9_]+)\s*\}\}`)

type templateCacheEntry struct {
	template *TemplateDefinition
	loadedAt time.Time
}

// Generator renders HR letters from the template registry into the spool
// directory. Templates are cached with a TTL so registry edits show up
// without a restart.
type Generator struct {
	config *Config
	logger logger.Logger
	cache  map[string]*templateCacheEntry
	mu     sync.RWMutex
}

func NewGenerator(config *Config, log logger.Logger) *Generator {
	return &Generator{
		config: config,
		logger: log.WithFields(map[string]interface{}{"component": "docgen"}),
		cache:  make(map[string]*templateCacheEntry),
	}
}

// Generate validates the field map against the template schema, renders
// subject and body, and writes the document to the spool directory. The
// returned ref is stable: a UUID-named file under the spool.
func (g *Generator) Generate(ctx context.Context, templateID string, fields map[string]string) (*Rendered, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	template, err := g.loadTemplate(templateID)
	if err != nil {
		return nil, err
	}

	if err := g.validateFields(template.Schema, fields); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTemplateValidationFailed, err)
	}

	subject, missingSubject := substitute(template.Subject, fields)
	body, missingBody := substitute(template.Body, fields)
	if missing := append(missingSubject, missingBody...); len(missing) > 0 {
		return nil, fmt.Errorf("%w: unresolved placeholders %v in template %s", ErrTemplateRenderFailed, missing, templateID)
	}

	ref := DocumentRef{
		ID:         uuid.NewString(),
		TemplateID: templateID,
	}
	ref.Path = filepath.Join(g.config.SpoolDir, ref.ID+".txt")

	if err := os.MkdirAll(g.config.SpoolDir, 0755); err != nil {
		return nil, fmt.Errorf("%w: create spool dir: %v", ErrTemplateRenderFailed, err)
	}
	content := "Subject: " + subject + "\n\n" + body + "\n"
	if err := os.WriteFile(ref.Path, []byte(content), 0644); err != nil {
		return nil, fmt.Errorf("%w: write document: %v", ErrTemplateRenderFailed, err)
	}

	g.logger.Info("document rendered", map[string]interface{}{
		"templateId": templateID,
		"documentId": ref.ID,
	})

	return &Rendered{Ref: ref, Subject: subject, Body: body}, nil
}

func (g *Generator) loadTemplate(id string) (*TemplateDefinition, error) {
	g.mu.RLock()
	if entry, ok := g.cache[id]; ok && time.Since(entry.loadedAt) < g.config.CacheTTL {
		g.mu.RUnlock()
		return entry.template, nil
	}
	g.mu.RUnlock()

	registryBytes, err := os.ReadFile(g.config.RegistryPath)
	if err != nil {
		return nil, fmt.Errorf("read template registry: %w", err)
	}

	var registry templateRegistry
	if err := json.Unmarshal(registryBytes, &registry); err != nil {
		return nil, fmt.Errorf("parse template registry: %w", err)
	}

	for _, t := range registry.Templates {
		if t.ID == id {
			g.mu.Lock()
			g.cache[id] = &templateCacheEntry{
				template: &t,
				loadedAt: time.Now(),
			}
			g.mu.Unlock()
			return &t, nil
		}
	}

	return nil, fmt.Errorf("template %s: %w", id, ErrTemplateNotFound)
}

func (g *Generator) validateFields(schemaMap map[string]interface{}, fields map[string]string) error {
	if len(schemaMap) == 0 {
		return nil
	}

	data := make(map[string]interface{}, len(fields))
	for k, v := range fields {
		data[k] = v
	}

	schemaLoader := gojsonschema.NewGoLoader(schemaMap)
	documentLoader := gojsonschema.NewGoLoader(data)

	result, err := gojsonschema.Validate(schemaLoader, documentLoader)
	if err != nil {
		return fmt.Errorf("validation error: %w", err)
	}

	if !result.Valid() {
		errs := make([]string, len(result.Errors()))
		for i, desc := range result.Errors() {
			errs[i] = desc.String()
		}
		return fmt.Errorf("field validation failed: %v", errs)
	}

	return nil
}

// substitute resolves {{field}} placeholders and reports the ones with no
// value. Letters never go out with holes.
func substitute(text string, fields map[string]string) (string, []string) {
	var missing []string
	rendered := placeholderPattern.ReplaceAllStringFunc(text, func(placeholder string) string {
		key := strings.TrimSpace(strings.Trim(placeholder, "{}"))
		if value, ok := fields[key]; ok {
			return value
		}
		missing = append(missing, key)
		return placeholder
	})
	return rendered, missing
}
