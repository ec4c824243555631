// cmd/tools/handler-generator/main.go
package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"text/template"

	"hrdesk-automation/pkg/catalog"
)

// HandlerData holds data for templates
type HandlerData struct {
	DisplayName      string
	Description      string
	TaskType         string
	PackageName      string
	RequiredEntities []string
}

// acronyms keeps generated field names in line with the hand-written
// handlers, which spell ID and HRIS in caps.
var acronyms = map[string]string{
	"id":   "ID",
	"hris": "HRIS",
}

// entityConstNames maps catalog entity names to the models constants, so
// generated code references the same identifiers the existing handlers do.
var entityConstNames = map[string]string{
	"employee_id":    "models.EntityEmployeeID",
	"document_type":  "models.EntityDocumentType",
	"effective_date": "models.EntityEffectiveDate",
	"pay_period":     "models.EntityPayPeriod",
	"hris_field":     "models.EntityHRISField",
	"new_value":      "models.EntityNewValue",
	"policy_topic":   "models.EntityPolicyTopic",
}

// entityRef returns the Go expression for a catalog entity name.
func entityRef(entity string) string {
	if name, ok := entityConstNames[entity]; ok {
		return name
	}
	return fmt.Sprintf("models.EntityType(%q)", entity)
}

func titleWord(word string) string {
	if word == "" {
		return word
	}
	if acr, ok := acronyms[word]; ok {
		return acr
	}
	return strings.ToUpper(word[:1]) + word[1:]
}

// goFieldName turns an entity name into an exported struct field name,
// e.g. hris_field becomes HRISField.
func goFieldName(entity string) string {
	words := strings.Split(entity, "_")
	for i, w := range words {
		words[i] = titleWord(w)
	}
	return strings.Join(words, "")
}

// goLocalName turns an entity name into a local variable name,
// e.g. employee_id becomes employeeID.
func goLocalName(entity string) string {
	words := strings.Split(entity, "_")
	for i, w := range words {
		if i == 0 {
			words[i] = strings.ToLower(w)
			continue
		}
		words[i] = titleWord(w)
	}
	return strings.Join(words, "")
}

const handlerTemplate = `// internal/actions/{{ .TaskType }}/handler.go
package {{ .PackageName }}

import (
	"context"
	"fmt"

	"hrdesk-automation/internal/common/logger"
	"hrdesk-automation/internal/models"
)

const TaskType = "{{ .TaskType }}"

// ==========================
// Handler
// ==========================

// Handler executes the {{ .DisplayName }} action.
//
// {{ .Description }}
type Handler struct {
	config Config
	logger logger.Logger
}

func NewHandler(config Config, log logger.Logger) *Handler {
	return &Handler{
		config: config,
		logger: log.WithFields(map[string]interface{}{"handler": TaskType}),
	}
}

func (h *Handler) TaskType() string {
	return TaskType
}

func (h *Handler) RequiredEntities() []models.EntityType {
	return []models.EntityType{
{{- range .RequiredEntities }}
		{{ entityRef . }},
{{- end }}
	}
}

func (h *Handler) Execute(ctx context.Context, req models.Request, entities models.EntitySet) (*models.ActionOutput, error) {
	input := inputFromEntities(entities)

	// TODO: implement {{ .DisplayName }}. Take narrow dependency
	// interfaces in NewHandler, do the work here, and map dependency
	// failures to internal/common/errors codes so the executor can tell
	// retryable from permanent.
	_ = input

	h.logger.Info("request handled", map[string]interface{}{
		"requestId": req.RequestID,
	})

	return &models.ActionOutput{
		Fields:  map[string]string{},
		Summary: fmt.Sprintf("%s handled request %s.", TaskType, req.RequestID),
	}, nil
}
`

const modelsTemplate = `// internal/actions/{{ .TaskType }}/models.go
package {{ .PackageName }}

import "hrdesk-automation/internal/models"

// Input is the entity bundle this handler works from.
type Input struct {
{{- range .RequiredEntities }}
	{{ goFieldName . }} string
{{- end }}
}

func inputFromEntities(entities models.EntitySet) Input {
{{- range .RequiredEntities }}
	{{ goLocalName . }}, _ := entities.Get({{ entityRef . }})
{{- end }}
	return Input{
{{- range .RequiredEntities }}
		{{ goFieldName . }}: {{ goLocalName . }},
{{- end }}
	}
}
`

const configTemplate = `// internal/actions/{{ .TaskType }}/config.go
package {{ .PackageName }}

// Config holds the handler's knobs.
type Config struct {
	// Add handler-specific settings here.
}

func DefaultConfig() Config {
	return Config{}
}
`

const testTemplate = `// internal/actions/{{ .TaskType }}/handler_test.go
package {{ .PackageName }}

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hrdesk-automation/internal/common/logger"
	"hrdesk-automation/internal/models"
)

func TestHandler_DeclaresItsEntityNeeds(t *testing.T) {
	h := NewHandler(DefaultConfig(), logger.NewTestLogger(t))

	assert.Equal(t, TaskType, h.TaskType())
	assert.Equal(t, []models.EntityType{
{{- range .RequiredEntities }}
		{{ entityRef . }},
{{- end }}
	}, h.RequiredEntities())
}

func TestHandler_Execute(t *testing.T) {
	h := NewHandler(DefaultConfig(), logger.NewTestLogger(t))

	entities := models.NewEntitySet()
{{- range .RequiredEntities }}
	entities.Set({{ entityRef . }}, "TODO")
{{- end }}

	output, err := h.Execute(context.Background(), models.Request{RequestID: "REQ-1"}, entities)
	require.NoError(t, err)
	assert.NotNil(t, output)
	// TODO: assert on output.Fields and output.Summary once Execute is
	// implemented.
}
`

func main() {
	intent := flag.String("intent", "", "Intent ID from the catalog (e.g., POLICY_QUERY)")
	outputDir := flag.String("output", "./internal/actions/", "Output directory for the generated handler")
	catalogPath := flag.String("catalog", "configs/intent-catalog.json", "Path to the intent catalog JSON file")
	flag.Parse()

	if *intent == "" {
		fmt.Println("Usage: handler-generator --intent <id> --output <dir> [--catalog <path>]")
		fmt.Println("\nExample:")
		fmt.Println("  go run cmd/tools/handler-generator/main.go --intent POLICY_QUERY")
		os.Exit(1)
	}

	// Load the catalog
	cat, err := catalog.Load(*catalogPath)
	if err != nil {
		fmt.Printf("Error loading catalog from %s: %v\n", *catalogPath, err)
		os.Exit(1)
	}
	if err := cat.Validate(); err != nil {
		fmt.Printf("Catalog %s is invalid: %v\n", *catalogPath, err)
		os.Exit(1)
	}

	def, found := cat.Get(*intent)
	if !found {
		fmt.Printf("Intent '%s' not found in catalog %s\n", *intent, *catalogPath)
		os.Exit(1)
	}

	// Prepare data for templates
	data := HandlerData{
		DisplayName:      def.DisplayName,
		Description:      def.Description,
		TaskType:         def.TaskType,
		PackageName:      strings.ReplaceAll(def.TaskType, "-", ""),
		RequiredEntities: def.RequiredEntities,
	}

	handlerDir := filepath.Join(*outputDir, def.TaskType)
	if _, err := os.Stat(filepath.Join(handlerDir, "handler.go")); err == nil {
		fmt.Printf("Handler package %s already exists, refusing to overwrite\n", handlerDir)
		os.Exit(1)
	}

	if err := os.MkdirAll(handlerDir, 0755); err != nil {
		fmt.Printf("Error creating directory: %v\n", err)
		os.Exit(1)
	}

	// Create templates with functions
	funcMap := template.FuncMap{
		"entityRef":   entityRef,
		"goFieldName": goFieldName,
		"goLocalName": goLocalName,
	}

	// Generate files
	templates := map[string]string{
		"handler.go":      handlerTemplate,
		"models.go":       modelsTemplate,
		"config.go":       configTemplate,
		"handler_test.go": testTemplate,
	}

	for filename, tmplStr := range templates {
		tmpl, err := template.New(filename).Funcs(funcMap).Parse(tmplStr)
		if err != nil {
			fmt.Printf("Error parsing template %s: %v\n", filename, err)
			continue
		}

		filePath := filepath.Join(handlerDir, filename)
		file, err := os.Create(filePath)
		if err != nil {
			fmt.Printf("Error creating file %s: %v\n", filePath, err)
			continue
		}

		if err := tmpl.Execute(file, data); err != nil {
			fmt.Printf("Error executing template for %s: %v\n", filename, err)
		}
		file.Close()

		fmt.Printf("✓ Generated %s\n", filePath)
	}

	fmt.Printf("\nHandler scaffold generated at: %s\n", handlerDir)
	fmt.Printf("\nNext steps:\n")
	fmt.Printf("  1. Implement Execute in handler.go behind narrow dependency interfaces\n")
	fmt.Printf("  2. Map dependency failures to internal/common/errors codes\n")
	fmt.Printf("  3. Extend the tests in handler_test.go\n")
	fmt.Printf("  4. Register the handler in cmd/pipeline-server/main.go\n")
	fmt.Printf("  5. Run cmd/tools/catalog-validator to confirm catalog and handlers agree\n")
}
