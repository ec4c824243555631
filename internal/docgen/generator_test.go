// internal/docgen/generator_test.go
package docgen

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hrdesk-automation/internal/common/logger"
)

// ==========================
// Test Helpers
// ==========================

const testRegistry = `{
  "templates": [
    {
      "id": "employment_verification",
      "displayName": "Employment Verification Letter",
      "subject": "Employment Verification - {{employee_name}}",
      "body": "This confirms {{employee_name}} ({{employee_id}}) works here, effective {{effective_date}}.",
      "schema": {
        "type": "object",
        "required": ["employee_name", "employee_id", "effective_date"],
        "properties": {
          "employee_name": {"type": "string", "minLength": 1},
          "employee_id": {"type": "string", "pattern": "^E[0-9]{3,6}$"},
          "effective_date": {"type": "string", "pattern": "^[0-9]{4}-[0-9]{2}-[0-9]{2}$"}
        }
      },
      "version": "1.0.0"
    },
    {
      "id": "loose_letter",
      "displayName": "Letter With Unchecked Placeholder",
      "subject": "Letter",
      "body": "Signed by {{signatory}}.",
      "schema": {},
      "version": "1.0.0"
    }
  ]
}`

func newTestGenerator(t *testing.T, cacheTTL time.Duration) (*Generator, string) {
	t.Helper()
	dir := t.TempDir()
	registryPath := filepath.Join(dir, "templates.json")
	require.NoError(t, os.WriteFile(registryPath, []byte(testRegistry), 0644))

	cfg := &Config{
		RegistryPath: registryPath,
		SpoolDir:     filepath.Join(dir, "spool"),
		CacheTTL:     cacheTTL,
	}
	return NewGenerator(cfg, logger.NewTestLogger(t)), registryPath
}

func validFields() map[string]string {
	return map[string]string{
		"employee_name":  "Dana Whitfield",
		"employee_id":    "E123",
		"effective_date": "2024-05-01",
	}
}

// ==========================
// Generation Tests
// ==========================

func TestGenerator_Generate_Success(t *testing.T) {
	gen, _ := newTestGenerator(t, time.Hour)

	rendered, err := gen.Generate(context.Background(), "employment_verification", validFields())
	require.NoError(t, err)

	assert.Equal(t, "Employment Verification - Dana Whitfield", rendered.Subject)
	assert.Equal(t, "This confirms Dana Whitfield (E123) works here, effective 2024-05-01.", rendered.Body)
	assert.NotEmpty(t, rendered.Ref.ID)
	assert.Equal(t, "employment_verification", rendered.Ref.TemplateID)

	content, err := os.ReadFile(rendered.Ref.Path)
	require.NoError(t, err)
	assert.Contains(t, string(content), "Subject: Employment Verification - Dana Whitfield")
	assert.Contains(t, string(content), "works here, effective 2024-05-01")
}

func TestGenerator_Generate_UniqueRefs(t *testing.T) {
	gen, _ := newTestGenerator(t, time.Hour)

	first, err := gen.Generate(context.Background(), "employment_verification", validFields())
	require.NoError(t, err)
	second, err := gen.Generate(context.Background(), "employment_verification", validFields())
	require.NoError(t, err)

	assert.NotEqual(t, first.Ref.ID, second.Ref.ID)
	assert.NotEqual(t, first.Ref.Path, second.Ref.Path)
}

func TestGenerator_Generate_UnknownTemplate(t *testing.T) {
	gen, _ := newTestGenerator(t, time.Hour)

	_, err := gen.Generate(context.Background(), "termination_notice", validFields())
	require.ErrorIs(t, err, ErrTemplateNotFound)
}

func TestGenerator_Generate_SchemaViolation(t *testing.T) {
	gen, _ := newTestGenerator(t, time.Hour)

	tests := []struct {
		name   string
		mutate func(map[string]string)
	}{
		{name: "missing required field", mutate: func(f map[string]string) { delete(f, "effective_date") }},
		{name: "bad employee id shape", mutate: func(f map[string]string) { f["employee_id"] = "123" }},
		{name: "bad date shape", mutate: func(f map[string]string) { f["effective_date"] = "May 2024" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fields := validFields()
			tt.mutate(fields)
			_, err := gen.Generate(context.Background(), "employment_verification", fields)
			require.ErrorIs(t, err, ErrTemplateValidationFailed)
		})
	}
}

func TestGenerator_Generate_UnresolvedPlaceholder(t *testing.T) {
	gen, _ := newTestGenerator(t, time.Hour)

	// loose_letter has no schema, so the placeholder check is the backstop.
	_, err := gen.Generate(context.Background(), "loose_letter", map[string]string{})
	require.ErrorIs(t, err, ErrTemplateRenderFailed)
	assert.Contains(t, err.Error(), "signatory")
}

func TestGenerator_Generate_CanceledContext(t *testing.T) {
	gen, _ := newTestGenerator(t, time.Hour)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := gen.Generate(ctx, "employment_verification", validFields())
	require.ErrorIs(t, err, context.Canceled)
}

// ==========================
// Cache Tests
// ==========================

func TestGenerator_TemplateCache(t *testing.T) {
	gen, registryPath := newTestGenerator(t, time.Hour)

	first, err := gen.Generate(context.Background(), "employment_verification", validFields())
	require.NoError(t, err)

	// Registry edits are invisible until the TTL lapses.
	edited := []byte(`{"templates": [{"id": "employment_verification", "displayName": "x", "subject": "Changed", "body": "Changed.", "schema": {}, "version": "2.0.0"}]}`)
	require.NoError(t, os.WriteFile(registryPath, edited, 0644))

	cached, err := gen.Generate(context.Background(), "employment_verification", validFields())
	require.NoError(t, err)
	assert.Equal(t, first.Subject, cached.Subject)

	// A zero TTL generator always reloads.
	fresh := NewGenerator(&Config{
		RegistryPath: registryPath,
		SpoolDir:     t.TempDir(),
		CacheTTL:     0,
	}, logger.NewTestLogger(t))

	reloaded, err := fresh.Generate(context.Background(), "employment_verification", validFields())
	require.NoError(t, err)
	assert.Equal(t, "Changed", reloaded.Subject)
}

// ==========================
// Shipped Registry
// ==========================

func TestGenerator_ShippedRegistry(t *testing.T) {
	cfg := &Config{
		RegistryPath: "../../configs/letter-templates.json",
		SpoolDir:     t.TempDir(),
		CacheTTL:     time.Hour,
	}
	gen := NewGenerator(cfg, logger.NewTestLogger(t))

	fields := map[string]string{
		"employee_name":  "Dana Whitfield",
		"employee_id":    "E123",
		"department":     "Engineering",
		"job_title":      "Staff Engineer",
		"effective_date": "2024-05-01",
	}
	rendered, err := gen.Generate(context.Background(), "employment_verification", fields)
	require.NoError(t, err)
	assert.Contains(t, rendered.Body, "Dana Whitfield")
	assert.Contains(t, rendered.Body, "2024-05-01")

	payslipFields := map[string]string{
		"employee_name": "Dana Whitfield",
		"employee_id":   "E456",
		"pay_period":    "2024-05",
		"gross_pay":     "8200.00",
		"net_pay":       "6150.00",
		"currency":      "USD",
		"paid_on":       "2024-05-31",
	}
	slip, err := gen.Generate(context.Background(), "payslip", payslipFields)
	require.NoError(t, err)
	assert.Contains(t, slip.Subject, "2024-05")
	assert.Contains(t, slip.Body, "6150.00")
}
