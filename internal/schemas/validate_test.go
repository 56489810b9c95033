package schemas

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const engineSchema = `{
	"$schema": "http://json-schema.org/draft-07/schema#",
	"type": "object",
	"required": ["name", "url"],
	"properties": {
		"name": {"type": "string", "minLength": 1},
		"url": {"type": "string"},
		"max_redirects": {"type": "integer", "minimum": 0}
	}
}`

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestValidateJSON_ValidJSON(t *testing.T) {
	dir := t.TempDir()
	schemaPath := writeFile(t, dir, "engine.schema.json", engineSchema)
	jsonPath := writeFile(t, dir, "engine.json", `{"name": "Google", "url": "http://www.google.com/ping?sitemap="}`)

	assert.NoError(t, ValidateJSON(schemaPath, jsonPath))
}

func TestValidateJSON_MissingField(t *testing.T) {
	dir := t.TempDir()
	schemaPath := writeFile(t, dir, "engine.schema.json", engineSchema)
	jsonPath := writeFile(t, dir, "engine.json", `{"name": "Google"}`)

	err := ValidateJSON(schemaPath, jsonPath)
	require.Error(t, err)

	validationErr, ok := err.(*ValidationError)
	require.True(t, ok, "error should be ValidationError type")
	assert.Greater(t, len(validationErr.Errors), 0)
}

func TestValidateJSON_WrongType(t *testing.T) {
	dir := t.TempDir()
	schemaPath := writeFile(t, dir, "engine.schema.json", engineSchema)
	jsonPath := writeFile(t, dir, "engine.json", `{"name": "Bing", "url": "http://www.bing.com/ping", "max_redirects": "five"}`)

	err := ValidateJSON(schemaPath, jsonPath)
	require.Error(t, err)

	validationErr, ok := err.(*ValidationError)
	require.True(t, ok, "error should be ValidationError type")
	assert.Contains(t, validationErr.Fields(), "max_redirects")
}

func TestValidateJSON_NonExistentFiles(t *testing.T) {
	dir := t.TempDir()
	schemaPath := writeFile(t, dir, "engine.schema.json", engineSchema)
	jsonPath := writeFile(t, dir, "engine.json", `{}`)

	err := ValidateJSON(filepath.Join(dir, "missing.schema.json"), jsonPath)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")

	err = ValidateJSON(schemaPath, filepath.Join(dir, "missing.json"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestValidateJSON_MalformedJSON(t *testing.T) {
	dir := t.TempDir()
	schemaPath := writeFile(t, dir, "engine.schema.json", engineSchema)
	jsonPath := writeFile(t, dir, "malformed.json", "{ invalid json }")

	assert.Error(t, ValidateJSON(schemaPath, jsonPath))
}

func TestValidateJSONString_Valid(t *testing.T) {
	assert.NoError(t, ValidateJSONString(engineSchema, `{"name": "test", "url": "http://a.com/"}`))
}

func TestValidateJSONString_Invalid(t *testing.T) {
	err := ValidateJSONString(engineSchema, `{"max_redirects": -1}`)
	require.Error(t, err)

	validationErr, ok := err.(*ValidationError)
	require.True(t, ok)
	assert.GreaterOrEqual(t, len(validationErr.Errors), 2)
}

func TestValidateJSONString_BadSchema(t *testing.T) {
	err := ValidateJSONString(`{"type": 12}`, `{}`)
	require.Error(t, err)

	_, ok := err.(*SchemaLoadError)
	assert.True(t, ok, "expected SchemaLoadError, got %T", err)
}

func TestValidateDocument(t *testing.T) {
	assert.NoError(t, ValidateDocument(engineSchema, []byte(`{"name": "a", "url": "b"}`)))

	err := ValidateDocument(engineSchema, []byte(`{"name": ""}`))
	var validationErr *ValidationError
	require.ErrorAs(t, err, &validationErr)
	assert.NotEmpty(t, validationErr.Errors)
}

func TestValidationError_Error(t *testing.T) {
	err := &ValidationError{
		Errors: []FieldError{
			{Field: "name", Message: "is required"},
			{Field: "url", Message: "must be a string"},
		},
	}

	errorMsg := err.Error()
	assert.Contains(t, errorMsg, "validation failed")
	assert.Contains(t, errorMsg, "1. name: is required")
	assert.Contains(t, errorMsg, "2. url: must be a string")
	assert.Equal(t, []string{"name", "url"}, err.Fields())
}
