// Package prompts holds the LLM prompt templates, embedded as JSON files
// mapping a key to a template with {{.Name}} placeholders.
package prompts

import (
	"embed"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
)

// ParsingFile holds the query-parsing prompts.
const ParsingFile = "parsing.json"

// ParseQueryKey is the instruction preamble for the LLM query parser.
const ParseQueryKey = "parse-query"

//go:embed *.json
var promptFiles embed.FS

var (
	templates   = make(map[string]map[string]string)
	templatesMu sync.RWMutex
)

// Get returns the template stored under key in filename.
func Get(filename, key string) (string, error) {
	set, err := templateSet(filename)
	if err != nil {
		return "", err
	}
	tmpl, ok := set[key]
	if !ok {
		return "", fmt.Errorf("prompt key %q not found in %s", key, filename)
	}
	return tmpl, nil
}

// Render returns the template under key with its placeholders filled from data.
func Render(filename, key string, data map[string]string) (string, error) {
	tmpl, err := Get(filename, key)
	if err != nil {
		return "", err
	}
	return Format(tmpl, data), nil
}

// Format substitutes {{.Key}} placeholders. Placeholders without a value are
// left as they are.
func Format(tmpl string, data map[string]string) string {
	for k, v := range data {
		tmpl = strings.ReplaceAll(tmpl, "{{."+k+"}}", v)
	}
	return tmpl
}

// templateSet parses filename once and serves later calls from memory.
func templateSet(filename string) (map[string]string, error) {
	templatesMu.RLock()
	set, ok := templates[filename]
	templatesMu.RUnlock()
	if ok {
		return set, nil
	}

	data, err := promptFiles.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read prompt file %s: %w", filename, err)
	}
	if err := json.Unmarshal(data, &set); err != nil {
		return nil, fmt.Errorf("failed to parse prompt file %s: %w", filename, err)
	}

	templatesMu.Lock()
	templates[filename] = set
	templatesMu.Unlock()
	return set, nil
}
