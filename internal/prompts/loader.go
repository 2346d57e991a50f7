// Package prompts holds the LLM instructions behind the resume AI operations.
// The prompt text lives in resume.json and is embedded at compile time.
package prompts

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"sync"
)

//go:embed resume.json
var resumeJSON []byte

var loadResumePrompts = sync.OnceValues(func() (map[string]string, error) {
	var set map[string]string
	if err := json.Unmarshal(resumeJSON, &set); err != nil {
		return nil, fmt.Errorf("failed to parse resume prompts: %w", err)
	}
	return set, nil
})

// Get returns the raw prompt registered under name.
func Get(name string) (string, error) {
	set, err := loadResumePrompts()
	if err != nil {
		return "", err
	}
	prompt, ok := set[name]
	if !ok {
		return "", fmt.Errorf("unknown prompt %q", name)
	}
	return prompt, nil
}

// Format fills {{.Key}} placeholders from data in a single pass. Substituted
// values are never rescanned, so resume text that happens to contain a
// placeholder is embedded verbatim. Unknown placeholders are left as is.
func Format(template string, data map[string]string) string {
	if len(data) == 0 {
		return template
	}
	keys := make([]string, 0, len(data))
	for k := range data {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	pairs := make([]string, 0, 2*len(keys))
	for _, k := range keys {
		pairs = append(pairs, "{{."+k+"}}", data[k])
	}
	return strings.NewReplacer(pairs...).Replace(template)
}

// Render looks up a prompt and fills its placeholders.
func Render(name string, data map[string]string) (string, error) {
	template, err := Get(name)
	if err != nil {
		return "", err
	}
	return Format(template, data), nil
}
