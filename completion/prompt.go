package completion

import "strings"

// PromptTemplate is a fixed text pattern with {name} placeholders that are
// substituted before submission to the model provider.
type PromptTemplate string

// Format substitutes vars into the template and returns the prompt string.
// Placeholders without a matching var are left untouched. Formatting is a
// pure string operation, no provider access.
func (t PromptTemplate) Format(vars map[string]string) string {
	if len(vars) == 0 {
		return string(t)
	}
	pairs := make([]string, 0, len(vars)*2)
	for name, value := range vars {
		pairs = append(pairs, "{"+name+"}", value)
	}
	return strings.NewReplacer(pairs...).Replace(string(t))
}
