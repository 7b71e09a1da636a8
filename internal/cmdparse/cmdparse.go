// Package cmdparse expands a task's shell command template, substituting
// the "{depends}" and "{targets}" placeholders with the space-joined
// names of its dependency and target objects.
package cmdparse

import "strings"

const (
	dependsPlaceholder = "{depends}"
	targetsPlaceholder = "{targets}"
)

// Expand substitutes dependsPlaceholder and targetsPlaceholder in template
// with the given names, joined by a single space. Literal occurrences of
// either placeholder elsewhere in the string are also replaced; callers
// that need a literal brace sequence should not rely on this expander.
func Expand(template string, dependNames, targetNames []string) string {
	out := strings.ReplaceAll(template, dependsPlaceholder, strings.Join(dependNames, " "))
	out = strings.ReplaceAll(out, targetsPlaceholder, strings.Join(targetNames, " "))
	return out
}
