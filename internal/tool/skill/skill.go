// Package skill serves built-in task instructions to the model on demand.
package skill

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/Cyclone1070/codeagent/internal/tool"
)

const codeReview = `## Code review

### While analysing code
1. Read the whole change first and understand the overall structure.
2. Look for common problems:
   - unused imports or variables
   - hard-coded values
   - missing error handling
   - security risks
3. Judge quality, readability and maintainability.
4. Propose concrete improvements.

### Report format
- Problem
- Location (file:line)
- Severity
- Suggested fix`

// Builtin returns the skills shipped with the binary.
func Builtin() map[string]string {
	return map[string]string{
		"code-review": codeReview,
	}
}

type LoadRequest struct {
	Name string `json:"name"`
}

func (r *LoadRequest) String() string {
	return "Loading skill " + r.Name
}

// Tool returns the instructions for a named skill.
type Tool struct {
	skills map[string]string
}

// NewTool creates a skill Tool over the given catalogue.
func NewTool(skills map[string]string) *Tool {
	if skills == nil {
		panic("skills is required")
	}
	return &Tool{skills: skills}
}

func (t *Tool) Name() string {
	return "skill"
}

func (t *Tool) Declaration() tool.Declaration {
	return tool.Declaration{
		Name:        "skill",
		Description: fmt.Sprintf("Load detailed instructions for a specific kind of task. Available: %s.", strings.Join(t.names(), ", ")),
		Parameters: &tool.Schema{
			Type: tool.TypeObject,
			Properties: map[string]*tool.Schema{
				"name": {Type: tool.TypeString, Description: "Skill identifier, e.g. code-review"},
			},
			Required: []string{"name"},
		},
	}
}

func (t *Tool) Input() any {
	return &LoadRequest{}
}

func (t *Tool) Execute(ctx context.Context, input any) (tool.Result, error) {
	req, ok := input.(*LoadRequest)
	if !ok {
		return tool.Result{}, fmt.Errorf("invalid input type: %T", input)
	}
	body, ok := t.skills[strings.TrimSpace(req.Name)]
	if !ok {
		return tool.Failure(tool.CodeNotFound, "unknown skill %q, available: %s", req.Name, strings.Join(t.names(), ", ")), nil
	}
	return tool.Success(body, tool.StringDisplay("Loaded skill "+req.Name)), nil
}

func (t *Tool) names() []string {
	names := make([]string, 0, len(t.skills))
	for name := range t.skills {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
