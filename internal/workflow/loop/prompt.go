package loop

import (
	"fmt"
	"strings"

	"github.com/Cyclone1070/codeagent/internal/session"
	"github.com/Cyclone1070/codeagent/internal/tool"
)

// systemPrompt is rebuilt every turn so it reflects the tool set and the questions handled so far.
func systemPrompt(sess *session.Session, decls []tool.Declaration) string {
	var b strings.Builder
	b.WriteString("You are a coding agent working inside a single project directory")
	if sess.WorkDir != "" {
		fmt.Fprintf(&b, " (%s)", sess.WorkDir)
	}
	b.WriteString(".\n\n")

	b.WriteString("Use the tools to inspect and change the project, then answer the user directly.\n")
	b.WriteString("All paths you pass to tools must be relative to the project directory. ")
	b.WriteString("Absolute paths and paths that climb out with '..' are rejected.\n")
	b.WriteString("Read a file before editing it. Edits must match exactly one place in the file.\n")
	b.WriteString("For multi-step work keep a checklist with todowrite. Ask the user with question only when you cannot proceed.\n")

	if len(decls) > 0 {
		b.WriteString("\nAvailable tools:\n")
		for _, d := range decls {
			fmt.Fprintf(&b, "- %s: %s\n", d.Name, firstSentence(d.Description))
		}
	}

	if history := sess.History(); history != "" {
		b.WriteString("\n")
		b.WriteString(history)
	}
	return b.String()
}

func firstSentence(s string) string {
	if i := strings.Index(s, ". "); i >= 0 {
		return s[:i+1]
	}
	return s
}
