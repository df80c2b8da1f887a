package llm

import (
	"bytes"
	"embed"
	"fmt"
	"strings"
	"text/template"

	"github.com/Veraticus/plate-audit/internal/model"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

// PromptBuilder renders the audit prompts from embedded templates.
type PromptBuilder struct {
	templates map[string]*template.Template
}

// AuditPromptData contains all data needed for the audit prompts.
type AuditPromptData struct {
	Schema        string
	Dishes        []model.EnrichedDish
	ConflictTypes []string
	Profile       model.ClientProfile
}

// NewPromptBuilder loads and parses the embedded templates.
func NewPromptBuilder() (*PromptBuilder, error) {
	pb := &PromptBuilder{
		templates: make(map[string]*template.Template),
	}

	funcMap := template.FuncMap{
		"join":       strings.Join,
		"listOrNone": listOrNone,
		"inc":        func(i int) int { return i + 1 },
	}

	for _, name := range []string{"audit_system", "audit_dishes", "conflict_schema"} {
		filename := fmt.Sprintf("templates/%s.tmpl", name)
		tmpl, err := template.New(fmt.Sprintf("%s.tmpl", name)).Funcs(funcMap).ParseFS(templateFS, filename)
		if err != nil {
			return nil, fmt.Errorf("failed to parse template %s: %w", name, err)
		}
		pb.templates[name] = tmpl
	}

	return pb, nil
}

// BuildAuditPrompts returns the system prompt and the user prompt for one audit.
func (pb *PromptBuilder) BuildAuditPrompts(profile model.ClientProfile, dishes []model.EnrichedDish) (string, string, error) {
	data := AuditPromptData{
		Profile:       profile,
		Dishes:        dishes,
		ConflictTypes: conflictTypeNames(),
	}

	schema, err := pb.render("conflict_schema", data)
	if err != nil {
		return "", "", err
	}
	data.Schema = strings.TrimSpace(schema)

	system, err := pb.render("audit_system", data)
	if err != nil {
		return "", "", err
	}

	user, err := pb.render("audit_dishes", data)
	if err != nil {
		return "", "", err
	}

	return strings.TrimSpace(system), strings.TrimSpace(user), nil
}

func (pb *PromptBuilder) render(name string, data any) (string, error) {
	var buf bytes.Buffer
	if err := pb.templates[name].ExecuteTemplate(&buf, name+".tmpl", data); err != nil {
		return "", fmt.Errorf("failed to execute %s template: %w", name, err)
	}
	return buf.String(), nil
}

func listOrNone(items []string) string {
	if len(items) == 0 {
		return "None"
	}
	return strings.Join(items, ", ")
}

func conflictTypeNames() []string {
	types := model.ConflictTypes()
	names := make([]string, len(types))
	for i, t := range types {
		names[i] = string(t)
	}
	return names
}
