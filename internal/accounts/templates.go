package accounts

import (
	"embed"
	"fmt"
	"sort"
	"strings"

	"github.com/pelletier/go-toml"

	"github.com/cleared-dev/fincore/internal/model"
)

//go:embed templates/*.toml
var templateFS embed.FS

// DefaultTemplate is used when a template name is empty or unknown.
const DefaultTemplate = "standard"

// Template is a named starter chart of accounts.
type Template struct {
	Name        string            `toml:"name"`
	Description string            `toml:"description"`
	Accounts    []TemplateAccount `toml:"accounts"`
}

// TemplateAccount is one account row of a template file.
type TemplateAccount struct {
	Code   string   `toml:"code"`
	Name   string   `toml:"name"`
	Type   string   `toml:"type"`
	Parent string   `toml:"parent"`
	Tags   []string `toml:"tags"`
}

// LoadTemplate returns the named template, falling back to the default for unknown names.
func LoadTemplate(name string) (Template, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	b, err := templateFS.ReadFile("templates/" + name + ".toml")
	if err != nil {
		b, err = templateFS.ReadFile("templates/" + DefaultTemplate + ".toml")
		if err != nil {
			return Template{}, fmt.Errorf("reading default template: %w", err)
		}
	}

	var tpl Template
	if err := toml.Unmarshal(b, &tpl); err != nil {
		return Template{}, fmt.Errorf("parsing template %s: %w", name, err)
	}
	return tpl, nil
}

// TemplateNames lists the embedded templates.
func TemplateNames() []string {
	entries, err := templateFS.ReadDir("templates")
	if err != nil {
		return nil
	}
	var names []string
	for _, e := range entries {
		names = append(names, strings.TrimSuffix(e.Name(), ".toml"))
	}
	sort.Strings(names)
	return names
}

// Inputs converts the template rows into upsert inputs.
func (t Template) Inputs() []AccountInput {
	inputs := make([]AccountInput, 0, len(t.Accounts))
	for _, a := range t.Accounts {
		at, _ := model.ParseAccountType(a.Type)
		inputs = append(inputs, AccountInput{
			Code:       a.Code,
			Name:       a.Name,
			Type:       at,
			ParentCode: a.Parent,
			Tags:       a.Tags,
		})
	}
	return inputs
}
