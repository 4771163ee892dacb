// Package content defines the closed set of entities the CMS manages and
// the validation rules for each. The registry replaces a switch-per-entity
// dispatch: handlers and services look entities up by name and unsupported
// names never reach persistence.
package content

import (
	"fmt"
	"strings"

	"go-portfolio-cms/pkg/apierror"
)

// Singleton entities use a fixed record key and upsert instead of create.
const SingletonKey = "singleton"

type Field struct {
	Name     string
	Required bool
	MaxLen   int
	Enum     []string
	// RichText fields are HTML-sanitized before persistence.
	RichText bool
}

type Definition struct {
	Name       string
	Fields     []Field
	Searchable []string
	Singleton  bool
}

type Registry struct {
	defs map[string]Definition
}

// MustRegistry builds the full entity table and panics on an inconsistent
// definition. Running the completeness check at startup replaces runtime
// default-case errors.
func MustRegistry() *Registry {
	defs := []Definition{
		{
			Name: "project",
			Fields: []Field{
				{Name: "title", Required: true, MaxLen: 200},
				{Name: "slug", Required: true, MaxLen: 200},
				{Name: "summary", MaxLen: 500},
				{Name: "description", RichText: true, MaxLen: 50000},
				{Name: "tech", MaxLen: 1000},
				{Name: "repo_url", MaxLen: 500},
				{Name: "live_url", MaxLen: 500},
				{Name: "featured_image", MaxLen: 500},
				{Name: "status", Enum: []string{"draft", "published", "archived"}},
			},
			Searchable: []string{"title", "summary", "tech"},
		},
		{
			Name: "blog-post",
			Fields: []Field{
				{Name: "title", Required: true, MaxLen: 200},
				{Name: "slug", Required: true, MaxLen: 200},
				{Name: "excerpt", MaxLen: 500},
				{Name: "body", Required: true, RichText: true, MaxLen: 100000},
				{Name: "tags", MaxLen: 500},
				{Name: "cover_image", MaxLen: 500},
				{Name: "status", Enum: []string{"draft", "published"}},
			},
			Searchable: []string{"title", "excerpt", "tags"},
		},
		{
			Name: "idea",
			Fields: []Field{
				{Name: "title", Required: true, MaxLen: 200},
				{Name: "body", RichText: true, MaxLen: 20000},
				{Name: "status", Enum: []string{"seed", "exploring", "building", "shipped"}},
			},
			Searchable: []string{"title"},
		},
		{
			Name: "photo",
			Fields: []Field{
				{Name: "title", Required: true, MaxLen: 200},
				{Name: "url", Required: true, MaxLen: 500},
				{Name: "thumbnail_url", MaxLen: 500},
				{Name: "caption", MaxLen: 500},
				{Name: "taken_at", MaxLen: 50},
			},
			Searchable: []string{"title", "caption"},
		},
		{
			Name: "video",
			Fields: []Field{
				{Name: "title", Required: true, MaxLen: 200},
				{Name: "url", Required: true, MaxLen: 500},
				{Name: "description", MaxLen: 2000},
			},
			Searchable: []string{"title", "description"},
		},
		{
			Name: "document",
			Fields: []Field{
				{Name: "title", Required: true, MaxLen: 200},
				{Name: "url", Required: true, MaxLen: 500},
				{Name: "description", MaxLen: 2000},
			},
			Searchable: []string{"title", "description"},
		},
		{
			Name: "skill",
			Fields: []Field{
				{Name: "name", Required: true, MaxLen: 100},
				{Name: "category", MaxLen: 100},
				{Name: "level", Enum: []string{"beginner", "intermediate", "advanced", "expert"}},
			},
			Searchable: []string{"name", "category"},
		},
		{
			Name: "timeline-item",
			Fields: []Field{
				{Name: "title", Required: true, MaxLen: 200},
				{Name: "organization", MaxLen: 200},
				{Name: "description", MaxLen: 2000},
				{Name: "started_at", Required: true, MaxLen: 50},
				{Name: "ended_at", MaxLen: 50},
				{Name: "kind", Enum: []string{"work", "education", "award", "other"}},
			},
			Searchable: []string{"title", "organization"},
		},
		{
			Name: "resume",
			Fields: []Field{
				{Name: "body", Required: true, RichText: true, MaxLen: 100000},
				{Name: "pdf_url", MaxLen: 500},
			},
			Searchable: []string{"body"},
			Singleton:  true,
		},
		{
			Name: "site-config",
			Fields: []Field{
				{Name: "site_title", Required: true, MaxLen: 200},
				{Name: "tagline", MaxLen: 500},
				{Name: "about", MaxLen: 10000},
				{Name: "social_links", MaxLen: 2000},
				{Name: "contact_email", MaxLen: 200},
			},
			Searchable: []string{"site_title"},
			Singleton:  true,
		},
	}

	byName := make(map[string]Definition, len(defs))
	for _, def := range defs {
		if def.Name == "" || len(def.Fields) == 0 || len(def.Searchable) == 0 {
			panic(fmt.Sprintf("content: incomplete definition %q", def.Name))
		}

		fieldNames := make(map[string]struct{}, len(def.Fields))
		for _, f := range def.Fields {
			fieldNames[f.Name] = struct{}{}
		}
		for _, s := range def.Searchable {
			if _, ok := fieldNames[s]; !ok {
				panic(fmt.Sprintf("content: %q searchable field %q is not defined", def.Name, s))
			}
		}

		if _, dup := byName[def.Name]; dup {
			panic(fmt.Sprintf("content: duplicate definition %q", def.Name))
		}
		byName[def.Name] = def
	}

	return &Registry{defs: byName}
}

func (r *Registry) Lookup(name string) (Definition, bool) {
	def, ok := r.defs[name]
	return def, ok
}

func (r *Registry) IsSupported(name string) bool {
	_, ok := r.defs[name]
	return ok
}

func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.defs))
	for name := range r.defs {
		names = append(names, name)
	}
	return names
}

// Validate checks payload against the definition, rejecting on the first
// violation with a field-level message. Unknown fields are rejected so
// typos do not silently persist.
func (d Definition) Validate(payload map[string]any) error {
	if payload == nil {
		return apierror.BadRequest("payload is required")
	}

	for key := range payload {
		if !d.hasField(key) {
			return apierror.Validation(key, "unknown field")
		}
	}

	for _, field := range d.Fields {
		raw, present := payload[field.Name]

		value, isString := raw.(string)
		if present && !isString {
			return apierror.Validation(field.Name, "must be a string")
		}
		value = strings.TrimSpace(value)

		if field.Required && value == "" {
			return apierror.Validation(field.Name, "is required")
		}

		if value == "" {
			continue
		}

		if field.MaxLen > 0 && len(value) > field.MaxLen {
			return apierror.Validation(field.Name, fmt.Sprintf("must be at most %d characters", field.MaxLen))
		}

		if len(field.Enum) > 0 && !contains(field.Enum, value) {
			return apierror.Validation(field.Name, fmt.Sprintf("must be one of: %s", strings.Join(field.Enum, ", ")))
		}
	}

	return nil
}

func (d Definition) hasField(name string) bool {
	for _, f := range d.Fields {
		if f.Name == name {
			return true
		}
	}
	return false
}

// RichTextFields lists the fields that must be sanitized before write.
func (d Definition) RichTextFields() []string {
	var out []string
	for _, f := range d.Fields {
		if f.RichText {
			out = append(out, f.Name)
		}
	}
	return out
}

func contains(values []string, want string) bool {
	for _, v := range values {
		if v == want {
			return true
		}
	}
	return false
}
