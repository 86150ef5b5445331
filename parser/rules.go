package parser

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/andybalholm/cascadia"

	"github.com/aluiziolira/go-manga-series/models"
)

// ErrUnknownField is returned when a field name has no configured rule.
var ErrUnknownField = errors.New("unknown field")

type rule struct {
	spec    models.FieldSpec
	pattern *regexp.Regexp
}

// Rules is a validated, read-only set of field specs. Safe for concurrent use.
type Rules struct {
	order  []string
	byName map[string]rule
}

// NewRules validates specs and compiles their selectors and patterns.
func NewRules(specs []models.FieldSpec) (*Rules, error) {
	if len(specs) == 0 {
		return nil, fmt.Errorf("no field specs provided")
	}

	r := &Rules{
		order:  make([]string, 0, len(specs)),
		byName: make(map[string]rule, len(specs)),
	}
	for i, spec := range specs {
		spec.Name = strings.TrimSpace(spec.Name)
		if spec.Name == "" {
			return nil, fmt.Errorf("field %d: name cannot be empty", i)
		}
		if spec.Name == models.MangaIDKey {
			return nil, fmt.Errorf("field %q: name is reserved", spec.Name)
		}
		if _, dup := r.byName[spec.Name]; dup {
			return nil, fmt.Errorf("field %q: duplicate name", spec.Name)
		}
		if spec.Transform == "" {
			spec.Transform = models.TransformText
		}
		if err := validateSpec(spec); err != nil {
			return nil, fmt.Errorf("field %q: %w", spec.Name, err)
		}

		compiled := rule{spec: spec}
		if spec.Pattern != "" {
			re, err := regexp.Compile(spec.Pattern)
			if err != nil {
				return nil, fmt.Errorf("field %q: invalid pattern: %w", spec.Name, err)
			}
			compiled.pattern = re
		}

		r.order = append(r.order, spec.Name)
		r.byName[spec.Name] = compiled
	}
	return r, nil
}

func validateSpec(spec models.FieldSpec) error {
	if strings.TrimSpace(spec.Selector) == "" {
		return fmt.Errorf("selector cannot be empty")
	}
	if _, err := cascadia.Compile(spec.Selector); err != nil {
		return fmt.Errorf("invalid selector %q: %w", spec.Selector, err)
	}
	switch spec.Transform {
	case models.TransformText, models.TransformHTML, models.TransformList:
	case models.TransformAttr, models.TransformAttrList:
		if spec.Attr == "" {
			return fmt.Errorf("transform %s requires attr", spec.Transform)
		}
	default:
		return fmt.Errorf("unknown transform %q", spec.Transform)
	}
	return nil
}

// Has reports whether name is a configured field.
func (r *Rules) Has(name string) bool {
	if r == nil {
		return false
	}
	_, ok := r.byName[name]
	return ok
}

// Names returns field names in configuration order.
func (r *Rules) Names() []string {
	if r == nil {
		return nil
	}
	out := make([]string, len(r.order))
	copy(out, r.order)
	return out
}

// Specs returns a copy of the specs in configuration order.
func (r *Rules) Specs() []models.FieldSpec {
	if r == nil {
		return nil
	}
	out := make([]models.FieldSpec, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, r.byName[name].spec)
	}
	return out
}

// IsList reports whether the named field produces a list value.
func (r *Rules) IsList(name string) bool {
	if r == nil {
		return false
	}
	return r.byName[name].spec.Transform.IsList()
}
