package parser

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/aluiziolira/go-manga-series/models"
)

// ParseAll extracts every configured field from doc, in configuration order.
// A selector that matches nothing yields the empty value for its transform.
func ParseAll(doc *goquery.Document, rules *Rules) map[string]any {
	out := make(map[string]any, len(rules.order))
	for _, name := range rules.order {
		out[name] = extract(doc, rules.byName[name])
	}
	return out
}

// ParseOne extracts a single field. It returns ErrUnknownField when name is not configured.
func ParseOne(doc *goquery.Document, rules *Rules, name string) (any, error) {
	r, ok := rules.byName[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownField, name)
	}
	return extract(doc, r), nil
}

func extract(doc *goquery.Document, r rule) any {
	var sel *goquery.Selection
	if doc != nil {
		sel = doc.Find(r.spec.Selector)
	}

	switch r.spec.Transform {
	case models.TransformList, models.TransformAttrList:
		items := []string{}
		if sel == nil {
			return items
		}
		seen := make(map[string]struct{})
		sel.Each(func(_ int, s *goquery.Selection) {
			var v string
			if r.spec.Transform == models.TransformAttrList {
				v, _ = s.Attr(r.spec.Attr)
			} else {
				v = s.Text()
			}
			v = r.apply(NormalizeText(v))
			if v == "" {
				return
			}
			if _, dup := seen[v]; dup {
				return
			}
			seen[v] = struct{}{}
			items = append(items, v)
		})
		return items
	}

	if sel == nil || sel.Length() == 0 {
		return ""
	}
	var v string
	switch r.spec.Transform {
	case models.TransformAttr:
		v, _ = sel.First().Attr(r.spec.Attr)
		v = strings.TrimSpace(v)
	case models.TransformHTML:
		html, err := sel.First().Html()
		if err != nil {
			return ""
		}
		v = strings.TrimSpace(html)
	default:
		v = NormalizeText(sel.Text())
	}
	return r.apply(v)
}

func (r rule) apply(v string) string {
	if r.pattern == nil || v == "" {
		return v
	}
	m := r.pattern.FindStringSubmatch(v)
	switch {
	case m == nil:
		return ""
	case len(m) > 1:
		return strings.TrimSpace(m[1])
	default:
		return strings.TrimSpace(m[0])
	}
}

// NormalizeText collapses runs of whitespace into single spaces and trims the result.
func NormalizeText(text string) string {
	return strings.Join(strings.Fields(text), " ")
}
