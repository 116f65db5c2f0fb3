package variables

import (
	"regexp"
	"strings"

	"github.com/aretw0/cuepoint/pkg/domain"
	"github.com/aretw0/cuepoint/pkg/nodes"
)

// Node attributes that bind content to variables.
const (
	AttrVar         = "data-var"
	AttrVarTemplate = "data-var-template"
)

var placeholder = regexp.MustCompile(`%([^%]+)%`)

// BindDocument renders variable values into nodes carrying AttrVar or
// AttrVarTemplate, now and after every change.
func (s *Store) BindDocument(doc *nodes.Document) {
	s.doc = doc
	for _, name := range s.order {
		s.render(name)
	}
	for name := range s.builtins {
		s.render(name)
	}
}

func (s *Store) render(name string) {
	if s.doc == nil {
		return
	}
	value, ok := s.Get(name)
	if !ok {
		return
	}

	for _, n := range s.doc.WithAttr(AttrVar) {
		if n.Attributes[AttrVar] == name {
			n.Content = domain.ToText(value)
		}
	}
	for _, n := range s.doc.WithAttr(AttrVarTemplate) {
		tpl := n.Attributes[AttrVarTemplate]
		if strings.Contains(tpl, "%"+name+"%") {
			n.Content = s.Expand(tpl)
		}
	}
}

// Expand replaces %name% placeholders with current values. Unknown names are left as is.
func (s *Store) Expand(tpl string) string {
	return placeholder.ReplaceAllStringFunc(tpl, func(m string) string {
		if v, ok := s.Get(m[1 : len(m)-1]); ok {
			return domain.ToText(v)
		}
		return m
	})
}
