package model

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"

	"github.com/goccy/go-json"
)

// Fingerprint hashes every registered declaration. Registries holding the
// same models have the same fingerprint whatever order they were registered in.
func (r *Registry) Fingerprint() string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	hasher := sha256.New()
	for _, name := range r.sortedNames() {
		writeModel(hasher, r.models[name])
	}
	return hex.EncodeToString(hasher.Sum(nil)[:8])
}

func writeModel(w io.Writer, m *DocumentModel) {
	fmt.Fprintf(w, "model %q base=%q dynamic=%t abstract=%t\n", m.Name, m.Base, m.Dynamic, m.Abstract)
	if m.Override != nil {
		body, err := json.Marshal(m.Override)
		if err != nil {
			body = []byte(err.Error())
		}
		fmt.Fprintf(w, "override %s\n", body)
	}
	for _, f := range m.Fields {
		fmt.Fprintf(w, "field %q ", f.Name)
		writeDescriptor(w, f.Descriptor)
		fmt.Fprintln(w)
	}
}

func writeDescriptor(w io.Writer, d *FieldDescriptor) {
	if d == nil {
		fmt.Fprint(w, "<nil>")
		return
	}

	fmt.Fprintf(w, "{%s required=%t unique=%t excluded=%t target=%q", d.Kind, d.Required, d.Unique, d.Excluded, d.Target)
	switch {
	case d.HasCallableDefault():
		fmt.Fprint(w, " default=<factory>")
	case d.Default != nil:
		fmt.Fprintf(w, " default=%#v", d.Default)
	}
	fmt.Fprintf(w, " value=[%s,%s] length=[%s,%s]",
		optional(d.MinValue), optional(d.MaxValue), optional(d.MinLength), optional(d.MaxLength))
	if len(d.Choices) > 0 {
		fmt.Fprintf(w, " choices=%#v", d.Choices)
	}
	if len(d.Symbols) > 0 {
		fmt.Fprintf(w, " symbols=%#v", d.Symbols)
	}
	if d.Regex != nil {
		fmt.Fprintf(w, " regex=%q", fmt.Sprint(d.Regex))
	}
	if d.URLRegex != nil {
		fmt.Fprintf(w, " url_regex=%q", fmt.Sprint(d.URLRegex))
	}
	if d.Field != nil {
		fmt.Fprint(w, " field=")
		writeDescriptor(w, d.Field)
	}
	fmt.Fprint(w, "}")
}

func optional[T int | float64](p *T) string {
	if p == nil {
		return "-"
	}
	return fmt.Sprint(*p)
}
