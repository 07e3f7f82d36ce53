package builtins

import (
	"fmt"
	"sort"
	"strings"

	"mercator-hq/mpl-builtins/pkg/mpl/ast"
	"mercator-hq/mpl-builtins/pkg/mpl/value"
)

// Family groups builtins that are enabled or disabled together.
type Family string

const (
	FamilyBase64     Family = "base64"
	FamilyBase64URL  Family = "base64url"
	FamilyHex        Family = "hex"
	FamilyURLQuery   Family = "urlquery"
	FamilyJSON       Family = "json"
	FamilyJSONSchema Family = "jsonschema"
	FamilyYAML       Family = "yaml"
)

// AllFamilies returns every known family in registration order.
func AllFamilies() []Family {
	return []Family{
		FamilyBase64,
		FamilyBase64URL,
		FamilyHex,
		FamilyURLQuery,
		FamilyJSON,
		FamilyJSONSchema,
		FamilyYAML,
	}
}

// ParseFamily converts a configured family name to a Family.
func ParseFamily(name string) (Family, error) {
	normalized := Family(strings.ToLower(strings.TrimSpace(name)))
	for _, f := range AllFamilies() {
		if f == normalized {
			return f, nil
		}
	}
	return "", fmt.Errorf("unknown builtin family %q", name)
}

// Fn is the signature shared by all builtins. span is the whole call, params
// are the argument expressions (used to attribute errors to one argument),
// args are the evaluated arguments and strict selects fail-fast error
// handling where a builtin supports both modes.
type Fn func(span ast.Span, params []ast.Expr, args []value.Value, strict bool) (value.Value, error)

// Builtin is a named function with a fixed arity.
type Builtin struct {
	Name   string
	Family Family
	Arity  int
	Fn     Fn
}

// catalog lists every builtin this package implements.
var catalog = []Builtin{
	{Name: "base64.decode", Family: FamilyBase64, Arity: 1, Fn: base64Decode},
	{Name: "base64.encode", Family: FamilyBase64, Arity: 1, Fn: base64Encode},
	{Name: "base64.is_valid", Family: FamilyBase64, Arity: 1, Fn: base64IsValid},

	{Name: "base64url.decode", Family: FamilyBase64URL, Arity: 1, Fn: base64URLDecode},
	{Name: "base64url.encode", Family: FamilyBase64URL, Arity: 1, Fn: base64URLEncode},
	{Name: "base64url.encode_no_pad", Family: FamilyBase64URL, Arity: 1, Fn: base64URLEncodeNoPad},

	{Name: "hex.decode", Family: FamilyHex, Arity: 1, Fn: hexDecode},
	{Name: "hex.encode", Family: FamilyHex, Arity: 1, Fn: hexEncode},

	{Name: "urlquery.decode_object", Family: FamilyURLQuery, Arity: 1, Fn: urlqueryDecodeObject},

	{Name: "json.is_valid", Family: FamilyJSON, Arity: 1, Fn: jsonIsValid},
	{Name: "json.marshal", Family: FamilyJSON, Arity: 1, Fn: jsonMarshal},
	{Name: "json.unmarshal", Family: FamilyJSON, Arity: 1, Fn: jsonUnmarshal},

	{Name: "json.match_schema", Family: FamilyJSONSchema, Arity: 2, Fn: jsonMatchSchema},
	{Name: "json.verify_schema", Family: FamilyJSONSchema, Arity: 1, Fn: jsonVerifySchema},

	{Name: "yaml.is_valid", Family: FamilyYAML, Arity: 1, Fn: yamlIsValid},
	{Name: "yaml.marshal", Family: FamilyYAML, Arity: 1, Fn: yamlMarshal},
	{Name: "yaml.unmarshal", Family: FamilyYAML, Arity: 1, Fn: yamlUnmarshal},
}

// Registry maps builtin names to builtins. It is immutable after
// construction and safe for concurrent use.
type Registry struct {
	builtins map[string]Builtin
	families []Family
}

// NewRegistry builds a registry holding the builtins of the given families.
// The json family is always present. Builtins of other families are absent
// and do not resolve.
func NewRegistry(families ...Family) *Registry {
	enabled := map[Family]bool{FamilyJSON: true}
	for _, f := range families {
		enabled[f] = true
	}

	r := &Registry{builtins: make(map[string]Builtin)}
	for _, f := range AllFamilies() {
		if enabled[f] {
			r.families = append(r.families, f)
		}
	}
	for _, b := range catalog {
		if enabled[b.Family] {
			r.builtins[b.Name] = b
		}
	}
	return r
}

// NewDefaultRegistry builds a registry with every family enabled.
func NewDefaultRegistry() *Registry {
	return NewRegistry(AllFamilies()...)
}

// Lookup returns the builtin registered under name.
func (r *Registry) Lookup(name string) (Builtin, bool) {
	b, ok := r.builtins[name]
	return b, ok
}

// Names returns the registered names in sorted order.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.builtins))
	for name := range r.builtins {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Builtins returns the registered builtins sorted by name.
func (r *Registry) Builtins() []Builtin {
	names := r.Names()
	out := make([]Builtin, len(names))
	for i, name := range names {
		out[i] = r.builtins[name]
	}
	return out
}

// Families returns the enabled families.
func (r *Registry) Families() []Family {
	out := make([]Family, len(r.families))
	copy(out, r.families)
	return out
}

// Len returns the number of registered builtins.
func (r *Registry) Len() int {
	return len(r.builtins)
}
