// Package hap dispatches tool invocations to the HAP REST API.
//
// Each tool is a Descriptor: an HTTP method, a path template and a typed
// parameter list saying where every argument goes (path, query or body).
// Client.Dispatch turns one Descriptor plus one argument map into exactly
// one outbound request and one Envelope.
package hap

import (
	"fmt"
	"regexp"
	"strings"
)

// Method is an HTTP method supported by tool descriptors.
type Method string

const (
	MethodGet    Method = "GET"
	MethodPost   Method = "POST"
	MethodPut    Method = "PUT"
	MethodPatch  Method = "PATCH"
	MethodDelete Method = "DELETE"
)

// allowedMethods is the whitelist of HTTP methods for descriptors.
var allowedMethods = map[Method]bool{
	MethodGet: true, MethodPost: true, MethodPut: true, MethodPatch: true, MethodDelete: true,
}

// Kind is the value type of a tool parameter.
type Kind string

const (
	KindString  Kind = "string"
	KindNumber  Kind = "number"
	KindInteger Kind = "integer"
	KindBoolean Kind = "boolean"
	KindArray   Kind = "array"
	KindObject  Kind = "object"
	KindAny     Kind = "any"
)

// Location says where an argument is placed in the outbound request.
type Location string

const (
	InPath  Location = "path"
	InQuery Location = "query"
	InBody  Location = "body"
)

// AnnotationParam is the free-text argument every tool accepts for the
// calling agent's own bookkeeping. The dispatcher never forwards it.
const AnnotationParam = "ai_description"

// Param describes one tool argument.
type Param struct {
	Name        string
	Kind        Kind
	Items       Kind // element kind for KindArray
	Required    bool
	Default     any
	Description string
	In          Location
	// BodyKey overrides the JSON key used for a body argument.
	BodyKey string
}

// bodyKey returns the JSON key used for a body argument.
func (p Param) bodyKey() string {
	if p.BodyKey != "" {
		return p.BodyKey
	}
	return p.Name
}

// Descriptor describes one supported remote operation.
type Descriptor struct {
	Name        string
	Title       string
	Description string
	Method      Method
	Path        string
	Params      []Param
}

// PathParams returns the parameters substituted into the path template.
func (d Descriptor) PathParams() []Param { return d.paramsIn(InPath) }

// QueryParams returns the parameters sent as query string.
func (d Descriptor) QueryParams() []Param { return d.paramsIn(InQuery) }

// BodyParams returns the parameters sent in the JSON body.
func (d Descriptor) BodyParams() []Param { return d.paramsIn(InBody) }

func (d Descriptor) paramsIn(loc Location) []Param {
	var out []Param
	for _, p := range d.Params {
		if p.In == loc {
			out = append(out, p)
		}
	}
	return out
}

// Param looks up a parameter by name.
func (d Descriptor) Param(name string) (Param, bool) {
	for _, p := range d.Params {
		if p.Name == name {
			return p, true
		}
	}
	return Param{}, false
}

var placeholderPattern = regexp.MustCompile(`\{([^{}/]+)\}`)

// Placeholders returns the placeholder names embedded in the path template.
func (d Descriptor) Placeholders() []string {
	matches := placeholderPattern.FindAllStringSubmatch(d.Path, -1)
	names := make([]string, 0, len(matches))
	for _, m := range matches {
		names = append(names, m[1])
	}
	return names
}

// Validate checks the descriptor's structural invariants.
func (d Descriptor) Validate() error {
	if d.Name == "" {
		return fmt.Errorf("tool has empty name")
	}
	if !allowedMethods[d.Method] {
		return fmt.Errorf("tool %q has unsupported method %q", d.Name, d.Method)
	}
	if d.Path == "" || !strings.HasPrefix(d.Path, "/") {
		return fmt.Errorf("tool %q has invalid path %q (must start with /)", d.Name, d.Path)
	}
	if strings.Contains(d.Path, "..") {
		return fmt.Errorf("tool %q has invalid path %q (contains ..)", d.Name, d.Path)
	}

	seen := make(map[string]bool, len(d.Params))
	for _, p := range d.Params {
		if p.Name == "" {
			return fmt.Errorf("tool %q has a parameter with empty name", d.Name)
		}
		if p.Name == AnnotationParam {
			return fmt.Errorf("tool %q declares reserved parameter %q", d.Name, AnnotationParam)
		}
		if seen[p.Name] {
			return fmt.Errorf("tool %q declares parameter %q twice", d.Name, p.Name)
		}
		seen[p.Name] = true

		switch p.In {
		case InPath:
		case InQuery:
			if d.Method != MethodGet && d.Method != MethodDelete {
				return fmt.Errorf("tool %q: query parameter %q is only allowed on GET or DELETE", d.Name, p.Name)
			}
		case InBody:
			if d.Method == MethodGet {
				return fmt.Errorf("tool %q: GET cannot carry body parameter %q", d.Name, p.Name)
			}
		default:
			return fmt.Errorf("tool %q: parameter %q has unknown location %q", d.Name, p.Name, p.In)
		}
	}

	placeholders := make(map[string]bool)
	for _, name := range d.Placeholders() {
		p, ok := d.Param(name)
		if !ok || p.In != InPath {
			return fmt.Errorf("tool %q: path placeholder {%s} has no path parameter", d.Name, name)
		}
		placeholders[name] = true
	}
	for _, p := range d.PathParams() {
		if !placeholders[p.Name] {
			return fmt.Errorf("tool %q: path parameter %q has no placeholder in %q", d.Name, p.Name, d.Path)
		}
	}
	return nil
}
