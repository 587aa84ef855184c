// Package openapi turns OpenAPI 3 documents into HAP tool descriptors.
//
// Each operation becomes one hap.Descriptor: path and query parameters come
// from the operation's parameters, body parameters from the properties of
// its application/json request body.
package openapi

import (
	"context"
	"fmt"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"unicode"

	"github.com/getkin/kin-openapi/openapi3"

	"github.com/bobmcallan/hap-mcp/internal/common"
	"github.com/bobmcallan/hap-mcp/internal/hap"
)

// inputsKey is the literal body key used by HAP workflow hooks. It is
// exposed to callers as "inputs".
const inputsKey = "{inputs}"

var methodOrder = []string{"GET", "POST", "PUT", "PATCH", "DELETE"}

// LoadDescriptors reads an OpenAPI document (YAML or JSON) and returns one
// descriptor per operation. Operations that do not form a valid descriptor
// are skipped with a warning.
func LoadDescriptors(ctx context.Context, path string, logger *common.Logger) ([]hap.Descriptor, error) {
	if logger == nil {
		logger = common.NewSilentLogger()
	}

	loader := openapi3.NewLoader()
	loader.Context = ctx
	loader.IsExternalRefsAllowed = false

	doc, err := loader.LoadFromFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load OpenAPI document %s: %w", path, err)
	}
	return convert(doc, fileStem(path), logger), nil
}

// LoadDescriptorsFromData is LoadDescriptors for an in-memory document.
func LoadDescriptorsFromData(ctx context.Context, data []byte, source string, logger *common.Logger) ([]hap.Descriptor, error) {
	if logger == nil {
		logger = common.NewSilentLogger()
	}

	loader := openapi3.NewLoader()
	loader.Context = ctx
	loader.IsExternalRefsAllowed = false

	doc, err := loader.LoadFromData(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse OpenAPI document %s: %w", source, err)
	}
	return convert(doc, fileStem(source), logger), nil
}

func convert(doc *openapi3.T, stem string, logger *common.Logger) []hap.Descriptor {
	if doc.Paths == nil {
		return nil
	}

	items := doc.Paths.Map()
	paths := make([]string, 0, len(items))
	for p := range items {
		paths = append(paths, p)
	}
	sort.Strings(paths)

	var out []hap.Descriptor
	for _, p := range paths {
		item := items[p]
		ops := item.Operations()
		for _, method := range methodOrder {
			op, ok := ops[method]
			if !ok || op == nil {
				continue
			}
			d := operationDescriptor(p, method, item.Parameters, op, stem)
			if err := d.Validate(); err != nil {
				logger.Warn().Str("path", p).Str("method", method).Str("error", err.Error()).Msg("skipping OpenAPI operation")
				continue
			}
			out = append(out, d)
		}
	}
	return out
}

func operationDescriptor(path, method string, shared openapi3.Parameters, op *openapi3.Operation, stem string) hap.Descriptor {
	summary := collapseSpace(op.Summary)
	description := collapseSpace(op.Description)
	if description == "" {
		description = summary
	}

	d := hap.Descriptor{
		Name:        toolName(op.OperationID, summary, method, stem),
		Title:       summary,
		Description: description,
		Method:      hap.Method(method),
		Path:        path,
	}

	seen := map[string]bool{}
	// Operation-level parameters override path-level ones of the same name.
	for _, params := range []openapi3.Parameters{op.Parameters, shared} {
		for _, ref := range params {
			if ref == nil || ref.Value == nil {
				continue
			}
			pv := ref.Value
			var in hap.Location
			switch pv.In {
			case openapi3.ParameterInPath:
				in = hap.InPath
			case openapi3.ParameterInQuery:
				in = hap.InQuery
			default:
				continue
			}
			if seen[pv.Name] {
				continue
			}
			seen[pv.Name] = true

			param := schemaParam(pv.Name, pv.Schema)
			param.In = in
			param.Required = pv.Required || in == hap.InPath
			if pv.Description != "" {
				param.Description = collapseSpace(pv.Description)
			}
			d.Params = append(d.Params, param)
		}
	}

	for _, param := range bodyParams(op) {
		if seen[param.Name] {
			continue
		}
		seen[param.Name] = true
		d.Params = append(d.Params, param)
	}
	return d
}

func bodyParams(op *openapi3.Operation) []hap.Param {
	if op.RequestBody == nil || op.RequestBody.Value == nil {
		return nil
	}
	media := op.RequestBody.Value.Content.Get("application/json")
	if media == nil || media.Schema == nil || media.Schema.Value == nil {
		return nil
	}
	schema := media.Schema.Value

	required := make(map[string]bool, len(schema.Required))
	for _, name := range schema.Required {
		required[name] = true
	}

	// Properties is a map, so document order is gone; sort for a stable body.
	names := make([]string, 0, len(schema.Properties))
	for name := range schema.Properties {
		names = append(names, name)
	}
	sort.Strings(names)

	params := make([]hap.Param, 0, len(names))
	for _, name := range names {
		param := schemaParam(name, schema.Properties[name])
		if name == inputsKey {
			param.Name = "inputs"
			param.BodyKey = inputsKey
		}
		param.In = hap.InBody
		param.Required = required[name]
		params = append(params, param)
	}
	return params
}

// schemaParam maps a resolved schema onto a parameter's kind, default and description.
func schemaParam(name string, ref *openapi3.SchemaRef) hap.Param {
	p := hap.Param{Name: name, Kind: hap.KindAny}
	if ref == nil || ref.Value == nil {
		return p
	}
	s := ref.Value
	p.Kind = schemaKind(s)
	if p.Kind == hap.KindArray && s.Items != nil && s.Items.Value != nil {
		p.Items = schemaKind(s.Items.Value)
	}
	p.Default = s.Default
	p.Description = collapseSpace(s.Description)
	return p
}

func schemaKind(s *openapi3.Schema) hap.Kind {
	if len(s.OneOf) > 0 || len(s.AnyOf) > 0 || s.Type == nil {
		return hap.KindAny
	}
	types := s.Type.Slice()
	if len(types) != 1 {
		return hap.KindAny
	}
	switch types[0] {
	case openapi3.TypeString:
		return hap.KindString
	case openapi3.TypeInteger:
		return hap.KindInteger
	case openapi3.TypeNumber:
		return hap.KindNumber
	case openapi3.TypeBoolean:
		return hap.KindBoolean
	case openapi3.TypeArray:
		return hap.KindArray
	case openapi3.TypeObject:
		return hap.KindObject
	default:
		return hap.KindAny
	}
}

var nonWord = regexp.MustCompile(`[^a-zA-Z0-9_]+`)

// toolName derives a lower camel case name from the operationId, then the
// summary, then method and file stem.
func toolName(operationID, summary, method, stem string) string {
	for _, candidate := range []string{operationID, summary} {
		if name := camelize(candidate); name != "" {
			return name
		}
	}
	return camelize(strings.ToLower(method) + "_" + strings.ReplaceAll(stem, "-", "_"))
}

// camelize joins the words of s in lower camel case. Existing inner
// capitals are kept, so "getRecordList" is returned unchanged.
func camelize(s string) string {
	words := strings.FieldsFunc(nonWord.ReplaceAllString(s, " "), func(r rune) bool {
		return r == ' ' || r == '_'
	})
	var b strings.Builder
	for i, w := range words {
		runes := []rune(w)
		if i == 0 {
			runes[0] = unicode.ToLower(runes[0])
		} else {
			runes[0] = unicode.ToUpper(runes[0])
		}
		b.WriteString(string(runes))
	}
	return b.String()
}

func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func fileStem(path string) string {
	base := filepath.Base(path)
	if i := strings.IndexByte(base, '.'); i > 0 {
		return base[:i]
	}
	return base
}
