package mcp

import (
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/bobmcallan/hap-mcp/internal/hap"
)

const annotationDescription = "Describe, in natural language, why this tool is being called. Not sent to the HAP API."

// BuildTool converts a descriptor into an mcp.Tool with the matching input schema.
// Every tool also advertises the required ai_description argument.
func BuildTool(d hap.Descriptor) mcp.Tool {
	opts := []mcp.ToolOption{mcp.WithDescription(d.Description)}
	if d.Title != "" {
		opts = append(opts, mcp.WithTitleAnnotation(d.Title))
	}
	if d.Method == hap.MethodGet {
		opts = append(opts, mcp.WithReadOnlyHintAnnotation(true))
	}
	if d.Method == hap.MethodDelete {
		opts = append(opts, mcp.WithDestructiveHintAnnotation(true))
	}
	for _, p := range d.Params {
		opts = append(opts, buildParamOption(p))
	}
	opts = append(opts, mcp.WithString(hap.AnnotationParam,
		mcp.Required(),
		mcp.Description(annotationDescription),
	))
	return mcp.NewTool(d.Name, opts...)
}

// buildParamOption maps a descriptor parameter to the matching mcp-go tool option.
func buildParamOption(p hap.Param) mcp.ToolOption {
	var opts []mcp.PropertyOption
	if p.Description != "" {
		opts = append(opts, mcp.Description(p.Description))
	}
	if p.Required {
		opts = append(opts, mcp.Required())
	}
	if p.Default != nil {
		opts = append(opts, withDefault(p.Default))
	}

	switch p.Kind {
	case hap.KindNumber:
		return mcp.WithNumber(p.Name, opts...)
	case hap.KindInteger:
		return mcp.WithNumber(p.Name, append(opts, withType("integer"))...)
	case hap.KindBoolean:
		return mcp.WithBoolean(p.Name, opts...)
	case hap.KindArray:
		if p.Items != "" && p.Items != hap.KindAny {
			opts = append(opts, withItems(p.Items))
		}
		return mcp.WithArray(p.Name, opts...)
	case hap.KindObject:
		return mcp.WithObject(p.Name, opts...)
	case hap.KindAny:
		return mcp.WithString(p.Name, append(opts, withoutType())...)
	default:
		return mcp.WithString(p.Name, opts...)
	}
}

func withDefault(v any) mcp.PropertyOption {
	return func(schema map[string]any) {
		schema["default"] = v
	}
}

func withType(t string) mcp.PropertyOption {
	return func(schema map[string]any) {
		schema["type"] = t
	}
}

func withoutType() mcp.PropertyOption {
	return func(schema map[string]any) {
		delete(schema, "type")
	}
}

func withItems(k hap.Kind) mcp.PropertyOption {
	return func(schema map[string]any) {
		schema["items"] = map[string]any{"type": string(k)}
	}
}

// ValidateArguments checks required parameters and value kinds.
// Null values count as absent. Undeclared keys are left to the dispatcher,
// which ignores them.
func ValidateArguments(d hap.Descriptor, args map[string]any) error {
	var problems []string
	for _, p := range d.Params {
		v, ok := args[p.Name]
		if !ok || v == nil {
			if p.Required {
				problems = append(problems, fmt.Sprintf("%s is required", p.Name))
			}
			continue
		}
		if !kindMatches(p.Kind, v) {
			problems = append(problems, fmt.Sprintf("%s must be %s, got %s", p.Name, article(p.Kind), describe(v)))
			continue
		}
		if p.Kind == hap.KindArray && p.Items != "" && p.Items != hap.KindAny {
			for i, item := range v.([]any) {
				if !kindMatches(p.Items, item) {
					problems = append(problems, fmt.Sprintf("%s[%d] must be %s, got %s", p.Name, i, article(p.Items), describe(item)))
				}
			}
		}
	}
	if len(problems) > 0 {
		return fmt.Errorf("%s", strings.Join(problems, "; "))
	}
	return nil
}

func kindMatches(k hap.Kind, v any) bool {
	switch k {
	case hap.KindString:
		_, ok := v.(string)
		return ok
	case hap.KindNumber, hap.KindInteger:
		// Integer params advertise "integer" but accept any number.
		_, ok := toFloat(v)
		return ok
	case hap.KindBoolean:
		_, ok := v.(bool)
		return ok
	case hap.KindArray:
		_, ok := v.([]any)
		return ok
	case hap.KindObject:
		_, ok := v.(map[string]any)
		return ok
	default:
		return true
	}
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	default:
		return 0, false
	}
}

func article(k hap.Kind) string {
	switch k {
	case hap.KindArray, hap.KindObject, hap.KindInteger:
		return "an " + string(k)
	default:
		return "a " + string(k)
	}
}

func describe(v any) string {
	switch v.(type) {
	case string:
		return "string"
	case bool:
		return "boolean"
	case float64, float32, int, int64:
		return "number"
	case []any:
		return "array"
	case map[string]any:
		return "object"
	default:
		return fmt.Sprintf("%T", v)
	}
}
