package hap

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

// resolveArguments keeps only declared parameters, drops null values and
// fills declared defaults for anything left absent. Undeclared keys,
// including AnnotationParam, never reach the request.
func resolveArguments(d Descriptor, args map[string]any) map[string]any {
	resolved := make(map[string]any, len(d.Params))
	for _, p := range d.Params {
		if v, ok := args[p.Name]; ok && v != nil {
			resolved[p.Name] = v
			continue
		}
		if p.Default != nil {
			resolved[p.Name] = p.Default
		}
	}
	return resolved
}

// buildURL resolves the path template against args and appends the query
// string for GET and DELETE descriptors.
func buildURL(baseURL string, d Descriptor, args map[string]any) (string, error) {
	path := d.Path
	for _, p := range d.PathParams() {
		v, ok := args[p.Name]
		if !ok {
			return "", fmt.Errorf("missing path parameter %q", p.Name)
		}
		s, err := formatValue(v)
		if err != nil {
			return "", fmt.Errorf("path parameter %q: %w", p.Name, err)
		}
		path = strings.ReplaceAll(path, "{"+p.Name+"}", url.PathEscape(s))
	}

	fullURL := strings.TrimRight(baseURL, "/") + path

	if d.Method != MethodGet && d.Method != MethodDelete {
		return fullURL, nil
	}

	query := url.Values{}
	for _, p := range d.QueryParams() {
		v, ok := args[p.Name]
		if !ok {
			continue
		}
		s, err := formatValue(v)
		if err != nil {
			return "", fmt.Errorf("query parameter %q: %w", p.Name, err)
		}
		query.Set(p.Name, s)
	}
	if len(query) > 0 {
		fullURL += "?" + query.Encode()
	}
	return fullURL, nil
}

// buildBody encodes the body parameters as a JSON object in declaration
// order. Returns nil when the descriptor sends no body.
func buildBody(d Descriptor, args map[string]any) ([]byte, error) {
	if d.Method == MethodGet {
		return nil, nil
	}
	params := d.BodyParams()
	if len(params) == 0 {
		return nil, nil
	}

	var buf bytes.Buffer
	buf.WriteByte('{')
	first := true
	for _, p := range params {
		v, ok := args[p.Name]
		if !ok {
			continue
		}
		key, err := json.Marshal(p.bodyKey())
		if err != nil {
			return nil, err
		}
		val, err := json.Marshal(v)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal %q: %w", p.Name, err)
		}
		if !first {
			buf.WriteByte(',')
		}
		first = false
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// formatValue renders an argument in its plain string form: booleans as
// true/false, numbers in decimal, arrays and objects as compact JSON.
func formatValue(v any) (string, error) {
	switch val := v.(type) {
	case string:
		return val, nil
	case bool:
		return strconv.FormatBool(val), nil
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64), nil
	case float32:
		return strconv.FormatFloat(float64(val), 'f', -1, 32), nil
	case int:
		return strconv.Itoa(val), nil
	case int64:
		return strconv.FormatInt(val, 10), nil
	case json.Number:
		return val.String(), nil
	case fmt.Stringer:
		return val.String(), nil
	default:
		b, err := json.Marshal(val)
		if err != nil {
			return "", err
		}
		return string(b), nil
	}
}
