package normalize

import (
	"encoding/base64"
	"fmt"
	"strings"
)

const (
	maxChildrenPerNode = 80
	maxDepth           = 32
)

var (
	blockChildKeys = []string{"children", "blocks", "results", "content"}
	skippedBlocks  = map[string]bool{"divider": true, "breadcrumb": true}
)

// BlockText walks a page or block payload depth-first and joins every text
// field it finds. Unknown shapes yield "".
func BlockText(v any) string {
	var parts []string
	collectBlock(v, 0, &parts)
	return strings.TrimSpace(strings.Join(parts, " "))
}

func collectBlock(v any, depth int, parts *[]string) {
	if depth > maxDepth {
		return
	}
	switch node := v.(type) {
	case string:
		if s := strings.TrimSpace(node); s != "" {
			*parts = append(*parts, s)
		}
	case map[string]any:
		if t, ok := node["type"].(string); ok && skippedBlocks[t] {
			return
		}
		if s, ok := node["content"].(string); ok && strings.TrimSpace(s) != "" {
			*parts = append(*parts, strings.TrimSpace(s))
		}
		for _, key := range []string{"title", "plain_text", "name"} {
			if s := textValue(node[key]); s != "" {
				*parts = append(*parts, s)
			}
		}
		if s := richText(node["rich_text"]); s != "" {
			*parts = append(*parts, s)
		}
		for _, key := range blockChildKeys {
			children, ok := node[key].([]any)
			if !ok {
				continue
			}
			if len(children) > maxChildrenPerNode {
				children = children[:maxChildrenPerNode]
			}
			for _, child := range children {
				collectBlock(child, depth+1, parts)
			}
		}
	}
}

// textValue renders a scalar or a rich-text style list as plain text.
func textValue(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(t)
	case []any:
		return richText(t)
	case map[string]any:
		return textValue(t["plain_text"])
	case bool:
		return ""
	default:
		return strings.TrimSpace(fmt.Sprint(t))
	}
}

func richText(v any) string {
	switch rt := v.(type) {
	case string:
		return strings.TrimSpace(rt)
	case []any:
		segs := make([]string, 0, len(rt))
		for _, seg := range rt {
			switch s := seg.(type) {
			case map[string]any:
				if p, ok := s["plain_text"].(string); ok && p != "" {
					segs = append(segs, p)
				}
			case string:
				if s != "" {
					segs = append(segs, s)
				}
			}
		}
		return strings.TrimSpace(strings.Join(segs, " "))
	}
	return ""
}

// ListUnder returns v itself when it is a list, or the first list found
// under one of keys. Anything else yields nil.
func ListUnder(v any, keys ...string) []any {
	switch t := v.(type) {
	case []any:
		return t
	case map[string]any:
		for _, key := range keys {
			if list, ok := t[key].([]any); ok {
				return list
			}
		}
		if _, ok := t["total_count"]; ok {
			if list, ok := t["items"].([]any); ok {
				return list
			}
		}
	}
	return nil
}

// FirstString returns the first non-empty scalar value among keys.
func FirstString(m map[string]any, keys ...string) string {
	for _, key := range keys {
		switch v := m[key].(type) {
		case nil, map[string]any, []any, bool:
			continue
		case string:
			if s := strings.TrimSpace(v); s != "" {
				return s
			}
		default:
			if s := strings.TrimSpace(fmt.Sprint(v)); s != "" {
				return s
			}
		}
	}
	return ""
}

// DecodeReadme extracts README text from a string or an object carrying
// content, body or text. Values prefixed with "data:" are base64 decoded
// after the first comma; a failed decode keeps the original string.
func DecodeReadme(v any) string {
	var s string
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		s = t
	case map[string]any:
		s = FirstString(t, "content", "body", "text")
	default:
		s = fmt.Sprint(t)
	}
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "data:") {
		return s
	}
	encoded := s
	if i := strings.Index(s, ","); i >= 0 {
		encoded = s[i+1:]
	}
	decoded, err := base64.StdEncoding.DecodeString(strings.TrimSpace(encoded))
	if err != nil {
		return s
	}
	return strings.ToValidUTF8(string(decoded), "�")
}
