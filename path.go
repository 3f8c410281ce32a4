package revmodel

import (
	"fmt"
	"strconv"
	"strings"
)

// PathRef builds JSON Pointer paths in a chain-safe way and creates Issues.
type PathRef interface {
	Field(name string) PathRef
	Index(i int) PathRef
	Pointer() string
	Issue(code, msg string, kv ...any) Issue
}

// RootPath returns the empty path ("/").
func RootPath() PathRef { return &pathRef{parts: nil} }

// ParsePath splits a JSON Pointer into a PathRef. Segments are kept escaped.
func ParsePath(path string) PathRef {
	if path == "" || path == "/" {
		return RootPath()
	}
	parts := []string{}
	for _, p := range strings.Split(path, "/") {
		if p == "" {
			continue
		}
		parts = append(parts, p)
	}
	return &pathRef{parts: parts}
}

type pathRef struct {
	parts []string
}

func (p *pathRef) Field(name string) PathRef {
	if name == "" {
		return p
	}
	// escape '~' -> '~0', '/' -> '~1' per RFC6901
	esc := strings.ReplaceAll(strings.ReplaceAll(name, "~", "~0"), "/", "~1")
	return &pathRef{parts: append(append([]string{}, p.parts...), esc)}
}

func (p *pathRef) Index(i int) PathRef {
	return &pathRef{parts: append(append([]string{}, p.parts...), strconv.Itoa(i))}
}

func (p *pathRef) Pointer() string {
	if len(p.parts) == 0 {
		return "/"
	}
	return "/" + strings.Join(p.parts, "/")
}

func (p *pathRef) Issue(code, msg string, kv ...any) Issue {
	m := map[string]any{}
	for i := 0; i+1 < len(kv); i += 2 {
		m[fmt.Sprint(kv[i])] = kv[i+1]
	}
	return Issue{Path: p.Pointer(), Code: code, Message: msg, Params: m}
}
