package domain

import "strings"

// SubjectPermissionsAttribute is the subject attribute under which Require
// exposes the principal's token permission snapshot to ABAC policies.
const SubjectPermissionsAttribute = "principal_permissions"

// undefinedValue is the distinguished value produced when a condition path
// resolves to an absent attribute. Comparisons against it never error; they
// evaluate to false (except "ne", which treats absence as "not equal").
type undefinedValue struct{}

// Undefined is the attribute-absent sentinel.
var Undefined = undefinedValue{}

// IsUndefined reports whether v is the attribute-absent sentinel.
func IsUndefined(v any) bool {
	_, ok := v.(undefinedValue)
	return ok
}

// AttributeContext carries the four attribute namespaces a condition tree can
// reference: subject (principal attributes), resource (target object
// attributes), context (request-time attributes such as IP or channel), and
// environment (deployment attributes). Values are primitives or lists;
// nested maps are supported for structured attributes.
type AttributeContext struct {
	Subject     map[string]any
	Resource    map[string]any
	Context     map[string]any
	Environment map[string]any
}

// Resolve walks a dotted path ("subject.user_id", "resource.labels.team")
// and returns the attribute value, or Undefined when any segment is absent
// or the namespace prefix is unknown.
func (a AttributeContext) Resolve(path string) any {
	namespace, rest, found := strings.Cut(path, ".")
	if !found || rest == "" {
		return Undefined
	}

	var attrs map[string]any
	switch namespace {
	case "subject":
		attrs = a.Subject
	case "resource":
		attrs = a.Resource
	case "context":
		attrs = a.Context
	case "environment":
		attrs = a.Environment
	default:
		return Undefined
	}

	return resolveIn(attrs, rest)
}

func resolveIn(attrs map[string]any, path string) any {
	current := any(attrs)
	for _, segment := range strings.Split(path, ".") {
		m, ok := current.(map[string]any)
		if !ok {
			return Undefined
		}
		current, ok = m[segment]
		if !ok {
			return Undefined
		}
	}
	return current
}
