// Package service implements domain services for the authorization core.
package service

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/salomax/neotool-authz/internal/authz/domain"
)

// ConditionEvaluator evaluates ABAC condition trees against an attribute
// context. Evaluation is pure: no I/O, no stored state, and well-formed
// trees never produce an error.
type ConditionEvaluator interface {
	// Evaluate returns whether the condition holds for the given attributes.
	// Malformed trees (empty nodes, unknown operators, missing paths) fail
	// with a domain.PolicyEvaluationError naming the offending node.
	Evaluate(node domain.ConditionNode, attrs domain.AttributeContext) (bool, error)

	// ValidateCondition checks the tree structurally without evaluating it.
	// Used by policy mutations so malformed trees are rejected at write time.
	ValidateCondition(node domain.ConditionNode) error
}

// conditionEvaluator implements ConditionEvaluator.
type conditionEvaluator struct{}

// NewConditionEvaluator creates a ConditionEvaluator.
func NewConditionEvaluator() ConditionEvaluator {
	return &conditionEvaluator{}
}

// Evaluate walks the tree recursively. Combinators short-circuit; leaf
// comparisons resolve the left side (and the right side when Ref is set)
// against the attribute context.
//
// Absent attributes resolve to the Undefined sentinel. Any comparison
// involving Undefined evaluates to false, except "ne" which evaluates to
// true: an absent attribute is by definition not equal to anything. This
// makes `{"not": {"op": "eq", ...}}` and `{"op": "ne", ...}` deliberately
// different for absent attributes; "ne" doubles as the absence probe.
func (e *conditionEvaluator) Evaluate(
	node domain.ConditionNode,
	attrs domain.AttributeContext,
) (bool, error) {
	switch {
	case node.IsZero():
		return false, domain.NewPolicyEvaluationError("<empty>", "node has no operator or combinator")

	case len(node.And) > 0:
		if err := e.soleTag(node, "and"); err != nil {
			return false, err
		}
		for _, child := range node.And {
			ok, err := e.Evaluate(child, attrs)
			if err != nil || !ok {
				return false, err
			}
		}
		return true, nil

	case len(node.Or) > 0:
		if err := e.soleTag(node, "or"); err != nil {
			return false, err
		}
		for _, child := range node.Or {
			ok, err := e.Evaluate(child, attrs)
			if err != nil {
				return false, err
			}
			if ok {
				return true, nil
			}
		}
		return false, nil

	case node.Not != nil:
		if err := e.soleTag(node, "not"); err != nil {
			return false, err
		}
		ok, err := e.Evaluate(*node.Not, attrs)
		if err != nil {
			return false, err
		}
		return !ok, nil

	default:
		return e.evaluateLeaf(node, attrs)
	}
}

// ValidateCondition performs the structural walk without attribute
// resolution, so policies with empty nodes, unknown operators or missing
// paths are rejected before they are stored.
func (e *conditionEvaluator) ValidateCondition(node domain.ConditionNode) error {
	switch {
	case node.IsZero():
		return domain.NewPolicyEvaluationError("<empty>", "node has no operator or combinator")

	case len(node.And) > 0:
		if err := e.soleTag(node, "and"); err != nil {
			return err
		}
		for _, child := range node.And {
			if err := e.ValidateCondition(child); err != nil {
				return err
			}
		}
		return nil

	case len(node.Or) > 0:
		if err := e.soleTag(node, "or"); err != nil {
			return err
		}
		for _, child := range node.Or {
			if err := e.ValidateCondition(child); err != nil {
				return err
			}
		}
		return nil

	case node.Not != nil:
		if err := e.soleTag(node, "not"); err != nil {
			return err
		}
		return e.ValidateCondition(*node.Not)

	default:
		name := leafName(node)
		if node.Path == "" {
			return domain.NewPolicyEvaluationError(name, "leaf comparison requires a path")
		}
		if node.Ref == "" && node.Value == nil {
			return domain.NewPolicyEvaluationError(name, "leaf comparison requires a value or a ref")
		}
		switch node.Op {
		case domain.OpEq, domain.OpNe, domain.OpGt, domain.OpGte,
			domain.OpLt, domain.OpLte, domain.OpIn, domain.OpContains:
			return nil
		default:
			return domain.NewPolicyEvaluationError(name, fmt.Sprintf("unknown operator %q", node.Op))
		}
	}
}

// soleTag rejects nodes that set more than one union tag.
func (e *conditionEvaluator) soleTag(node domain.ConditionNode, tag string) error {
	tags := 0
	if len(node.And) > 0 {
		tags++
	}
	if len(node.Or) > 0 {
		tags++
	}
	if node.Not != nil {
		tags++
	}
	if node.Op != "" {
		tags++
	}
	if tags > 1 {
		return domain.NewPolicyEvaluationError(tag, "node sets more than one of and/or/not/op")
	}
	return nil
}

func (e *conditionEvaluator) evaluateLeaf(
	node domain.ConditionNode,
	attrs domain.AttributeContext,
) (bool, error) {
	name := leafName(node)

	if node.Path == "" {
		return false, domain.NewPolicyEvaluationError(name, "leaf comparison requires a path")
	}
	if node.Ref == "" && node.Value == nil {
		return false, domain.NewPolicyEvaluationError(name, "leaf comparison requires a value or a ref")
	}

	left := attrs.Resolve(node.Path)
	right := node.Value
	if node.Ref != "" {
		right = attrs.Resolve(node.Ref)
	}

	switch node.Op {
	case domain.OpEq:
		if domain.IsUndefined(left) || domain.IsUndefined(right) {
			return false, nil
		}
		return equalValues(left, right), nil

	case domain.OpNe:
		// Absence counts as "not equal"; this is the documented probe for
		// missing attributes.
		if domain.IsUndefined(left) || domain.IsUndefined(right) {
			return true, nil
		}
		return !equalValues(left, right), nil

	case domain.OpGt, domain.OpGte, domain.OpLt, domain.OpLte:
		if domain.IsUndefined(left) || domain.IsUndefined(right) {
			return false, nil
		}
		cmp, ok := compareOrdered(left, right)
		if !ok {
			return false, nil
		}
		switch node.Op {
		case domain.OpGt:
			return cmp > 0, nil
		case domain.OpGte:
			return cmp >= 0, nil
		case domain.OpLt:
			return cmp < 0, nil
		default:
			return cmp <= 0, nil
		}

	case domain.OpIn:
		if domain.IsUndefined(left) || domain.IsUndefined(right) {
			return false, nil
		}
		list, ok := asList(right)
		if !ok {
			return false, nil
		}
		for _, candidate := range list {
			if equalValues(left, candidate) {
				return true, nil
			}
		}
		return false, nil

	case domain.OpContains:
		if domain.IsUndefined(left) || domain.IsUndefined(right) {
			return false, nil
		}
		if list, ok := asList(left); ok {
			for _, candidate := range list {
				if equalValues(candidate, right) {
					return true, nil
				}
			}
			return false, nil
		}
		if s, ok := left.(string); ok {
			if sub, ok := right.(string); ok {
				return strings.Contains(s, sub), nil
			}
		}
		return false, nil

	default:
		return false, domain.NewPolicyEvaluationError(name, fmt.Sprintf("unknown operator %q", node.Op))
	}
}

// leafName describes a leaf for error messages without exposing attribute
// values.
func leafName(node domain.ConditionNode) string {
	if node.Op == "" {
		return node.Path
	}
	return fmt.Sprintf("%s %s", node.Op, node.Path)
}

// equalValues compares two attribute values. Numbers compare numerically
// across integer and float representations (JSON decodes numbers as
// float64); everything else compares structurally, so list- and map-valued
// attributes are legal on both sides of eq/ne and never panic under ==.
func equalValues(a, b any) bool {
	if af, ok := asFloat(a); ok {
		bf, ok := asFloat(b)
		return ok && af == bf
	}
	return reflect.DeepEqual(a, b)
}

// compareOrdered compares two values that admit an ordering: numbers
// numerically, strings lexically (RFC 3339 timestamps order correctly this
// way). Returns ok=false on a type mismatch, which the caller treats as a
// non-match rather than an error.
func compareOrdered(a, b any) (int, bool) {
	if af, ok := asFloat(a); ok {
		bf, ok := asFloat(b)
		if !ok {
			return 0, false
		}
		switch {
		case af < bf:
			return -1, true
		case af > bf:
			return 1, true
		default:
			return 0, true
		}
	}

	as, ok := a.(string)
	if !ok {
		return 0, false
	}
	bs, ok := b.(string)
	if !ok {
		return 0, false
	}
	return strings.Compare(as, bs), true
}

func asFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint64:
		return float64(n), true
	default:
		return 0, false
	}
}

func asList(v any) ([]any, bool) {
	switch list := v.(type) {
	case []any:
		return list, true
	case []string:
		out := make([]any, len(list))
		for i, s := range list {
			out[i] = s
		}
		return out, true
	default:
		return nil, false
	}
}
