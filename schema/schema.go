// Package schema consults JSON-Schema-like trees for property declaration order.
//
// Order is the only thing ever read from a schema: it decides where a newly added key lands in patched YAML text.
// No validation or coercion happens here.
package schema

import (
	"conf_surgeon/value"
)

// PropertyOrder returns keys of the 'properties' object of the sub-schema at <p> in <s>, in declaration order.
//
// Property segments descend through 'properties', index segments through 'items'. Returns nil if <s> is nil or the
// sub-schema has no object properties, which callers treat as "no ordering hint".
func PropertyOrder(s value.Value, p value.Path) []string {
	sub := at(s, p)
	if sub == nil {
		return nil
	}
	m, ok := sub.(value.Map)
	if !ok {
		return nil
	}
	props, ok := m.Find("properties")
	if !ok {
		return nil
	}
	propsMap, ok := props.(value.Map)
	if !ok {
		return nil
	}
	return propsMap.Keys()
}

// at returns sub-schema of <s> describing the document node at <p> or nil if the schema does not reach that deep
func at(s value.Value, p value.Path) value.Value {
	cur := s
	for _, seg := range p {
		m, ok := cur.(value.Map)
		if !ok {
			return nil
		}
		switch seg.Kind {
		case value.Property:
			props, ok := m.Find("properties")
			if !ok {
				return nil
			}
			propsMap, ok := props.(value.Map)
			if !ok {
				return nil
			}
			child, ok := propsMap.Find(seg.Key)
			if !ok {
				return nil
			}
			cur = child
		case value.Index:
			items, ok := m.Find("items")
			if !ok {
				return nil
			}
			cur = items
		}
	}
	return cur
}
