package recordstore

import "strings"

// Matches reports whether r satisfies every Where condition and every
// WhereGroup in p. Backends without server-side filtering use it.
func Matches(r Record, p FetchParams) bool {
	for _, c := range p.Where {
		if !c.Matches(r) {
			return false
		}
	}
	for _, g := range p.WhereGroups {
		if !g.Matches(r) {
			return false
		}
	}
	return true
}

// Matches reports whether r satisfies the condition. A condition with no
// values matches everything.
func (c Condition) Matches(r Record) bool {
	if len(c.Values) == 0 {
		return true
	}
	field := FieldString(r[c.FieldName])
	for _, v := range c.Values {
		switch c.Operator {
		case Contains:
			if strings.Contains(strings.ToLower(field), strings.ToLower(v)) {
				return true
			}
		default:
			if field == v {
				return true
			}
		}
	}
	return false
}

// Matches reports whether r satisfies the group.
func (g WhereGroup) Matches(r Record) bool {
	var conds []Condition
	for _, sg := range g.SubGroups {
		conds = append(conds, sg.Conditions...)
	}
	if len(conds) == 0 {
		return true
	}
	or := strings.EqualFold(g.Operator, "OR")
	for _, c := range conds {
		ok := c.Matches(r)
		if or && ok {
			return true
		}
		if !or && !ok {
			return false
		}
	}
	return !or
}

// Project returns a copy of r restricted to fields. An empty field list
// returns every field. The Id field is always kept.
func Project(r Record, fields []string) Record {
	out := make(Record, len(r))
	if len(fields) == 0 {
		for k, v := range r {
			out[k] = v
		}
		return out
	}
	for _, f := range fields {
		if v, ok := r[f]; ok {
			out[f] = v
		}
	}
	if v, ok := r[FieldID]; ok {
		out[FieldID] = v
	}
	return out
}
