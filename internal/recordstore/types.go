package recordstore

import (
	"fmt"
	"strconv"
)

// Standard field names shared by every table.
const (
	FieldID         = "Id"
	FieldName       = "Name"
	FieldTags       = "Tags"
	FieldOwner      = "Owner"
	FieldCreatedOn  = "CreatedOn"
	FieldCreatedBy  = "CreatedBy"
	FieldModifiedOn = "ModifiedOn"
	FieldModifiedBy = "ModifiedBy"
)

// Operator is a where-condition comparison.
type Operator string

const (
	// Contains matches when any value is a case-insensitive substring of the field.
	Contains Operator = "Contains"
	// ExactMatch matches when the field equals any value.
	ExactMatch Operator = "ExactMatch"
)

// Record is a flat field map as exchanged with the store.
type Record map[string]any

// ID returns the record identity as a string, or "" if absent.
func (r Record) ID() string {
	return FieldString(r[FieldID])
}

// Condition is a single field predicate.
type Condition struct {
	FieldName string   `json:"fieldName"`
	Operator  Operator `json:"operator"`
	Values    []string `json:"values"`
}

// SubGroup is a set of conditions inside a WhereGroup.
type SubGroup struct {
	Conditions []Condition `json:"conditions"`
	Operator   string      `json:"operator"`
}

// WhereGroup combines sub-group conditions. Operator "OR" matches when any
// condition matches; anything else requires all of them.
type WhereGroup struct {
	Operator  string     `json:"operator"`
	SubGroups []SubGroup `json:"subGroups"`
}

// FetchParams selects fields and filters records.
type FetchParams struct {
	Fields      []string     `json:"fields"`
	Where       []Condition  `json:"where,omitempty"`
	WhereGroups []WhereGroup `json:"whereGroups,omitempty"`
}

// FieldError is a store-reported validation failure for one field.
type FieldError struct {
	FieldLabel string `json:"fieldLabel"`
	Message    string `json:"message"`
}

func (e FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.FieldLabel, e.Message)
}

// RecordResult is the outcome of writing one record.
type RecordResult struct {
	Success bool         `json:"success"`
	Data    Record       `json:"data,omitempty"`
	Errors  []FieldError `json:"errors,omitempty"`
	Message string       `json:"message,omitempty"`
}

// WriteResult is the response to a create or update call.
type WriteResult struct {
	Success bool           `json:"success"`
	Results []RecordResult `json:"results"`
}

// DeleteResult is the response to a delete call.
type DeleteResult struct {
	Success bool           `json:"success"`
	Results []RecordResult `json:"results"`
}

// FieldString renders a scalar field value as a string.
// Lookup objects ({"Id": ..., "Name": ...}) render as their Id.
func FieldString(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case int:
		return strconv.Itoa(x)
	case int64:
		return strconv.FormatInt(x, 10)
	case bool:
		return strconv.FormatBool(x)
	case map[string]any:
		return FieldString(x[FieldID])
	case Record:
		return FieldString(x[FieldID])
	default:
		return fmt.Sprint(x)
	}
}
