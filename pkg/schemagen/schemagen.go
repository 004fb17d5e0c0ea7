// Package schemagen generates JSON Schemas for the config file and for the
// record files the list screens load.
package schemagen

import (
	"encoding/json"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/agripanel/listquery/pkg/config"
	"github.com/google/jsonschema-go/jsonschema"
)

const draft = "https://json-schema.org/draft/2020-12/schema"

func forOptions() *jsonschema.ForOptions {
	return &jsonschema.ForOptions{
		IgnoreInvalidTypes: true,
		TypeSchemas: map[reflect.Type]*jsonschema.Schema{
			reflect.TypeFor[time.Duration](): {Type: "string"},
			reflect.TypeFor[time.Time]():     {Type: "string", Format: "date-time"},
		},
	}
}

// Config returns the schema for the config file. Properties use the keys the
// loader reads and carry the values of defaults; nil uses config.DefaultConfig.
func Config(defaults *config.Config) (*jsonschema.Schema, error) {
	if defaults == nil {
		defaults = config.DefaultConfig()
	}
	t := reflect.TypeFor[config.Config]()
	schema, err := jsonschema.ForType(t, forOptions())
	if err != nil {
		return nil, fmt.Errorf("build config schema: %w", err)
	}
	applyFieldNames(schema, t)
	injectDefaults(schema, reflect.ValueOf(defaults))
	pruneRequiredWithDefaults(schema)

	name := strings.TrimSpace(defaults.Service.Name)
	if name == "" {
		name = "listquery"
	}
	schema.Schema = draft
	schema.Title = name + " Configuration"
	schema.Description = "Schema for " + name + " configuration."
	return schema, nil
}

// Records returns the schema for a record file of T: either a list of records
// or a mapping with the list under "items". A non-empty statuses restricts the
// "status" property to that vocabulary.
func Records[T any](title string, statuses []string) (*jsonschema.Schema, error) {
	item, err := jsonschema.ForType(reflect.TypeFor[T](), forOptions())
	if err != nil {
		return nil, fmt.Errorf("build %s record schema: %w", title, err)
	}
	if prop, ok := item.Properties["status"]; ok && len(statuses) > 0 {
		status := *prop
		status.Enum = make([]any, 0, len(statuses))
		for _, s := range statuses {
			status.Enum = append(status.Enum, s)
		}
		item.Properties["status"] = &status
	}

	list := &jsonschema.Schema{Type: "array", Items: item}
	return &jsonschema.Schema{
		Schema:      draft,
		Title:       title + " records",
		Description: "A list of " + title + " records, optionally wrapped as {items: [...]}.",
		OneOf: []*jsonschema.Schema{
			list,
			{
				Type:       "object",
				Properties: map[string]*jsonschema.Schema{"items": list},
				Required:   []string{"items"},
			},
		},
	}, nil
}

// applyFieldNames renames properties from their Go names to the mapstructure
// keys viper reads.
func applyFieldNames(schema *jsonschema.Schema, t reflect.Type) {
	if schema == nil || t == nil {
		return
	}
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t.Kind() != reflect.Struct || len(schema.Properties) == 0 {
		return
	}

	renamed := make(map[string]string)
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		jsonName, omit := jsonFieldName(field)
		if omit {
			continue
		}
		key := fieldKeyName(field)
		renamed[jsonName] = key
		if prop, ok := schema.Properties[jsonName]; ok {
			delete(schema.Properties, jsonName)
			schema.Properties[key] = prop
			applyFieldNames(prop, field.Type)
		}
	}
	schema.Required = renameAll(schema.Required, renamed)
	schema.PropertyOrder = renameAll(schema.PropertyOrder, renamed)
}

func renameAll(names []string, renamed map[string]string) []string {
	if len(names) == 0 {
		return names
	}
	out := make([]string, 0, len(names))
	for _, name := range names {
		if mapped, ok := renamed[name]; ok {
			name = mapped
		}
		out = append(out, name)
	}
	return out
}

func injectDefaults(schema *jsonschema.Schema, value reflect.Value) {
	if schema == nil || !value.IsValid() {
		return
	}
	for value.Kind() == reflect.Pointer {
		if value.IsNil() {
			return
		}
		value = value.Elem()
	}
	if value.Kind() != reflect.Struct || len(schema.Properties) == 0 {
		return
	}

	t := value.Type()
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		if !field.IsExported() {
			continue
		}
		name := fieldKeyName(field)
		prop, ok := schema.Properties[name]
		if !ok {
			continue
		}
		// Type schemas may be shared between properties.
		cp := *prop
		fieldVal := value.Field(i)
		if fieldVal.Kind() == reflect.Struct && fieldVal.Type() != reflect.TypeFor[time.Time]() {
			injectDefaults(&cp, fieldVal)
		} else if raw, ok := marshalDefault(fieldVal); ok {
			cp.Default = raw
		}
		schema.Properties[name] = &cp
	}
}

func pruneRequiredWithDefaults(schema *jsonschema.Schema) {
	if schema == nil {
		return
	}
	for _, prop := range schema.Properties {
		pruneRequiredWithDefaults(prop)
	}
	if len(schema.Required) == 0 {
		return
	}
	kept := make([]string, 0, len(schema.Required))
	for _, name := range schema.Required {
		prop := schema.Properties[name]
		if prop == nil || (prop.Default == nil && len(prop.Properties) == 0) {
			kept = append(kept, name)
		}
	}
	schema.Required = kept
}

func marshalDefault(value reflect.Value) (json.RawMessage, bool) {
	if !value.IsValid() || !value.CanInterface() {
		return nil, false
	}
	v := value.Interface()
	if d, ok := v.(time.Duration); ok {
		v = d.String()
	}
	payload, err := json.Marshal(v)
	if err != nil {
		return nil, false
	}
	return payload, true
}

func fieldKeyName(field reflect.StructField) string {
	if name, ok := tagName(field.Tag.Get("mapstructure")); ok {
		return name
	}
	if name, ok := tagName(field.Tag.Get("yaml")); ok {
		return name
	}
	return strings.ToLower(field.Name)
}

func tagName(tag string) (string, bool) {
	name, _, _ := strings.Cut(tag, ",")
	if name == "" || name == "-" {
		return "", false
	}
	return name, true
}

func jsonFieldName(field reflect.StructField) (string, bool) {
	if !field.IsExported() {
		return "", true
	}
	name := field.Name
	if tag, ok := field.Tag.Lookup("json"); ok {
		tagged, _, found := strings.Cut(tag, ",")
		if tagged == "-" && !found {
			return "", true
		}
		if tagged != "" {
			name = tagged
		}
	}
	return name, false
}
