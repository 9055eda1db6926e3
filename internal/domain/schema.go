/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * Licensed under the Apache License, Version 2.0.
 */

package domain

import (
	"fmt"

	gojsonschema "github.com/xeipuuv/gojsonschema"
)

// ManifestSchema is the JSON schema the report manifest must conform to.
// It pins the component tagged union: componentType is an enum and geometry
// honors the hard minimum dimensions.
const ManifestSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "title": "Report Studio manifest",
  "type": "object",
  "required": ["name", "page", "components"],
  "properties": {
    "name": { "type": "string", "minLength": 1 },
    "page": {
      "type": "object",
      "required": ["width", "height", "gridSize"],
      "properties": {
        "width": { "type": "number", "exclusiveMinimum": 0 },
        "height": { "type": "number", "exclusiveMinimum": 0 },
        "gridSize": { "type": "number", "exclusiveMinimum": 0 },
        "snapEnabled": { "type": "boolean" },
        "minY": { "type": "number", "minimum": 0 }
      }
    },
    "datasources": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["alias", "selectedFields"],
        "properties": {
          "alias": { "type": "string", "minLength": 1 },
          "databaseAlias": { "type": "string" },
          "queryType": { "enum": ["visual", "custom"] },
          "selectedFields": {
            "type": "array",
            "items": {
              "type": "object",
              "required": ["field"],
              "properties": {
                "table": { "type": "string" },
                "field": { "type": "string", "minLength": 1 },
                "alias": { "type": "string" },
                "aggregation": { "enum": ["count", "sum", "avg", "min", "max"] },
                "dataType": { "type": "string" }
              }
            }
          }
        }
      }
    },
    "components": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["id", "componentType", "geometry", "isVisible"],
        "properties": {
          "id": { "type": "string", "minLength": 1 },
          "componentType": {
            "enum": ["TABLE", "CHART", "BARCODE", "TEXT", "IMAGE", "DRILL_DOWN", "SUB_REPORT"]
          },
          "geometry": {
            "type": "object",
            "required": ["x", "y", "width", "height"],
            "properties": {
              "x": { "type": "number", "minimum": 0 },
              "y": { "type": "number", "minimum": 0 },
              "width": { "type": "number", "minimum": 50 },
              "height": { "type": "number", "minimum": 30 }
            }
          },
          "zIndex": { "type": "integer" },
          "datasourceAlias": { "type": "string" },
          "isVisible": { "type": "boolean" }
        }
      }
    }
  }
}`

// ValidateManifest checks raw manifest bytes against ManifestSchema and
// returns a descriptive error listing the first few violations.
func ValidateManifest(data []byte) error {
	schemaLoader := gojsonschema.NewStringLoader(ManifestSchema)
	docLoader := gojsonschema.NewBytesLoader(data)
	result, err := gojsonschema.Validate(schemaLoader, docLoader)
	if err != nil {
		return fmt.Errorf("schema validate: %w", err)
	}
	if result.Valid() {
		return nil
	}
	msg := "manifest does not conform to schema:"
	for i, e := range result.Errors() {
		if i >= 5 {
			msg += fmt.Sprintf(" (+%d more)", len(result.Errors())-i)
			break
		}
		msg += " " + e.String() + ";"
	}
	return fmt.Errorf("%s", msg)
}
