// SPDX-FileCopyrightText: 2025 Deutsche Telekom IT GmbH
//
// SPDX-License-Identifier: Apache-2.0

package checks

import (
	"fmt"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/getkin/kin-openapi/openapi3gen"
)

// OpenapiFromPerfData returns the schema of a [Result] whose data has the type of data.
func OpenapiFromPerfData[T any](data T) (*openapi3.SchemaRef, error) {
	dataSchema, err := openapi3gen.NewSchemaRefForValue(data, openapi3.Schemas{})
	if err != nil {
		return nil, fmt.Errorf("could not generate schema for %T: %w", data, err)
	}

	schema := openapi3.NewObjectSchema().
		WithPropertyRef("data", dataSchema).
		WithProperty("timestamp", openapi3.NewDateTimeSchema())
	schema.Required = []string{"data", "timestamp"}

	return openapi3.NewSchemaRef("", schema), nil
}
