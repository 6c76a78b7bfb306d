/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package scan

import (
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/xeipuuv/gojsonschema"

	"pixelgallery/internal/domain"
)

//go:embed projectinfo.schema.json
var infoSchemaJSON []byte

var (
	infoSchemaOnce sync.Once
	infoSchema     *gojsonschema.Schema
	infoSchemaErr  error
)

func compiledInfoSchema() (*gojsonschema.Schema, error) {
	infoSchemaOnce.Do(func() {
		infoSchema, infoSchemaErr = gojsonschema.NewSchema(gojsonschema.NewBytesLoader(infoSchemaJSON))
	})
	return infoSchema, infoSchemaErr
}

// ParseInfo validates raw projectInfo.json bytes and decodes them. Only
// name is checked; created, width and height are taken when they have the
// expected shape and left zero otherwise, so documents written by other
// tools still load.
func ParseInfo(data []byte) (domain.ProjectInfo, error) {
	var info domain.ProjectInfo
	schema, err := compiledInfoSchema()
	if err != nil {
		return info, fmt.Errorf("compile schema: %w", err)
	}
	res, err := schema.Validate(gojsonschema.NewBytesLoader(data))
	if err != nil {
		// gojsonschema fails here on malformed JSON
		return info, fmt.Errorf("validate: %w", err)
	}
	if !res.Valid() {
		msgs := make([]string, 0, len(res.Errors()))
		for _, e := range res.Errors() {
			msgs = append(msgs, e.String())
		}
		return info, errors.New(strings.Join(msgs, "; "))
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return info, fmt.Errorf("decode: %w", err)
	}
	if err := json.Unmarshal(fields["name"], &info.Name); err != nil {
		return info, fmt.Errorf("decode name: %w", err)
	}
	optional(fields["created"], &info.Created)
	optional(fields["width"], &info.Width)
	optional(fields["height"], &info.Height)
	if info.Width < 0 || info.Height < 0 {
		info.Width, info.Height = 0, 0
	}
	return info, nil
}

// optional decodes raw into dst, leaving dst untouched on a type mismatch.
func optional[T any](raw json.RawMessage, dst *T) {
	if len(raw) == 0 {
		return
	}
	var v T
	if json.Unmarshal(raw, &v) == nil {
		*dst = v
	}
}
