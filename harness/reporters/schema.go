// Copyright 2026 CoreOS, Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package reporters

import (
	"strings"

	"github.com/pkg/errors"
	"github.com/xeipuuv/gojsonschema"
)

// ReportSchema describes the JSON report.
const ReportSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "title": "microharness report",
  "type": "object",
  "required": ["run_id", "tests", "result", "platform", "version"],
  "definitions": {
    "result": { "type": "string", "enum": ["PASS", "FAIL", "WARN", "SKIP", ""] },
    "duration": { "type": "integer", "minimum": 0 }
  },
  "properties": {
    "run_id": { "type": "string", "minLength": 1 },
    "started": { "type": "string" },
    "result": { "$ref": "#/definitions/result" },
    "platform": { "type": "string" },
    "version": { "type": "string" },
    "tests": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["name", "result", "duration"],
        "properties": {
          "name": { "type": "string" },
          "result": { "$ref": "#/definitions/result" },
          "duration": { "$ref": "#/definitions/duration" },
          "output": { "type": "string" }
        }
      }
    },
    "benchmarks": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["name", "warmup", "times", "total", "total_with_warmup"],
        "properties": {
          "name": { "type": "string" },
          "warmup": { "type": "integer", "minimum": 0 },
          "times": { "type": "integer", "minimum": 0 },
          "total": { "$ref": "#/definitions/duration" },
          "total_with_warmup": { "$ref": "#/definitions/duration" },
          "average": { "$ref": "#/definitions/duration" },
          "average_with_warmup": { "$ref": "#/definitions/duration" },
          "ignored_asserts": { "type": "integer", "minimum": 0 },
          "result": { "$ref": "#/definitions/result" }
        }
      }
    }
  }
}`

var schemaLoader = gojsonschema.NewStringLoader(ReportSchema)

// Validate checks a JSON document against ReportSchema.
func Validate(doc []byte) error {
	res, err := gojsonschema.Validate(schemaLoader, gojsonschema.NewBytesLoader(doc))
	if err != nil {
		return errors.Wrap(err, "reporters: validating report")
	}
	if res.Valid() {
		return nil
	}
	var msgs []string
	for _, e := range res.Errors() {
		msgs = append(msgs, e.String())
	}
	return errors.Errorf("reporters: invalid report: %s", strings.Join(msgs, "; "))
}
