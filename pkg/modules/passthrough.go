/*
 * Copyright 2025 Carver Automation Corporation.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package modules

import (
	"github.com/carverauto/fleetpulse/pkg/models"
)

// passthroughProcessor preserves the module's raw section verbatim and stamps
// the identity fields. Used for modules whose client schema churns too fast
// to normalize field by field; forward compatibility beats rigor here.
type passthroughProcessor struct {
	name string
}

func newPassthroughProcessor(name string) *passthroughProcessor {
	return &passthroughProcessor{name: name}
}

func (p *passthroughProcessor) Name() string {
	return p.name
}

func (p *passthroughProcessor) Process(payload map[string]interface{}, serialNumber string) (*Result, error) {
	data, err := section(payload, p.name)
	if err != nil {
		return nil, err
	}

	doc := make(map[string]interface{}, len(data)+4)
	for k, v := range data {
		doc[k] = v
	}

	doc[models.DocKeySummary] = map[string]interface{}{
		"field_count": len(data),
	}

	stampDocument(doc, p.name, serialNumber, collectionTime(payload))

	return &Result{Document: doc}, nil
}

func (p *passthroughProcessor) Validate(document map[string]interface{}) bool {
	return validateDocument(document, p.name)
}
