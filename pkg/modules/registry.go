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
	"sort"
)

// Registry maps canonical module names to their processors. It is built once
// at startup and injected into the orchestrator; the set of supported modules
// is a first-class value, not ambient state.
type Registry struct {
	processors map[string]Processor
}

// NewRegistry builds the default registry covering every supported module.
func NewRegistry() *Registry {
	r := &Registry{processors: make(map[string]Processor)}

	for _, p := range []Processor{
		newApplicationsProcessor(),
		newHardwareProcessor(),
		newInstallsProcessor(),
		newManagementProcessor(),
		newNetworkProcessor(),
		newPrintersProcessor(),
		newSystemProcessor(),
		newPassthroughProcessor("inventory"),
		newPassthroughProcessor("security"),
		newPassthroughProcessor("profiles"),
		newPassthroughProcessor("displays"),
		newPassthroughProcessor("peripherals"),
	} {
		r.processors[p.Name()] = p
	}

	return r
}

// NewRegistryWith builds a registry from an explicit processor set; used by
// tests and deployments that support a subset of modules.
func NewRegistryWith(processors ...Processor) *Registry {
	r := &Registry{processors: make(map[string]Processor, len(processors))}

	for _, p := range processors {
		r.processors[p.Name()] = p
	}

	return r
}

// Get returns the processor for a canonical module name.
func (r *Registry) Get(name string) (Processor, bool) {
	p, ok := r.processors[name]
	return p, ok
}

// Names returns the supported module names in sorted order.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.processors))
	for name := range r.processors {
		names = append(names, name)
	}

	sort.Strings(names)

	return names
}

// Len returns the number of registered processors.
func (r *Registry) Len() int {
	return len(r.processors)
}
