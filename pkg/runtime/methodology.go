package runtime

import (
	"its-hmny.dev/agerun/pkg/logging"
	"its-hmny.dev/agerun/pkg/method"
	"its-hmny.dev/agerun/pkg/utils"
)

// ----------------------------------------------------------------------------
// Methodology

// This section implements the method registry ("methodology").
//
// Methods are stored per name, then per version, both levels keeping
// registration order: resolving a name without a version yields the most
// recently registered version. The 'compile' instruction routes here, so a
// body that fails the method parser never enters the registry.
type Methodology struct {
	log     *logging.Log
	methods *utils.OrderedMap[string, *utils.OrderedMap[string, *method.Method]]
}

// Initializes and returns to the caller a brand new 'Methodology' struct.
func NewMethodology(log *logging.Log) *Methodology {
	return &Methodology{
		log:     log,
		methods: utils.NewOrderedMap[string, *utils.OrderedMap[string, *method.Method]](),
	}
}

// Parses 'body' and registers the result under (name, version). Rejects
// empty names or versions, bodies that fail to parse, and duplicate
// (name, version) pairs.
func (m *Methodology) Compile(name, body, version string) bool {
	if name == "" || version == "" {
		m.log.Error("cannot compile a method without a name and a version")
		return false
	}

	compiled, err := method.New(m.log, name, version, body)
	if err != nil {
		return false // Parse failure already reported through the log
	}

	return m.Register(compiled)
}

// Registers an already-built method, false on a duplicate (name, version).
func (m *Methodology) Register(compiled *method.Method) bool {
	if compiled == nil || compiled.Name == "" || compiled.Version == "" {
		return false
	}

	versions, found := m.methods.Get(compiled.Name)
	if !found {
		versions = utils.NewOrderedMap[string, *method.Method]()
		m.methods.Set(compiled.Name, versions)
	}

	if versions.Has(compiled.Version) {
		m.log.Error("method '" + compiled.Name + "' version '" + compiled.Version + "' is already registered")
		return false
	}
	versions.Set(compiled.Version, compiled)
	return true
}

// Unregisters (name, version), false when the pair was never registered.
func (m *Methodology) Deprecate(name, version string) bool {
	versions, found := m.methods.Get(name)
	if !found {
		return false
	}

	if !versions.Delete(version) {
		return false
	}
	if versions.Count() == 0 {
		m.methods.Delete(name)
	}
	return true
}

// Resolves a method by name. An empty version picks the most recently
// registered one; nil when nothing matches.
func (m *Methodology) Resolve(name, version string) *method.Method {
	versions, found := m.methods.Get(name)
	if !found {
		return nil
	}

	if version == "" {
		registered := versions.Entries()
		if len(registered) == 0 {
			return nil
		}
		return registered[len(registered)-1]
	}

	resolved, _ := versions.Get(version)
	return resolved
}

// Returns the registered method names in registration order.
func (m *Methodology) Names() []string {
	return m.methods.Keys()
}

// Returns every registered method, names in registration order, versions in
// registration order within each name.
func (m *Methodology) Methods() []*method.Method {
	all := []*method.Method{}
	for _, versions := range m.methods.Entries() {
		all = append(all, versions.Entries()...)
	}
	return all
}
