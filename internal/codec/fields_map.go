package codec

// FieldsIDMap assigns each distinct attribute path (e.g. "doggo",
// "doggo.name") a stable, monotonically increasing FieldID the first
// time it is seen, and remembers the mapping both ways. Every index has
// exactly one of these; it is the thing that makes the compact
// field-id keyed KV document representation possible.
type FieldsIDMap struct {
	nameToID map[string]FieldID
	idToName []string
}

// NewFieldsIDMap returns an empty map.
func NewFieldsIDMap() *FieldsIDMap {
	return &FieldsIDMap{nameToID: make(map[string]FieldID)}
}

// ID returns the id assigned to name, if any.
func (m *FieldsIDMap) ID(name string) (FieldID, bool) {
	id, ok := m.nameToID[name]
	return id, ok
}

// Name returns the name assigned to id, if any.
func (m *FieldsIDMap) Name(id FieldID) (string, bool) {
	if int(id) >= len(m.idToName) {
		return "", false
	}
	return m.idToName[id], true
}

// Insert assigns a new id to name if it is not already known, and
// returns the (possibly pre-existing) id.
func (m *FieldsIDMap) Insert(name string) FieldID {
	if id, ok := m.nameToID[name]; ok {
		return id
	}
	id := FieldID(len(m.idToName))
	m.nameToID[name] = id
	m.idToName = append(m.idToName, name)
	return id
}

// Len reports how many distinct fields are known.
func (m *FieldsIDMap) Len() int {
	return len(m.idToName)
}

// ForceInsert records name under exactly id, growing the backing slice
// with placeholder entries if necessary. Used only when reloading a
// map from persisted storage, where ids were already assigned and must
// not be reassigned by insertion order.
func (m *FieldsIDMap) ForceInsert(id FieldID, name string) {
	for len(m.idToName) <= int(id) {
		m.idToName = append(m.idToName, "")
	}
	m.idToName[id] = name
	m.nameToID[name] = id
}
