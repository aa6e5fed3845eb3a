// Package record implements the physical record layer: typed schemas, the
// byte-layout derived from them, slotted record pages, and a sequential
// table scan built on top. It also carries the value and identity types
// (Constant, RID) that the rest of the engine passes around, since they are
// defined in terms of a record's schema.
package record

// FieldType identifies the SQL type of a single field.
type FieldType int

const (
	// Integer is a 4-byte signed integer field.
	Integer FieldType = iota + 1
	// Varchar is a variable-length string field with a declared maximum
	// character length.
	Varchar
)

// FieldInfo describes one field's type and, for Varchar fields, its
// declared maximum length in characters.
type FieldInfo struct {
	Type   FieldType
	Length int
}

// Schema is an ordered list of field names together with their types. It
// carries no information about physical placement; Layout derives that
// from a Schema.
type Schema struct {
	fields []string
	info   map[string]FieldInfo
}

// NewSchema returns an empty schema ready to have fields added to it.
func NewSchema() *Schema {
	return &Schema{info: make(map[string]FieldInfo)}
}

// AddField adds a field of the given type and length (length is ignored for
// Integer fields).
func (s *Schema) AddField(fieldName string, fieldType FieldType, length int) {
	s.fields = append(s.fields, fieldName)
	s.info[fieldName] = FieldInfo{Type: fieldType, Length: length}
}

// AddIntField adds an Integer field.
func (s *Schema) AddIntField(fieldName string) {
	s.AddField(fieldName, Integer, 0)
}

// AddStringField adds a Varchar field with the given maximum character
// length.
func (s *Schema) AddStringField(fieldName string, length int) {
	s.AddField(fieldName, Varchar, length)
}

// Add copies the named field's type and length from another schema.
func (s *Schema) Add(fieldName string, other *Schema) {
	fi := other.info[fieldName]
	s.AddField(fieldName, fi.Type, fi.Length)
}

// AddAll copies every field from another schema.
func (s *Schema) AddAll(other *Schema) {
	for _, f := range other.fields {
		s.Add(f, other)
	}
}

// Fields returns the schema's fields in declaration order. The returned
// slice must not be mutated.
func (s *Schema) Fields() []string {
	return s.fields
}

// HasField reports whether fieldName is part of the schema.
func (s *Schema) HasField(fieldName string) bool {
	_, ok := s.info[fieldName]
	return ok
}

// Type returns the field's declared type. It panics if the field does not
// exist, the same way a map access with a missing key would if not guarded.
func (s *Schema) Type(fieldName string) FieldType {
	fi, ok := s.info[fieldName]
	if !ok {
		panic("record: unknown field " + fieldName)
	}
	return fi.Type
}

// Length returns the field's declared character length (meaningful only
// for Varchar fields).
func (s *Schema) Length(fieldName string) int {
	return s.info[fieldName].Length
}
