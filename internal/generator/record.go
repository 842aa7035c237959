package generator

// AssembleRecord builds one record from a compiled schema. Invalid fields are
// left out; every other field appears in schema order.
func (g *Generator) AssembleRecord(s *Schema) *Object {
	rec := NewObject()
	if s == nil {
		return rec
	}
	for _, f := range s.Fields {
		if f.Definition.Kind == KindInvalid {
			g.logger.Debug("field omitted from record", map[string]interface{}{
				"field":  f.Name,
				"reason": f.Definition.Reason,
			})
			continue
		}
		rec.Set(f.Name, g.Value(f.Definition))
	}
	return rec
}
