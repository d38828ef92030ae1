// Package schema holds the schema model shared by the validator and the
// repository: the [Draft] enum, the URI lookup [Table], and [Dereference],
// the single pass that gives every subschema an absolute identity.
//
// A schema is either a bool or a *jsonvalue.Object. Dereferencing never adds
// keys to a schema object; resolved identities live in the table's [Meta]
// side table, keyed by object identity.
//
//	t := schema.NewTable()
//	doc, _ := jsonvalue.Decode([]byte(`{"$id": "https://example.com/tree", "$defs": {"node": {"$anchor": "node"}}}`))
//	if err := schema.Dereference(t, doc, "", nil); err != nil {
//	    return err
//	}
//	node, _ := t.Lookup("https://example.com/tree#node")
//
// References are not followed during dereferencing: a $ref may name a
// document that is loaded later. Validation fails with an unresolved
// reference error when the target is still missing at that point.
package schema
