// Package definition reads schemas written as YAML or JSON documents.
//
// A definition is a mapping from field names to nodes. A node is one of:
//
//   - a builtin name: string, number, boolean, array, object, undefined, email, url
//   - a directive: a mapping whose keys all start with "$", holding exactly one
//     operator and an optional $message
//   - a nested mapping, which is a nested schema
//
// Operators:
//
//	$type: email               a builtin, so that it can carry a $message
//	$min: 0 / $max: 10         numeric bounds
//	$range: [1, 5]             or {min: 1, max: 5}
//	$minLength: 3 / $maxLength: 20
//	$rangeLength: [3, 20]      or {min: 3, max: 20}
//	$regexp: '^\d{5}$'
//	$any: [string, undefined]  leaves only
//	$all: [number, {$min: 0}]
//	$optional: email
//	$oneOf: [draft, published]
//	$custom: name              a validator from a registry.Registry
//
// Definitions are checked against a JSON Schema (see MetaSchema) before they
// are built, so mistakes are reported with their location.
package definition
