/*
Package conform is a declarative schema validation engine for JSON-like documents.

A schema is a tree: each key maps either to a nested schema or to a rule
that inspects the value found at the same path of the document. Rules are
composed from a small set of primitives (type checks, numeric bounds, lengths,
patterns, enums) and the Any/All combinators. Validation never stops at the
first failure; it returns every error with the path that produced it.

# Concept

The rule algebra lives in pkg/schema and has no dependencies. Definitions are
plain YAML or JSON files compiled into schemas by pkg/definition. The Engine in
this package ties both to a repository of named definitions (memory, file,
redis or sqlite adapters), so a host can register a definition once and
validate many documents against it. The same engine backs the conform CLI, the
HTTP service and the MCP server.

# Definitions

	username:
	  $all: [string, {$rangeLength: [3, 16]}]
	email: email
	age:
	  $optional: {$range: {min: 13, max: 130}}
	address:
	  city: string

A bare string names a type rule (string, number, boolean, object, array,
undefined, email, url). Maps whose keys start with $ are directives;
any other map is a nested schema.

# Usage

	package main

	import (
		"context"
		"fmt"
		"log"

		"github.com/aretw0/conform"
		"github.com/aretw0/conform/pkg/adapters/memory"
	)

	func main() {
		ctx := context.Background()
		eng := conform.New(memory.NewRepository())

		if err := eng.Register(ctx, "user", []byte("name: string\nemail: email\n")); err != nil {
			log.Fatal(err)
		}

		report, err := eng.Validate(ctx, "user", map[string]any{"name": "Ada", "email": "ada@"})
		if err != nil {
			log.Fatal(err)
		}
		for _, e := range report.Errors {
			fmt.Println(e)
		}
	}
*/
package conform
