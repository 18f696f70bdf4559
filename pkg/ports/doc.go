/*
Package ports defines the driven ports (interfaces) for the conform engine.

These interfaces decouple the validation core from storage, so definitions can
live in memory, on disk, in Redis or in SQLite without the engine noticing.

# Key Interfaces

  - DefinitionRepository: persists named schema definitions (their raw YAML/JSON source).
*/
package ports
