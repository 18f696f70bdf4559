/*
Package domain contains the core domain models shared by the conform service.

It holds no I/O: repositories, transports and renderers live in adapters and
depend on these types, following Hexagonal Architecture principles.

# Key Entities

  - Definition: A named, persisted schema definition (YAML or JSON source).
  - Report: The outcome of validating one document against one definition.
  - LifecycleHooks: Callbacks fired when definitions change or documents are validated.
*/
package domain
