// Package registry keeps named custom validators so that declarative
// definitions can refer to code, for example cross-field checks that need the
// root document.
package registry
