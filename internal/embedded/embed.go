// Package embedded bundles the static exercise documents shipped with the
// binary: the last-resort catalog payload and the starter catalog.
package embedded

import (
	"embed"
)

// FS holds the bundled documents.
//
//go:embed catalog/*
var FS embed.FS

const (
	payloadPath = "catalog/exercises.json"
	starterPath = "catalog/starter.yaml"
)

// Payload returns the bundled fallback catalog, a JSON array in the
// free-exercise-db shape.
func Payload() []byte {
	return mustRead(payloadPath)
}

// Starter returns the starter catalog YAML.
func Starter() []byte {
	return mustRead(starterPath)
}

func mustRead(path string) []byte {
	b, err := FS.ReadFile(path)
	if err != nil {
		// the paths are compiled in with the go:embed directive
		panic("embedded: missing " + path + ": " + err.Error())
	}
	return b
}
