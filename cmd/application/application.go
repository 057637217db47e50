// Package application defines what liftmap commands need from the running
// program. Commands take an Application instead of the concrete app so the
// pipeline can be swapped for an in-memory client in tests:
//
//	mock := &application.Mock{
//	    ClientFunc: func() (liftmap.Client, error) { return testClient, nil },
//	}
//	cmd := pipeline.NewImportCommand(mock)
package application

import (
	"github.com/rs/zerolog"

	"github.com/agentstation/liftmap"
)

// BuildInfo identifies the binary. It is set at link time by the release build.
type BuildInfo struct {
	Version string `json:"version" yaml:"version"`
	Commit  string `json:"commit" yaml:"commit"`
	Date    string `json:"date" yaml:"date"`
	BuiltBy string `json:"built_by" yaml:"built_by"`
}

// Application is safe for concurrent use.
type Application interface {
	// Client returns the pipeline client, opening the store on first use.
	Client() (liftmap.Client, error)

	Logger() *zerolog.Logger

	// OutputFormat is table, json or yaml.
	OutputFormat() string

	Build() BuildInfo
}
