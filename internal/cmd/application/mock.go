// Package application provides a stand-in for the command Application.
package application

import (
	"github.com/rs/zerolog"

	"github.com/agentstation/liftmap"
	"github.com/agentstation/liftmap/cmd/application"
)

var _ application.Application = (*Mock)(nil)

// Mock is an Application whose behavior is set per field. Unset fields give
// a nil client, a no-op logger, JSON output and a dev build.
type Mock struct {
	ClientFunc       func() (liftmap.Client, error)
	LoggerFunc       func() *zerolog.Logger
	OutputFormatFunc func() string
	BuildInfo        application.BuildInfo
}

func (m *Mock) Client() (liftmap.Client, error) {
	if m.ClientFunc == nil {
		return nil, nil
	}
	return m.ClientFunc()
}

func (m *Mock) Logger() *zerolog.Logger {
	if m.LoggerFunc != nil {
		return m.LoggerFunc()
	}
	nop := zerolog.Nop()
	return &nop
}

func (m *Mock) OutputFormat() string {
	if m.OutputFormatFunc == nil {
		return "json"
	}
	return m.OutputFormatFunc()
}

func (m *Mock) Build() application.BuildInfo {
	if m.BuildInfo.Version == "" {
		return application.BuildInfo{Version: "dev", Commit: "unknown", Date: "unknown", BuiltBy: "test"}
	}
	return m.BuildInfo
}
