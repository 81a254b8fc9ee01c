// Package cmd provides common initialization functions for the cascade
// binaries.
package cmd

import (
	"log/slog"

	"github.com/daryako/cascade/pkg/actions/approval"
	"github.com/daryako/cascade/pkg/actions/calendarevent"
	"github.com/daryako/cascade/pkg/actions/createfile"
	"github.com/daryako/cascade/pkg/actions/expense"
	"github.com/daryako/cascade/pkg/actions/invoice"
	"github.com/daryako/cascade/pkg/actions/linkedinpost"
	"github.com/daryako/cascade/pkg/actions/notification"
	"github.com/daryako/cascade/pkg/actions/runscript"
	"github.com/daryako/cascade/pkg/actions/sendemail"
	"github.com/daryako/cascade/pkg/actions/wait"
	"github.com/daryako/cascade/pkg/artifact"
	"github.com/daryako/cascade/pkg/audit"
	"github.com/daryako/cascade/pkg/registry"
)

// NewRegistry builds the dispatch registry with every native action handler
// registered.
func NewRegistry(artifacts artifact.Store, sink audit.Sink, logger *slog.Logger) *registry.Registry {
	reg := registry.NewRegistry()

	reg.Register(sendemail.New(artifacts, sink, logger))
	reg.Register(calendarevent.New(artifacts, sink, logger))
	reg.Register(linkedinpost.New(artifacts, sink, logger))
	reg.Register(invoice.New(artifacts, sink, logger))
	reg.Register(expense.New(artifacts, sink, logger))
	reg.Register(createfile.New(artifacts, logger))
	reg.Register(approval.New(artifacts, logger))
	reg.Register(notification.New(artifacts, logger))
	reg.Register(runscript.New(logger))
	reg.Register(wait.New(logger))

	return reg
}

// NewAuditSink builds the file-backed audit sink rooted under the vault.
func NewAuditSink(dir, actor string, logger *slog.Logger) (*audit.FileSink, error) {
	return audit.NewFileSink(dir, actor, logger)
}
