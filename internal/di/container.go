// Package di provides dependency injection configuration for the ShelfKeep server.
package di

import (
	"github.com/samber/do/v2"

	"github.com/shelfkeep/shelfkeep-server/internal/config"
	"github.com/shelfkeep/shelfkeep-server/internal/di/providers"
	"github.com/shelfkeep/shelfkeep-server/internal/logger"
	"github.com/shelfkeep/shelfkeep-server/internal/service"
)

// NewContainer creates and configures the DI container with all providers.
func NewContainer() *do.RootScope {
	injector := do.New()

	// Core infrastructure
	do.Provide(injector, providers.ProvideConfig)
	do.Provide(injector, providers.ProvideLogger)

	// Database layer
	do.Provide(injector, providers.ProvideStore)

	// Metadata layer
	do.Provide(injector, providers.ProvideOpenLibraryClient)

	// Business services
	do.Provide(injector, providers.ProvideLendingService)
	do.Provide(injector, providers.ProvideReportService)
	do.Provide(injector, providers.ProvideImportService)

	// Server
	do.Provide(injector, providers.ProvideHTTPServer)

	return injector
}

// Bootstrap initializes all services and returns once everything is
// running. This triggers lazy initialization of the whole graph.
func Bootstrap(injector *do.RootScope) error {
	invocations := []func() error{
		func() error { _, err := do.Invoke[*config.Config](injector); return err },
		func() error { _, err := do.Invoke[*logger.Logger](injector); return err },
		func() error { _, err := do.Invoke[*providers.StoreHandle](injector); return err },
		func() error { _, err := do.Invoke[*providers.OpenLibraryClientHandle](injector); return err },
		func() error { _, err := do.Invoke[*service.LendingService](injector); return err },
		func() error { _, err := do.Invoke[*service.ReportService](injector); return err },
		func() error { _, err := do.Invoke[*service.ImportService](injector); return err },
		func() error { _, err := do.Invoke[*providers.HTTPServerHandle](injector); return err },
	}

	for _, invoke := range invocations {
		if err := invoke(); err != nil {
			return err
		}
	}
	return nil
}
