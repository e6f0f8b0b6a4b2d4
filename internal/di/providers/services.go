package providers

import (
	"github.com/samber/do/v2"

	"github.com/shelfkeep/shelfkeep-server/internal/logger"
	"github.com/shelfkeep/shelfkeep-server/internal/service"
)

// ProvideLendingService provides the lending engine.
func ProvideLendingService(i do.Injector) (*service.LendingService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewLendingService(storeHandle.Store, log.Logger), nil
}

// ProvideReportService provides the reporting engine.
func ProvideReportService(i do.Injector) (*service.ReportService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewReportService(storeHandle.Store, log.Logger), nil
}

// ProvideImportService provides the bulk-import service.
func ProvideImportService(i do.Injector) (*service.ImportService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	clientHandle := do.MustInvoke[*OpenLibraryClientHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewImportService(storeHandle.Store, clientHandle.Client, log.Logger), nil
}
