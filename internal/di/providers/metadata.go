package providers

import (
	"github.com/samber/do/v2"

	"github.com/shelfkeep/shelfkeep-server/internal/config"
	"github.com/shelfkeep/shelfkeep-server/internal/logger"
	"github.com/shelfkeep/shelfkeep-server/internal/openlibrary"
)

// OpenLibraryClientHandle wraps the Open Library client.
type OpenLibraryClientHandle struct {
	*openlibrary.Client
}

// ProvideOpenLibraryClient provides the Open Library metadata client.
func ProvideOpenLibraryClient(i do.Injector) (*OpenLibraryClientHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	var client *openlibrary.Client
	if cfg.OpenLibrary.BaseURL != "" {
		client = openlibrary.NewWithBaseURL(cfg.OpenLibrary.BaseURL, log.Logger)
	} else {
		client = openlibrary.New(log.Logger)
	}

	return &OpenLibraryClientHandle{Client: client}, nil
}
