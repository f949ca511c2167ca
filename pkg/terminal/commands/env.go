package commands

import (
	"github.com/rs/zerolog"

	"github.com/de-tools/bucket-freshness/pkg/services/config"
	"github.com/de-tools/bucket-freshness/pkg/store/objectstore"
)

// Env is filled by the root command before any sub-command runs.
type Env struct {
	Settings *config.Settings
	Logger   zerolog.Logger
	Registry objectstore.Registry
}
