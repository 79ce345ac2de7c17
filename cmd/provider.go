package cmd

import (
	"loans/core"

	"github.com/fox-one/pkg/property"
	"github.com/fox-one/pkg/store/db"
	propertystore "github.com/fox-one/pkg/store/property"
)

func provideDatabase() *db.DB {
	return db.MustOpen(cfg.DB)
}

func provideConfig() *core.Config {
	return &cfg
}

func provideSystem() *core.System {
	return &core.System{
		Address:          cfg.App.Address,
		Admins:           cfg.Admins,
		Rebalancer:       cfg.Rebalancer,
		RewardsCaller:    cfg.RewardsCaller,
		CollateralSymbol: cfg.App.CollateralSymbol,
		SynthSymbol:      cfg.App.SynthSymbol,
		Genesis:          cfg.App.Genesis,
		Location:         cfg.App.Location,
		Version:          rootCmd.Version,
	}
}

func providePropertyStore(db *db.DB) property.Store {
	return propertystore.New(db)
}

// adminCaller the address engine admin verbs run as
func adminCaller() string {
	if len(cfg.Admins) > 0 {
		return cfg.Admins[0]
	}

	return cfg.App.Address
}
