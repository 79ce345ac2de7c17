package core

import (
	"github.com/fox-one/pkg/store/db"
)

// Config loans config
type Config struct {
	App     App       `json:"app"`
	DB      db.Config `json:"db"`
	Oracle  Oracle    `json:"oracle"`
	Gateway Gateway   `json:"gateway"`

	Admins        []string `json:"admins"`
	Rebalancer    string   `json:"rebalancer"`
	RewardsCaller string   `json:"rewards_caller"`
}

// App app config
type App struct {
	Address          string `json:"address"`
	CollateralSymbol string `json:"collateral_symbol"`
	SynthSymbol      string `json:"synth_symbol"`
	Genesis          int64  `json:"genesis"`
	Location         string `json:"location"`
}

// Oracle price oracle config
type Oracle struct {
	EndPoint string `json:"end_point"`
}

// Gateway operator gateway config, the execution side of every
// external collaborator call
type Gateway struct {
	EndPoint string `json:"end_point"`
}
