package core

// System stores deployment information.
type System struct {
	// Address the engine's own token account, holder of seized
	// collateral and the liquidation pools.
	Address          string
	Admins           []string
	Rebalancer       string
	RewardsCaller    string
	CollateralSymbol string
	SynthSymbol      string
	Genesis          int64
	Location         string
	Version          string
}

// IsAdmin is admin
func (s *System) IsAdmin(address string) bool {
	if len(s.Admins) == 0 {
		return false
	}

	for _, a := range s.Admins {
		if a == address {
			return true
		}
	}

	return false
}

// IsRebalancer is the designated rebalancing collaborator
func (s *System) IsRebalancer(address string) bool {
	return s.Rebalancer != "" && s.Rebalancer == address
}

// IsRewardsCaller is the rewards collaborator
func (s *System) IsRewardsCaller(address string) bool {
	return s.RewardsCaller != "" && s.RewardsCaller == address
}
