package pcl

import (
	"cosmossdk.io/errors"

	"github.com/astroport-fi/astroport-core-sub001/x/pair/fixedpoint"
)

var (
	ErrXcpProfitDropped = errors.Register(fixedpoint.Codespace, 30, "XCP profit real value dropped. This action makes loss")
	ErrLossLimitReached = errors.Register(fixedpoint.Codespace, 31, "PCL has reached the limit of losses")
)
