package block

import (
	"github.com/contractchain/contractd/infrastructure/logger"
)

var log = logger.RegisterSubSystem("BLCK")
