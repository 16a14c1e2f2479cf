package deps

import (
	"conf_surgeon/cfg"

	"github.com/sirupsen/logrus"
)

// Global represents global dependencies holder interface
type Global interface {
	Log() *logrus.Logger
	Cfg() cfg.Root
}
