package common

import (
	logging "github.com/ipfs/go-log"
)

// Logger is the package-wide structured logger. Round start/finish is
// logged at Debug, verification failures and protocol aborts at Warn, and
// a finalized signature at Info; nothing on the hot path of modular
// exponentiation ever logs.
var Logger = logging.Logger("thresholdecdsa")

func init() {
	if err := logging.SetLogLevel("thresholdecdsa", "info"); err != nil {
		panic(err)
	}
}
