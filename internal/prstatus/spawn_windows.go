package prstatus

import "errors"

const scriptSupported = false

func spawnDetached(string) error {
	return errors.New("background refresh script is not supported on windows")
}
