package util

import (
	"time"
)

// StopTimer stops the given timer and drains the channel if it has fired and not been received
func StopTimer(timer *time.Timer) {
	if !timer.Stop() {
		select {
		case <-timer.C:
		default:
		}
	}
}
