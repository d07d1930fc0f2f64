package webserver

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// blinkPhase is how long the LED holds each on/off state while blinking.
const blinkPhase = 300 * time.Millisecond

// LED is the status light the /set_led route drives. The board this rig
// grew out of toggled the wifi chip's GPIO 0.
type LED interface {
	Set(on bool) error
}

// LogLED stands in on hosts with nothing to blink.
type LogLED struct {
	Logger *zap.Logger
}

func (l *LogLED) Set(on bool) error {
	if on {
		l.Logger.Info("[led] led on!")
	} else {
		l.Logger.Info("[led] led off!")
	}
	return nil
}

// Blink toggles the LED n times as a visible startup signal.
func Blink(ctx context.Context, led LED, n int) error {
	for i := 0; i < n; i++ {
		if err := led.Set(true); err != nil {
			return err
		}
		select {
		case <-time.After(blinkPhase):
		case <-ctx.Done():
			return ctx.Err()
		}

		if err := led.Set(false); err != nil {
			return err
		}
		select {
		case <-time.After(blinkPhase):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return nil
}
