package daemon

import (
	"context"
	"time"

	"github.com/dgnsrekt/narrator/internal/state"
)

// idleTicks is how many consecutive idle polls end a one-shot read.
const idleTicks = 2

// Headless waits for shutdown without any user interface.
func Headless(ctx context.Context, _ *Runtime) error {
	<-ctx.Done()
	return nil
}

// Say triggers one read and returns once its audio has finished playing.
func Say(ctx context.Context, r *Runtime) error {
	if err := r.Handlers.Read(); err != nil {
		return err
	}
	r.Handlers.Wait()
	if _, err := r.Handlers.Last(); err != nil {
		return err
	}

	ticker := time.NewTicker(r.Config.Player.PollInterval)
	defer ticker.Stop()

	idle := 0
	for idle < idleTicks {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
		if r.Handle.Queue.Len() == 0 && r.Handle.Store.Playback() == state.Idle {
			idle++
		} else {
			idle = 0
		}
	}
	r.logger.Debug("Playback done")
	return nil
}
