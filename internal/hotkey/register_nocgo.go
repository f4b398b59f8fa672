//go:build nocgo

package hotkey

import (
	"context"

	"github.com/charmbracelet/log"
)

type Dispatcher struct{}

func NewDispatcher(map[Action]Binding, Actions, *log.Logger) *Dispatcher {
	return &Dispatcher{}
}

func (d *Dispatcher) Run(context.Context) error {
	return ErrUnavailable
}
