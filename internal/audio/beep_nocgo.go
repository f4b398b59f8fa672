//go:build nocgo
// +build nocgo

package audio

import (
	"time"

	"github.com/charmbracelet/log"
)

// BeepOutput stub for builds without cgo.
type BeepOutput struct{}

// NewBeepOutput returns an output that can never open.
func NewBeepOutput(int, time.Duration, *log.Logger) *BeepOutput {
	return &BeepOutput{}
}

func (o *BeepOutput) OpenStream() (Stream, error) {
	return nil, ErrUnavailable
}
