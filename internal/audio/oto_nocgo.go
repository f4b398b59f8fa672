//go:build nocgo
// +build nocgo

package audio

import (
	"time"

	"github.com/charmbracelet/log"
)

// OtoOutput stub for builds without cgo.
type OtoOutput struct{}

// NewOtoOutput returns an output that can never open.
func NewOtoOutput(Format, time.Duration, *log.Logger) *OtoOutput {
	return &OtoOutput{}
}

func (o *OtoOutput) OpenStream() (Stream, error) {
	return nil, ErrUnavailable
}
