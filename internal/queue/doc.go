// Package queue carries playback commands from any number of producer
// goroutines to the single playback controller, in FIFO order.
package queue
