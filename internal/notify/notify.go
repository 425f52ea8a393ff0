// Package notify delivers build notifications to a single device.
package notify

import (
	"context"
	"sort"
)

// Payload keys understood by the receiving app.
const (
	KeyDevice       = "device"
	KeyTime         = "time"
	KeyStatus       = "status"
	KeyProgress     = "progress"
	KeyBuildVersion = "buildVersion"
	KeyTimeTaken    = "timeTaken"
	KeyLogFile      = "logFile"
	KeyErrorLogFile = "errorLogFile"
)

// Sender delivers a data payload to one device token. An empty delivery id
// means the message was not accepted.
type Sender interface {
	Send(ctx context.Context, token string, data map[string]string) (string, error)
}

// Payload accumulates string fields for a data message.
type Payload struct {
	data map[string]string
}

// NewPayload returns an empty payload.
func NewPayload() *Payload {
	return &Payload{data: map[string]string{}}
}

// Set stores a required field, even when empty.
func (p *Payload) Set(key, value string) *Payload {
	p.data[key] = value
	return p
}

// SetOptional stores value only when it is non-empty; absent fields are
// omitted from the message rather than sent blank.
func (p *Payload) SetOptional(key, value string) *Payload {
	if value != "" {
		p.data[key] = value
	}
	return p
}

// Map returns a copy of the fields.
func (p *Payload) Map() map[string]string {
	out := make(map[string]string, len(p.data))
	for k, v := range p.data {
		out[k] = v
	}
	return out
}

// Keys returns the field names in sorted order.
func (p *Payload) Keys() []string {
	keys := make([]string, 0, len(p.data))
	for k := range p.data {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
