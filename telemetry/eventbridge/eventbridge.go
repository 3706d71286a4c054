// Copyright IBM Corp. 2023, 2025
// SPDX-License-Identifier: MPL-2.0

// Package eventbridge ships [ustar.TelemetryData] to an Amazon EventBridge
// (CloudWatch Events) event bus.
package eventbridge

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatchevents"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatchevents/types"
	ustar "github.com/hashicorp/go-ustar"
)

//go:generate mockgen -destination=mock_api_test.go -package=eventbridge . PutEventsAPI

// PutEventsAPI is the subset of the cloudwatchevents client used by the hook.
type PutEventsAPI interface {
	PutEvents(ctx context.Context, params *cloudwatchevents.PutEventsInput, optFns ...func(*cloudwatchevents.Options)) (*cloudwatchevents.PutEventsOutput, error)
}

const (
	// DefaultSource is the event source if none is configured.
	DefaultSource = "hashicorp.go-ustar"

	// DetailType is the detail type of every published event.
	DetailType = "ustar operation"
)

type options struct {
	source string
	logger *slog.Logger
	now    func() time.Time
}

// Option adjusts the hook.
type Option func(*options)

// WithSource sets the event source.
func WithSource(source string) Option {
	return func(o *options) {
		if source != "" {
			o.source = source
		}
	}
}

// WithLogger sets the logger that receives publishing failures.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// Publisher sends telemetry data to one event bus.
type Publisher struct {
	client PutEventsAPI
	bus    string
	opts   options
}

// NewPublisher creates a [Publisher] for bus.
func NewPublisher(client PutEventsAPI, bus string, opts ...Option) *Publisher {
	o := options{
		source: DefaultSource,
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(&o)
	}
	return &Publisher{client: client, bus: bus, opts: o}
}

// Publish sends td as a single event. The detail is the JSON form of td.
func (p *Publisher) Publish(ctx context.Context, td *ustar.TelemetryData) error {
	detail, err := td.MarshalJSON()
	if err != nil {
		return fmt.Errorf("marshal telemetry: %w", err)
	}

	out, err := p.client.PutEvents(ctx, &cloudwatchevents.PutEventsInput{
		Entries: []types.PutEventsRequestEntry{{
			Detail:       aws.String(string(detail)),
			DetailType:   aws.String(DetailType),
			EventBusName: aws.String(p.bus),
			Source:       aws.String(p.opts.source),
			Time:         aws.Time(p.opts.now()),
		}},
	})
	if err != nil {
		return fmt.Errorf("put events: %w", err)
	}

	for _, e := range out.Entries {
		if e.ErrorCode != nil {
			return fmt.Errorf("put events: %s: %s", aws.ToString(e.ErrorCode), aws.ToString(e.ErrorMessage))
		}
	}
	return nil
}

// Hook returns a [ustar.TelemetryHook] that publishes every operation. A
// failed publish is logged and does not affect the operation.
func (p *Publisher) Hook() ustar.TelemetryHook {
	return func(ctx context.Context, td *ustar.TelemetryData) {
		if err := p.Publish(ctx, td); err != nil {
			p.opts.logger.Error("publishing telemetry failed", "bus", p.bus, "op", td.Operation, "error", err)
		}
	}
}

// NewHook is a shorthand for NewPublisher(client, bus, opts...).Hook().
func NewHook(client PutEventsAPI, bus string, opts ...Option) ustar.TelemetryHook {
	return NewPublisher(client, bus, opts...).Hook()
}
