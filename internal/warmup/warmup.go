// Package warmup keeps Lambda instances warm. Scheduled events with
// source "warmup" are answered before any other parsing, and may fan out
// asynchronous self-invocations so several instances stay resident.
package warmup

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	lambdasdk "github.com/aws/aws-sdk-go-v2/service/lambda"
	"github.com/aws/aws-sdk-go-v2/service/lambda/types"
)

const (
	// Source identifies warmup events from the scheduler
	Source = "warmup"

	// Delay keeps this instance busy long enough for siblings to start
	Delay = 75 * time.Millisecond
)

// Event is the scheduled warmup payload.
type Event struct {
	Source      string `json:"source"`
	Concurrency int    `json:"concurrency"`
}

// Response is returned by a warmup invocation.
type Response struct {
	Status          string `json:"status"`
	InstancesWarmed int    `json:"instancesWarmed"`
}

// Detect reports whether raw is a warmup event.
func Detect(raw json.RawMessage) (*Event, bool) {
	var probe struct {
		Source      *string  `json:"source"`
		Concurrency *float64 `json:"concurrency"`
	}
	if err := json.Unmarshal(raw, &probe); err != nil {
		return nil, false
	}
	if probe.Source == nil || *probe.Source != Source {
		return nil, false
	}

	ev := &Event{Source: Source}
	if probe.Concurrency != nil && *probe.Concurrency > 0 {
		ev.Concurrency = int(*probe.Concurrency)
	}
	return ev, true
}

// InvokeAPI is the subset of the Lambda client used for self-invocation.
type InvokeAPI interface {
	Invoke(ctx context.Context, params *lambdasdk.InvokeInput, optFns ...func(*lambdasdk.Options)) (*lambdasdk.InvokeOutput, error)
}

// Warmer answers warmup events for one function.
type Warmer struct {
	client       InvokeAPI
	functionName string
	delay        time.Duration
}

// New creates a Warmer that self-invokes functionName through client.
// client may be nil, in which case no fan-out happens.
func New(client InvokeAPI, functionName string) *Warmer {
	return &Warmer{client: client, functionName: functionName, delay: Delay}
}

// Handle answers ev, fanning out ev.Concurrency async copies.
func (w *Warmer) Handle(ctx context.Context, ev *Event) (map[string]interface{}, error) {
	warmed := 1 // This instance

	if ev.Concurrency > 0 && w.client != nil {
		if err := w.fanOut(ctx, ev.Concurrency); err == nil {
			warmed += ev.Concurrency
		}
	}

	time.Sleep(w.delay)

	return map[string]interface{}{
		"statusCode": 200,
		"body": Response{
			Status:          "warm",
			InstancesWarmed: warmed,
		},
	}, nil
}

// fanOut invokes the function count times asynchronously.
func (w *Warmer) fanOut(ctx context.Context, count int) error {
	// Children get concurrency 0 so they never fan out again
	payload, err := json.Marshal(Event{Source: Source})
	if err != nil {
		return err
	}

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		firstErr error
	)
	for i := 0; i < count; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()

			_, err := w.client.Invoke(ctx, &lambdasdk.InvokeInput{
				FunctionName:   aws.String(w.functionName),
				InvocationType: types.InvocationTypeEvent,
				Payload:        payload,
			})
			if err != nil {
				mu.Lock()
				if firstErr == nil {
					firstErr = fmt.Errorf("self-invoke %s: %w", w.functionName, err)
				}
				mu.Unlock()
			}
		}()
	}

	wg.Wait()
	return firstErr
}
