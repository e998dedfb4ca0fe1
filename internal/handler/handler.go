// Package handler scores review objects dropped into a bucket and writes the
// verdicts to a companion bucket.
package handler

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"github.com/aws/aws-lambda-go/events"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/tsawler/reviewsense"
	"github.com/tsawler/reviewsense/internal/blob"
)

// ErrSameBucket is returned when the destination bucket would equal the
// source bucket.
var ErrSameBucket = errors.New("destination bucket must not match source bucket")

// Options names the buckets and keys a Processor writes to.
type Options struct {
	DestinationSuffix string // appended to the source bucket name
	OutputPrefix      string // prepended to the source key
	AppendPrefix      string // keys with this prefix carry a labeled review to append
}

// DefaultOptions returns the standard naming.
func DefaultOptions() Options {
	return Options{
		DestinationSuffix: "-resized",
		OutputPrefix:      "sentimented-",
		AppendPrefix:      "append-",
	}
}

// Processor handles one object at a time.
type Processor struct {
	engine *reviewsense.Engine
	store  blob.Store
	opts   Options
	logger *zap.Logger
}

// New creates a Processor. A nil logger discards everything.
func New(engine *reviewsense.Engine, store blob.Store, opts Options, logger *zap.Logger) *Processor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Processor{engine: engine, store: store, opts: opts, logger: logger}
}

// Options returns the naming the Processor was created with.
func (p *Processor) Options() Options {
	return p.opts
}

// Output describes a written verdict.
type Output struct {
	Bucket string
	Key    string
	Result *reviewsense.Result
}

// Destination returns the bucket and key the verdict for bucket/key is
// written to.
func (p *Processor) Destination(bucket, key string) (string, string, error) {
	dest := bucket + p.opts.DestinationSuffix
	if dest == bucket {
		return "", "", fmt.Errorf("%s: %w", bucket, ErrSameBucket)
	}
	return dest, p.opts.OutputPrefix + key, nil
}

// Handle reads bucket/key, appends it to the corpus when the key carries the
// append prefix, scores it, and writes the annotated verdict.
func (p *Processor) Handle(ctx context.Context, bucket, key string) (*Output, error) {
	log := p.logger.With(
		zap.String("request_id", uuid.NewString()),
		zap.String("bucket", bucket),
		zap.String("key", key))

	destBucket, destKey, err := p.Destination(bucket, key)
	if err != nil {
		log.Warn("skipping object", zap.Error(err))
		return nil, err
	}

	data, err := p.store.Get(ctx, bucket, key)
	if err != nil {
		return nil, fmt.Errorf("error downloading review: %w", err)
	}
	review := string(data)

	if strings.HasPrefix(key, p.opts.AppendPrefix) {
		label, text, err := ParseLabeled(review)
		if err != nil {
			return nil, err
		}
		if err := p.engine.Append(ctx, text, label); err != nil {
			return nil, err
		}
		log.Info("review appended", zap.Int("label", label))
		review = text
	}

	res, err := p.engine.Score(ctx, review)
	if err != nil {
		return nil, err
	}

	if err := p.store.Put(ctx, destBucket, destKey, []byte(res.Annotated()), "text/plain; charset=utf-8"); err != nil {
		return nil, fmt.Errorf("error uploading verdict: %w", err)
	}

	log.Info("review scored",
		zap.String("destination", destBucket+"/"+destKey),
		zap.Float64("score", res.Score),
		zap.String("label", res.Label.String()))
	return &Output{Bucket: destBucket, Key: destKey, Result: res}, nil
}

// HandleEvent processes every record of an S3 event notification in order.
// The first failure stops the batch; the outputs written so far are
// returned with it.
func (p *Processor) HandleEvent(ctx context.Context, event events.S3Event) ([]*Output, error) {
	outputs := make([]*Output, 0, len(event.Records))
	for i, record := range event.Records {
		key := record.S3.Object.URLDecodedKey
		if key == "" {
			key = record.S3.Object.Key
		}
		out, err := p.Handle(ctx, record.S3.Bucket.Name, key)
		if err != nil {
			return outputs, fmt.Errorf("record %d (%s/%s): %w", i, record.S3.Bucket.Name, key, err)
		}
		outputs = append(outputs, out)
	}
	return outputs, nil
}

// ParseLabeled splits an append payload into its leading integer label and
// the review text that follows it.
func ParseLabeled(payload string) (int, string, error) {
	payload = strings.TrimLeftFunc(payload, unicode.IsSpace)
	end := strings.IndexFunc(payload, unicode.IsSpace)
	if end < 0 {
		end = len(payload)
	}

	label, err := strconv.Atoi(payload[:end])
	if err != nil {
		return 0, "", fmt.Errorf("append payload must start with a label, got %q: %w",
			payload[:end], reviewsense.ErrInvalidArgument)
	}
	text := strings.TrimSpace(payload[end:])
	if text == "" {
		return 0, "", fmt.Errorf("append payload has no review text: %w", reviewsense.ErrInvalidArgument)
	}
	return label, text, nil
}
