package repository

import (
	"context"

	"github.com/google/uuid"
)

// JobKind discriminates the tagged union of pipeline job payloads.
// The orchestrator's HandleJob switches on it, and the worker pool
// routes EXPORT_SNAPSHOT jobs to the exporter by it.
type JobKind string

const (
	KindProbe          JobKind = "PROBE"
	KindThumbnail      JobKind = "THUMBNAIL"
	KindTranscodeHLS   JobKind = "TRANSCODE_HLS"
	KindDeleteAssets   JobKind = "DELETE_ASSETS"
	KindExportSnapshot JobKind = "EXPORT_SNAPSHOT"
)

// Job is a queue message. Only the fields relevant to Kind are
// populated; the orchestrator's handlers know which to read.
type Job struct {
	Kind    JobKind   `json:"kind"`
	VideoID uuid.UUID `json:"video_id,omitempty"`
	Attempt int       `json:"attempt"`

	// SourceKey is the source object key. Used by Probe, Thumbnail and
	// TranscodeHLS to locate the uploaded original.
	SourceKey string `json:"source_key,omitempty"`

	// Base is the filename stem shared by all derived artifact keys.
	// Used by Thumbnail and TranscodeHLS.
	Base string `json:"base,omitempty"`

	// HLSMasterKey, ThumbnailKey and DeleteSourceKey are populated on
	// DeleteAssets jobs to identify the assets a GC sweep must remove.
	HLSMasterKey    string `json:"hls_master_key,omitempty"`
	ThumbnailKey    string `json:"thumbnail_key,omitempty"`
	DeleteSourceKey string `json:"delete_source_key,omitempty"`

	// EntityName names the snapshot capability an ExportSnapshot job
	// targets (e.g. "WatchHistory").
	EntityName string `json:"entity_name,omitempty"`
}

// MessageQueue defines the interface for message queue operations.
// Implementations should be provided by the infrastructure layer (e.g., RabbitMQ).
type MessageQueue interface {
	// Publish sends a job to the queue. Used by the API server and the
	// orchestrator to enqueue work.
	Publish(ctx context.Context, job Job) error

	// Consume starts consuming jobs from the queue. The handler
	// function is called for each received job. Blocks until ctx is
	// cancelled or the channel is closed. Used by the worker service.
	Consume(ctx context.Context, handler func(job Job) error) error

	// Close gracefully closes the connection to the message queue.
	Close() error
}
