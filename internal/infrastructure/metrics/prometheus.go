// Package metrics provides Prometheus metrics for observability.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "gostream"

var (
	// CacheOperationsTotal tracks cache operations (get, set, delete).
	// Labels:
	//   - operation: get, set, delete
	//   - status: hit, miss, success, error
	//   - cache_type: redis
	CacheOperationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_operations_total",
			Help:      "Total number of cache operations",
		},
		[]string{"operation", "status", "cache_type"},
	)

	// DBQueriesTotal tracks database queries.
	// Labels:
	//   - query_type: select, insert, update, delete
	//   - table: videos
	DBQueriesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "db_queries_total",
			Help:      "Total number of database queries",
		},
		[]string{"query_type", "table"},
	)

	// SingleflightRequestsTotal tracks singleflight behavior.
	// Labels:
	//   - result: initiated (new execution), shared (reused result)
	SingleflightRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "singleflight_requests_total",
			Help:      "Total number of singleflight requests",
		},
		[]string{"result"},
	)

	// PipelineJobsTotal tracks jobs handled by the orchestrator.
	// Labels:
	//   - kind: probe, thumbnail, transcode_hls, delete_assets, export_snapshot
	//   - outcome: success, failed
	PipelineJobsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "pipeline_jobs_total",
			Help:      "Total number of pipeline jobs handled, by kind and outcome",
		},
		[]string{"kind", "outcome"},
	)

	// PipelineStageDurationSeconds tracks how long each stage handler takes,
	// including in-process retries, to completion or exhaustion.
	PipelineStageDurationSeconds = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "pipeline_stage_duration_seconds",
			Help:      "Duration of pipeline stage handling in seconds",
			Buckets:   prometheus.ExponentialBuckets(0.1, 2, 12),
		},
		[]string{"kind"},
	)

	// PipelineRetriesTotal tracks in-process backoff retries per stage.
	PipelineRetriesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "pipeline_retries_total",
			Help:      "Total number of in-process stage retries",
		},
		[]string{"kind"},
	)

	// StorageOperationsTotal tracks object storage operations.
	// Labels:
	//   - operation: upload, download, delete, delete_prefix, presign_upload, presign_download
	//   - status: success, error
	StorageOperationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "storage_operations_total",
			Help:      "Total number of object storage operations",
		},
		[]string{"operation", "status"},
	)

	// RateGateAdmissionsTotal tracks RateGate decisions for the analytics exporter.
	// Labels:
	//   - key: the gate key (e.g. export:watch_history)
	//   - admitted: true, false
	RateGateAdmissionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rategate_admissions_total",
			Help:      "Total number of RateGate admission decisions",
		},
		[]string{"key", "admitted"},
	)
)

// Cache operation status constants.
const (
	CacheStatusHit     = "hit"
	CacheStatusMiss    = "miss"
	CacheStatusSuccess = "success"
	CacheStatusError   = "error"
)

// Cache operation type constants.
const (
	CacheOpGet    = "get"
	CacheOpSet    = "set"
	CacheOpDelete = "delete"
)

// Cache type constants.
const (
	CacheTypeRedis = "redis"
)

// DB query type constants.
const (
	DBQuerySelect = "select"
	DBQueryInsert = "insert"
	DBQueryUpdate = "update"
)

// Table name constants.
const (
	TableVideos = "videos"
)

// Singleflight result constants.
const (
	SingleflightInitiated = "initiated"
	SingleflightShared    = "shared"
)

// Pipeline job outcome constants.
const (
	JobOutcomeSuccess = "success"
	JobOutcomeFailed  = "failed"
)

// Job kind label constants, mirroring repository.JobKind.
const (
	JobKindProbe          = "probe"
	JobKindThumbnail      = "thumbnail"
	JobKindTranscodeHLS   = "transcode_hls"
	JobKindDeleteAssets   = "delete_assets"
	JobKindExportSnapshot = "export_snapshot"
)

// Storage operation type constants.
const (
	StorageOpUpload          = "upload"
	StorageOpDownload        = "download"
	StorageOpDelete          = "delete"
	StorageOpDeletePrefix    = "delete_prefix"
	StorageOpPresignUpload   = "presign_upload"
	StorageOpPresignDownload = "presign_download"
)

// Storage operation status constants.
const (
	StorageStatusSuccess = "success"
	StorageStatusError   = "error"
)
