package config

import "time"

// AIProvider enumerates the supported pairing-oracle backends.
type AIProvider string

const (
	ProviderOpenAI       AIProvider = "openai"
	ProviderOpenRouter   AIProvider = "openrouter"
	ProviderAzureOpenAI  AIProvider = "azure-openai"
)

// SubtitleFormat enumerates the timed-text formats the conversion engine
// and format model understand.
type SubtitleFormat string

const (
	FormatSRT SubtitleFormat = "srt"
	FormatASS SubtitleFormat = "ass"
	FormatVTT SubtitleFormat = "vtt"
	FormatSUB SubtitleFormat = "sub"
)

// OverflowStrategy controls what happens when the worker pool's task queue
// is full.
type OverflowStrategy string

const (
	OverflowBlock      OverflowStrategy = "block"
	OverflowDropOldest OverflowStrategy = "drop-oldest"
	OverflowReject     OverflowStrategy = "reject"
)

// AIConfig is the `[ai]` section: pairing oracle connection and generation
// parameters.
type AIConfig struct {
	Provider              AIProvider    `mapstructure:"provider"`
	APIKey                string        `mapstructure:"api_key"`
	Model                 string        `mapstructure:"model"`
	BaseURL               string        `mapstructure:"base_url"`
	APIVersion            string        `mapstructure:"api_version"`
	DeploymentID          string        `mapstructure:"deployment_id"`
	MaxSampleLength       int           `mapstructure:"max_sample_length"`
	Temperature           float64       `mapstructure:"temperature"`
	MaxTokens             int           `mapstructure:"max_tokens"`
	RetryAttempts         int           `mapstructure:"retry_attempts"`
	RetryDelayMs          int           `mapstructure:"retry_delay_ms"`
	RequestTimeoutSeconds int           `mapstructure:"request_timeout_seconds"`
}

func (c AIConfig) RequestTimeout() time.Duration {
	return time.Duration(c.RequestTimeoutSeconds) * time.Second
}

func (c AIConfig) RetryDelay() time.Duration {
	return time.Duration(c.RetryDelayMs) * time.Millisecond
}

// FormatsConfig is the `[formats]` section.
type FormatsConfig struct {
	DefaultOutput               SubtitleFormat `mapstructure:"default_output"`
	PreserveStyling              bool          `mapstructure:"preserve_styling"`
	DefaultEncoding               string        `mapstructure:"default_encoding"`
	EncodingDetectionConfidence   float64       `mapstructure:"encoding_detection_confidence"`
}

// VadConfig is the `[sync.vad]` sub-section.
type VadConfig struct {
	Enabled             bool    `mapstructure:"enabled"`
	Sensitivity         float64 `mapstructure:"sensitivity"`
	ChunkSize           int     `mapstructure:"chunk_size"`
	SampleRate           int     `mapstructure:"sample_rate"`
	PaddingChunks        int     `mapstructure:"padding_chunks"`
	MinSpeechDurationMs  int     `mapstructure:"min_speech_duration_ms"`
}

// SyncConfig is the `[sync]` section.
type SyncConfig struct {
	MaxOffsetSeconds float32   `mapstructure:"max_offset_seconds"`
	Vad              VadConfig `mapstructure:"vad"`
}

// GeneralConfig is the `[general]` section.
type GeneralConfig struct {
	BackupEnabled             bool `mapstructure:"backup_enabled"`
	MaxConcurrentJobs         int  `mapstructure:"max_concurrent_jobs"`
	TaskTimeoutSeconds        int  `mapstructure:"task_timeout_seconds"`
	EnableProgressBar         bool `mapstructure:"enable_progress_bar"`
	WorkerIdleTimeoutSeconds  int  `mapstructure:"worker_idle_timeout_seconds"`
}

func (c GeneralConfig) TaskTimeout() time.Duration {
	return time.Duration(c.TaskTimeoutSeconds) * time.Second
}

func (c GeneralConfig) WorkerIdleTimeout() time.Duration {
	return time.Duration(c.WorkerIdleTimeoutSeconds) * time.Second
}

// ParallelConfig is the `[parallel]` section.
type ParallelConfig struct {
	MaxWorkers           int              `mapstructure:"max_workers"`
	TaskQueueSize        int              `mapstructure:"task_queue_size"`
	EnableTaskPriorities bool             `mapstructure:"enable_task_priorities"`
	AutoBalanceWorkers   bool             `mapstructure:"auto_balance_workers"`
	OverflowStrategy     OverflowStrategy `mapstructure:"overflow_strategy"`
}

// DiscoveryConfig configures C3's extension classification; the implementer
// is told not to guess a canonical set (spec.md §9 Open Question), so it is
// exposed here with conservative defaults and is user-overridable.
type DiscoveryConfig struct {
	VideoExtensions    []string `mapstructure:"video_extensions"`
	AudioExtensions    []string `mapstructure:"audio_extensions"`
	SubtitleExtensions []string `mapstructure:"subtitle_extensions"`
}

// Config is the fully-resolved, immutable configuration value handed to
// every other component. Obtain one only via Service.GetConfig — never
// construct mutable package state from it.
type Config struct {
	SchemaVersion string          `mapstructure:"schema_version"`
	AI            AIConfig        `mapstructure:"ai"`
	Formats       FormatsConfig   `mapstructure:"formats"`
	Sync          SyncConfig      `mapstructure:"sync"`
	General       GeneralConfig   `mapstructure:"general"`
	Parallel      ParallelConfig  `mapstructure:"parallel"`
	Discovery     DiscoveryConfig `mapstructure:"discovery"`
}
