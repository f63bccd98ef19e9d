package config

import (
	"fmt"

	"github.com/subx-cli/subx/pkg/subxerr"
)

// Validate checks every bounded field from spec.md §4.1 and returns a
// subxerr with KindConfigInvalid naming the offending path and value on the
// first violation found.
func Validate(c Config) error {
	switch c.AI.Provider {
	case ProviderOpenAI, ProviderOpenRouter, ProviderAzureOpenAI:
	default:
		return invalid("ai.provider", c.AI.Provider)
	}
	if c.AI.MaxSampleLength < 100 || c.AI.MaxSampleLength > 10000 {
		return invalid("ai.max_sample_length", c.AI.MaxSampleLength)
	}
	if c.AI.Temperature < 0.0 || c.AI.Temperature > 2.0 {
		return invalid("ai.temperature", c.AI.Temperature)
	}
	if c.AI.MaxTokens < 1 || c.AI.MaxTokens > 100000 {
		return invalid("ai.max_tokens", c.AI.MaxTokens)
	}
	if c.AI.RetryAttempts < 1 || c.AI.RetryAttempts > 10 {
		return invalid("ai.retry_attempts", c.AI.RetryAttempts)
	}
	if c.AI.RetryDelayMs < 100 || c.AI.RetryDelayMs > 10000 {
		return invalid("ai.retry_delay_ms", c.AI.RetryDelayMs)
	}
	if c.AI.RequestTimeoutSeconds < 10 || c.AI.RequestTimeoutSeconds > 600 {
		return invalid("ai.request_timeout_seconds", c.AI.RequestTimeoutSeconds)
	}

	switch c.Formats.DefaultOutput {
	case FormatSRT, FormatASS, FormatVTT, FormatSUB:
	default:
		return invalid("formats.default_output", c.Formats.DefaultOutput)
	}
	if c.Formats.EncodingDetectionConfidence < 0.0 || c.Formats.EncodingDetectionConfidence > 1.0 {
		return invalid("formats.encoding_detection_confidence", c.Formats.EncodingDetectionConfidence)
	}

	if c.Sync.Vad.Sensitivity < 0.0 || c.Sync.Vad.Sensitivity > 1.0 {
		return invalid("sync.vad.sensitivity", c.Sync.Vad.Sensitivity)
	}
	if c.Sync.Vad.ChunkSize <= 0 {
		return invalid("sync.vad.chunk_size", c.Sync.Vad.ChunkSize)
	}
	if c.Sync.Vad.SampleRate <= 0 {
		return invalid("sync.vad.sample_rate", c.Sync.Vad.SampleRate)
	}

	if c.General.MaxConcurrentJobs < 1 {
		return invalid("general.max_concurrent_jobs", c.General.MaxConcurrentJobs)
	}
	if c.General.TaskTimeoutSeconds < 1 {
		return invalid("general.task_timeout_seconds", c.General.TaskTimeoutSeconds)
	}

	if c.Parallel.MaxWorkers < 1 {
		return invalid("parallel.max_workers", c.Parallel.MaxWorkers)
	}
	if c.Parallel.TaskQueueSize < 1 {
		return invalid("parallel.task_queue_size", c.Parallel.TaskQueueSize)
	}
	switch c.Parallel.OverflowStrategy {
	case OverflowBlock, OverflowDropOldest, OverflowReject:
	default:
		return invalid("parallel.overflow_strategy", c.Parallel.OverflowStrategy)
	}

	return nil
}

func invalid(path string, value interface{}) error {
	return subxerr.New(subxerr.KindConfigInvalid, fmt.Sprintf("invalid value for %s: %v", path, value))
}
