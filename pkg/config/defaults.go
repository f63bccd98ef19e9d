package config

import "runtime"

// schemaVersion is recorded in Config.SchemaVersion and so feeds the config
// hash. pkg/matchcache does not read it: it checks a record's cache_version
// against its own cacheSchemaVersion constant.
const schemaVersion = "1.0.0"

// applyDefaults seeds a *viper.Viper with the compiled defaults — the lowest
// layer of the precedence stack described in spec.md §4.1.
func applyDefaults(set settable) {
	set("schema_version", schemaVersion)

	set("ai.provider", string(ProviderOpenAI))
	set("ai.api_key", "")
	set("ai.model", "gpt-4o-mini")
	set("ai.base_url", "")
	set("ai.api_version", "")
	set("ai.deployment_id", "")
	set("ai.max_sample_length", 2000)
	set("ai.temperature", 0.2)
	set("ai.max_tokens", 2000)
	set("ai.retry_attempts", 3)
	set("ai.retry_delay_ms", 500)
	set("ai.request_timeout_seconds", 30)

	set("formats.default_output", string(FormatSRT))
	set("formats.preserve_styling", true)
	set("formats.default_encoding", "utf-8")
	set("formats.encoding_detection_confidence", 0.7)

	set("sync.max_offset_seconds", 60.0)
	set("sync.vad.enabled", true)
	set("sync.vad.sensitivity", 0.5)
	set("sync.vad.chunk_size", 512)
	set("sync.vad.sample_rate", 16000)
	set("sync.vad.padding_chunks", 2)
	set("sync.vad.min_speech_duration_ms", 250)

	set("general.backup_enabled", false)
	set("general.max_concurrent_jobs", 4)
	set("general.task_timeout_seconds", 120)
	set("general.enable_progress_bar", true)
	set("general.worker_idle_timeout_seconds", 30)

	set("parallel.max_workers", runtime.NumCPU())
	set("parallel.task_queue_size", 256)
	set("parallel.enable_task_priorities", true)
	set("parallel.auto_balance_workers", false)
	set("parallel.overflow_strategy", string(OverflowBlock))

	set("discovery.video_extensions", []string{
		"mp4", "mkv", "webm", "avi", "mov", "wmv", "flv", "m4v", "ts", "m2ts",
	})
	set("discovery.audio_extensions", []string{
		"mp3", "wav", "ogg", "flac", "m4a", "aac", "opus", "wma",
	})
	set("discovery.subtitle_extensions", []string{
		"srt", "ass", "ssa", "vtt", "sub", "lrc",
	})
}

// settable abstracts viper.Viper.SetDefault so applyDefaults is independent
// of the viper import (kept out of this file to make the default table easy
// to read and to unit-test against a plain map).
type settable func(key string, value interface{})
