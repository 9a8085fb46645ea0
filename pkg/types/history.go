// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// AttemptStatus records how a topic's processing ended within a run.
type AttemptStatus string

const (
	AttemptSkipped          AttemptStatus = "skipped"
	AttemptGenerationFailed AttemptStatus = "generation_failed"
	AttemptAssemblyFailed   AttemptStatus = "assembly_failed"
	AttemptCompileFailed    AttemptStatus = "compile_failed"
	AttemptArchiveFailed    AttemptStatus = "archive_failed"
	AttemptArchived         AttemptStatus = "archived"
)

// Attempt is one pass of the pipeline over one topic.
type Attempt struct {
	// RunID groups the attempts made by one invocation of the pipeline.
	RunID string `json:"run_id" yaml:"run_id"`

	// TopicID is the topic identifier.
	TopicID string `json:"topic_id" yaml:"topic_id"`

	// Subject is the subject display name.
	Subject string `json:"subject" yaml:"subject"`

	// Topic is the raw topic text.
	Topic string `json:"topic" yaml:"topic"`

	// Status is the outcome of the attempt.
	Status AttemptStatus `json:"status" yaml:"status"`

	// Detail carries the error message for failed attempts. Empty otherwise.
	Detail string `json:"detail,omitempty" yaml:"detail,omitempty"`

	// StartedAt is when processing of the topic began.
	StartedAt time.Time `json:"started_at" yaml:"started_at"`

	// FinishedAt is when processing of the topic ended.
	FinishedAt time.Time `json:"finished_at" yaml:"finished_at"`
}

// Failed reports whether the attempt ended without an archived artifact
// for a reason other than a skip.
func (a Attempt) Failed() bool {
	return a.Status != AttemptArchived && a.Status != AttemptSkipped
}
