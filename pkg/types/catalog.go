// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines shared data structures for the research-builder pipeline.
// Implements: catalog (Subject, Catalog, TopicID);
//
//	generation (Content);
//	history (Attempt, AttemptStatus);
//	configuration (BuildConfig).
package types

import "fmt"

// Subject is one academic course in the catalog. Serialized keys follow the
// catalog file format consumed by the pipeline.
type Subject struct {
	// Name is the course display name rendered on the cover page.
	Name string `json:"nombre" yaml:"nombre"`

	// Prefix is the short code used to build topic identifiers (e.g. "MAT").
	Prefix string `json:"prefijo" yaml:"prefijo"`

	// Topics lists the research topics in catalog order.
	Topics []string `json:"temas" yaml:"temas"`
}

// Catalog is the ordered collection of subjects read from the catalog file.
type Catalog struct {
	Subjects []Subject `json:"materias" yaml:"materias"`
}

// TopicID returns the deterministic identifier for the topic at the given
// 1-based position within a subject: "{prefix}_Tema_{position}".
func TopicID(prefix string, position int) string {
	return fmt.Sprintf("%s_Tema_%d", prefix, position)
}

// Entry is a single unit of work: one topic of one subject.
type Entry struct {
	// ID is the topic identifier, see TopicID.
	ID string `json:"id" yaml:"id"`

	// Subject is the owning subject's display name.
	Subject string `json:"subject" yaml:"subject"`

	// Prefix is the owning subject's short code.
	Prefix string `json:"prefix" yaml:"prefix"`

	// Position is the 1-based index of the topic within its subject.
	Position int `json:"position" yaml:"position"`

	// Topic is the raw topic text as written in the catalog.
	Topic string `json:"topic" yaml:"topic"`
}
