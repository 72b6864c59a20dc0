// Copyright (c) 2026 Folio. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package workflow defines the five fixed editorial workflow stages.

Each [Stage] maps to a URL path and an i18n translation key. A [Registry]
narrows the set to the stages a deployment actually supports (APPLICATION_STAGES).
*/
package workflow

import "sort"

// Stage identifies a workflow stage. Values are persisted in user_group_stage.stage_id.
type Stage int

const (
	Submission Stage = iota + 1
	InternalReview
	ExternalReview
	Editing
	Production
)

type stageInfo struct {
	path string
	key  string
}

var stages = map[Stage]stageInfo{
	Submission:     {path: "submission", key: "submission.submission"},
	InternalReview: {path: "internalReview", key: "workflow.review.internalReview"},
	ExternalReview: {path: "externalReview", key: "workflow.review.externalReview"},
	Editing:        {path: "editorial", key: "submission.editorial"},
	Production:     {path: "production", key: "submission.production"},
}

// All returns the five stages in order.
func All() []Stage {
	return []Stage{Submission, InternalReview, ExternalReview, Editing, Production}
}

// Valid reports whether s lies within Submission..Production.
func (s Stage) Valid() bool {
	return s >= Submission && s <= Production
}

// Path returns the stage's URL path, or "" for an unknown stage.
func (s Stage) Path() string {
	return stages[s].path
}

// TranslationKey returns the stage's i18n key, or "" for an unknown stage.
func (s Stage) TranslationKey() string {
	return stages[s].key
}

// StageFromPath resolves a path such as "editorial" to its stage.
func StageFromPath(path string) (Stage, bool) {
	for stage, info := range stages {
		if info.path == path {
			return stage, true
		}
	}
	return 0, false
}

// Descriptor is the id, translation key and path of one stage.
type Descriptor struct {
	ID             Stage  `json:"id"`
	TranslationKey string `json:"translationKey"`
	Path           string `json:"path"`
}

// # Registry

// Registry is the set of stages supported by this deployment.
type Registry struct {
	stages []Stage
}

// NewRegistry builds a registry from stage ids. Unknown and repeated ids are dropped.
func NewRegistry(supported []int) *Registry {
	seen := make(map[Stage]bool, len(supported))
	filtered := make([]Stage, 0, len(supported))

	for _, raw := range supported {
		stage := Stage(raw)
		if !stage.Valid() || seen[stage] {
			continue
		}
		seen[stage] = true
		filtered = append(filtered, stage)
	}

	sort.Slice(filtered, func(i, j int) bool { return filtered[i] < filtered[j] })
	return &Registry{stages: filtered}
}

// Stages returns the supported stages in ascending order.
func (r *Registry) Stages() []Stage {
	out := make([]Stage, len(r.stages))
	copy(out, r.stages)
	return out
}

// Supports reports whether the deployment supports stage.
func (r *Registry) Supports(stage Stage) bool {
	for _, candidate := range r.stages {
		if candidate == stage {
			return true
		}
	}
	return false
}

// TranslationKeys maps each supported stage to its translation key.
func (r *Registry) TranslationKeys() map[Stage]string {
	keys := make(map[Stage]string, len(r.stages))
	for _, stage := range r.stages {
		keys[stage] = stage.TranslationKey()
	}
	return keys
}

// TranslationKey returns the key for a supported stage. ok is false when the
// stage is unknown or not supported.
func (r *Registry) TranslationKey(stage Stage) (key string, ok bool) {
	if !r.Supports(stage) {
		return "", false
	}
	return stage.TranslationKey(), true
}

// KeysAndPaths describes every supported stage, in ascending order.
func (r *Registry) KeysAndPaths() []Descriptor {
	out := make([]Descriptor, 0, len(r.stages))
	for _, stage := range r.stages {
		out = append(out, Descriptor{ID: stage, TranslationKey: stage.TranslationKey(), Path: stage.Path()})
	}
	return out
}
