package core

import "catalogcore/pkg/domain"

type (
	Feature          = domain.Feature
	FilterState      = domain.FilterState
	Row              = domain.Row
	VisibleView      = domain.VisibleView
	Options          = domain.Options
	ExportSelection  = domain.ExportSelection
	CompetitorStatus = domain.CompetitorStatus
	Violation        = domain.Violation
	LoadError        = domain.LoadError
	ErrNotFound      = domain.ErrNotFound
	RecordSource     = domain.RecordSource
)

var (
	ErrAlreadyLoaded = domain.ErrAlreadyLoaded
	ErrNoSession     = domain.ErrNoSession
)
