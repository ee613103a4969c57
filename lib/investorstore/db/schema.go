package db

import _ "embed"

//go:embed schema.sql
var Schema string

type FetchStatus string

const (
	FETCH_PENDING     FetchStatus = "pending"
	FETCH_IN_PROGRESS FetchStatus = "in_progress"
	FETCH_COMPLETED   FetchStatus = "completed"
	FETCH_FAILED      FetchStatus = "failed"
)
