package repository

import "errors"

var (
	ErrRequestNotFound      = errors.New("blood request not found")
	ErrOrganizationNotFound = errors.New("organization not found")
	// ErrStaleStatus means a guarded update found the request in a different status than expected
	ErrStaleStatus = errors.New("request status changed concurrently")
	// ErrInsufficientStock means a stock change would leave the bank with negative units
	ErrInsufficientStock = errors.New("insufficient stock")
	ErrUnknownStatistic  = errors.New("unknown statistic")
)
