package domain

import "errors"

var (
	ErrTagNotFound = errors.New("tag not found")
	ErrTagExists   = errors.New("tag already exists")
	ErrEmptyTitle  = errors.New("tag title cannot be empty")
)
