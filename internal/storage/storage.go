package storage

import "errors"

var (
	ErrGuideNotFound    = errors.New("guide not found")
	ErrSlideNotFound    = errors.New("slide not found")
	ErrResponseNotFound = errors.New("response not found")
	ErrCustomURLTaken   = errors.New("custom url already taken")
	ErrorNoSuchKey      = errors.New("no such key")
)

var (
	ErrFileTooLarge    = errors.New("file size exceeds limit")
	ErrInvalidFileType = errors.New("invalid file type")
	ErrFileNotFound    = errors.New("file not found")
)
