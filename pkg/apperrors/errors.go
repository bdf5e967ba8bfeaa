package apperrors

import "errors"

var (
	ErrMalformedRename    = errors.New("rename delta has neither endpoint")
	ErrRowListsOverlap    = errors.New("row id lists are not disjoint")
	ErrAmbiguousReference = errors.New("reference renames one identifier to multiple targets")
)
