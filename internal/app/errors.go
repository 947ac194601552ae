package app

import "errors"

var (
	ErrInvalidInput = errors.New("invalid input")

	// ErrDuplicateDocument means the filename was already ingested. The
	// attempt mutates nothing; the existing document stays as it was.
	ErrDuplicateDocument = errors.New("document with this filename already exists")

	// ErrEmptyCandidateSet means the question named no documents to search
	// and did not ask for the whole corpus.
	ErrEmptyCandidateSet = errors.New("candidate document set is empty")

	ErrDocumentNotFound = errors.New("document not found")
)
