package server

import (
	"log/slog"

	"github.com/joseph-ayodele/personal-info-parser/constants"
	"github.com/joseph-ayodele/personal-info-parser/internal/extract"
	"github.com/joseph-ayodele/personal-info-parser/internal/repository"
)

const (
	maxIDLength        = 128
	maxInputTextLength = 20000
)

// Options wires the HTTP server to its collaborators.
type Options struct {
	Lookup        repository.LookupRepository
	Text          extract.PersonParser
	Image         extract.IDDocumentParser
	Images        extract.ImageSource
	MaxImageBytes int64
	Development   bool // include error chains in problem details
	Logger        *slog.Logger
}

// Server holds the HTTP handlers for the parse endpoints.
type Server struct {
	lookup        repository.LookupRepository
	text          extract.PersonParser
	image         extract.IDDocumentParser
	images        extract.ImageSource
	maxImageBytes int64
	development   bool
	logger        *slog.Logger
}

func New(opts Options) *Server {
	if opts.MaxImageBytes <= 0 {
		opts.MaxImageBytes = constants.MaxImageBytesDefault
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	return &Server{
		lookup:        opts.Lookup,
		text:          opts.Text,
		image:         opts.Image,
		images:        opts.Images,
		maxImageBytes: opts.MaxImageBytes,
		development:   opts.Development,
		logger:        opts.Logger,
	}
}
