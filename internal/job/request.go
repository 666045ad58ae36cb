package job

import (
	"docmill/internal/models"
)

// Upload is one uploaded document held in memory between the multipart layer
// and staging. Merge jobs carry several; every other operation carries one.
type Upload struct {
	Filename string
	Data     []byte
}

// Params are the mode-specific knobs declared by the client. Argument
// construction is a pure function of these values, so identical requests
// always produce identical tool invocations.
type Params struct {
	TargetFormat string // convert: output format (pdf, docx, txt, ...)
	Quality      string // compress: low | balanced | high (default balanced)
	ExtractMode  string // extract: images | text (default images)
	Password     string // unlock: credential for the input document
}

// Request describes one heavy job before admission.
type Request struct {
	Operation models.Operation
	Inputs    []Upload
	Params    Params
	ClientKey string
}

// Validate rejects requests that must never engage the concurrency gate:
// missing payloads and malformed parameters are client errors detected
// before any slot is acquired or any byte hits disk.
func (r *Request) Validate() *ServiceError {
	if !r.Operation.Valid() {
		return NewInvalidParameterError("unknown operation")
	}

	if len(r.Inputs) == 0 {
		return NewMissingInputError()
	}
	for _, in := range r.Inputs {
		if len(in.Data) == 0 {
			return NewMissingInputError()
		}
	}

	switch r.Operation {
	case models.OperationConvert:
		if r.Params.TargetFormat == "" {
			return NewInvalidParameterError("target format is required for convert")
		}
	case models.OperationCompress:
		if _, err := compressionProfile(r.Params.Quality); err != nil {
			return NewInvalidParameterError(err.Error())
		}
	case models.OperationExtract:
		if _, err := extractMode(r.Params.ExtractMode); err != nil {
			return NewInvalidParameterError(err.Error())
		}
	case models.OperationMerge:
		if len(r.Inputs) < 2 {
			return NewInvalidParameterError("merge requires at least two documents")
		}
	}

	return nil
}
