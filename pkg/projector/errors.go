package projector

import "errors"

var (
	//ErrDataLoad is returned when a source can not be read or lacks required columns
	ErrDataLoad = errors.New("data load error")

	//ErrSchema is returned when a score cell is not a number in [0,1]
	ErrSchema = errors.New("schema error")

	ErrFrameIndexOutOfRange = errors.New("frame index out of range")

	//ErrMissingScoreColumn is returned by ProjectBar when a catalog class has no score column
	ErrMissingScoreColumn = errors.New("missing score column")

	//ErrFieldUnavailable is returned for an unknown field, or for ground truth on a dataset loaded without labels
	ErrFieldUnavailable = errors.New("field unavailable")
)
