package batch

import "net/http"

// Status summarises a batch of independent item operations.
type Status string

const (
	StatusSuccess Status = "success"
	StatusPartial Status = "partial"
	StatusFailed  Status = "failed"
)

// HTTPStatus maps the outcome onto 200, 207 or 400.
func (s Status) HTTPStatus() int {
	switch s {
	case StatusPartial:
		return http.StatusMultiStatus
	case StatusFailed:
		return http.StatusBadRequest
	default:
		return http.StatusOK
	}
}

type Failure struct {
	ID    string `json:"id"`
	Error string `json:"error"`
}

// Result collects per-item outcomes. Skipped items are neither successes
// nor failures (e.g. ids that no longer exist).
type Result struct {
	Succeeded []string  `json:"succeeded"`
	Failed    []Failure `json:"failed"`
	Skipped   []string  `json:"skipped"`
}

func NewResult() *Result {
	return &Result{
		Succeeded: []string{},
		Failed:    []Failure{},
		Skipped:   []string{},
	}
}

func (r *Result) Succeed(id string) {
	r.Succeeded = append(r.Succeeded, id)
}

func (r *Result) Fail(id string, err error) {
	r.Failed = append(r.Failed, Failure{ID: id, Error: err.Error()})
}

func (r *Result) Skip(id string) {
	r.Skipped = append(r.Skipped, id)
}

// Merge appends other's outcomes to r.
func (r *Result) Merge(other *Result) {
	if other == nil {
		return
	}
	r.Succeeded = append(r.Succeeded, other.Succeeded...)
	r.Failed = append(r.Failed, other.Failed...)
	r.Skipped = append(r.Skipped, other.Skipped...)
}

// Status is success when nothing failed, partial when some items failed
// and some succeeded, failed otherwise.
func (r *Result) Status() Status {
	switch {
	case len(r.Failed) == 0:
		return StatusSuccess
	case len(r.Succeeded) > 0:
		return StatusPartial
	default:
		return StatusFailed
	}
}
