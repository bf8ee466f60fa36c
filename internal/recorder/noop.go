package recorder

import "SignalDesk/internal/model"

// NoopRecorder discards every snapshot. Used when no output path is configured.
type NoopRecorder struct{}

func NewNoopRecorder() *NoopRecorder { return &NoopRecorder{} }

func (n *NoopRecorder) Save(_ *model.Table) error { return nil }
func (n *NoopRecorder) Path() string              { return "" }
