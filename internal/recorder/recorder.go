package recorder

import "SignalDesk/internal/model"

// Header is the column layout of the persisted snapshot.
var Header = []string{"Date", "Open", "High", "Low", "Close", "Volume", "MA20", "RSI", "BB_High", "BB_Low"}

// Recorder persists the processed table of the latest run.
type Recorder interface {
	Save(table *model.Table) error
	Path() string
}
