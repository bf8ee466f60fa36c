package dashboard

import (
	"time"

	"SignalDesk/internal/model"
	"SignalDesk/internal/notifier"
)

const tailRows = 10

// RowView is one table row as shown on the page and in JSON.
type RowView struct {
	Date   string  `json:"date"`
	Open   float64 `json:"open"`
	High   float64 `json:"high"`
	Low    float64 `json:"low"`
	Close  float64 `json:"close"`
	Volume float64 `json:"volume"`
	MA20   float64 `json:"ma20"`
	RSI    float64 `json:"rsi"`
	BBHigh float64 `json:"bb_high"`
	BBLow  float64 `json:"bb_low"`
}

// RunView is the serialisable summary of a run, pushed over the websocket
// and returned by /api/run.
type RunView struct {
	Type          string    `json:"type"`
	Symbol        string    `json:"symbol"`
	Start         string    `json:"start"`
	End           string    `json:"end"`
	Signal        string    `json:"signal"`
	SignalLabel   string    `json:"signal_label"`
	Probability   float64   `json:"probability"`
	TrainRows     int       `json:"train_rows"`
	LivePrice     *float64  `json:"live_price"`
	LivePriceText string    `json:"live_price_text,omitempty"`
	Warnings      []string  `json:"warnings"`
	Rows          int       `json:"rows"`
	Dropped       int       `json:"dropped"`
	Tail          []RowView `json:"tail"`
	CSVPath       string    `json:"csv_path"`
	RanAt         time.Time `json:"ran_at"`
	DurationMS    int64     `json:"duration_ms"`
}

// NewRunView flattens res for presentation.
func NewRunView(res *model.RunResult) *RunView {
	v := &RunView{
		Type:        "run",
		Symbol:      res.Symbol,
		Start:       res.Start.Format("2006-01-02"),
		End:         res.End.Format("2006-01-02"),
		Signal:      string(res.Predict.Signal),
		SignalLabel: res.Predict.Signal.Emoji() + " " + string(res.Predict.Signal),
		Probability: res.Predict.Probability,
		TrainRows:   res.Predict.TrainRows,
		LivePrice:   res.LivePrice,
		Warnings:    append([]string{}, res.Warnings...),
		Dropped:     res.Dropped,
		CSVPath:     res.CSVPath,
		RanAt:       res.RanAt,
		DurationMS:  res.Duration.Milliseconds(),
	}
	if res.LivePrice != nil {
		v.LivePriceText = notifier.FormatPrice(*res.LivePrice)
	}
	if res.Table != nil {
		v.Rows = res.Table.Len()
		for _, r := range res.Table.Tail(tailRows) {
			v.Tail = append(v.Tail, RowView{
				Date: r.Time.Format("2006-01-02"), Open: r.Open, High: r.High, Low: r.Low,
				Close: r.Close, Volume: r.Volume, MA20: r.MA20, RSI: r.RSI, BBHigh: r.BBHigh, BBLow: r.BBLow,
			})
		}
	}
	return v
}

// page is the template data for the index view.
type page struct {
	Symbol  string
	Start   string
	End     string
	Run     *RunView
	Error   string
	Flash   string
	FlashOK bool
	ChartTS int64
	CanSend bool
}
