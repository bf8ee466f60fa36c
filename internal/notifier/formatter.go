package notifier

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"SignalDesk/internal/model"
)

// FormatPrice renders a rupee price with two decimals.
func FormatPrice(p float64) string {
	return "₹" + decimal.NewFromFloat(p).StringFixed(2)
}

var markdownEscaper = strings.NewReplacer("_", "\\_", "*", "\\*", "`", "\\`", "[", "\\[")

// FormatSignalAlert builds the Markdown alert sent by the "send signal" action.
// The live price line is omitted when the price is unavailable.
func FormatSignalAlert(symbol string, signal model.Signal, livePrice *float64) string {
	msg := fmt.Sprintf("*%s* - Signal: *%s %s*", markdownEscaper.Replace(symbol), signal.Emoji(), signal)
	if livePrice != nil {
		msg += "\n💰 Live Price: " + FormatPrice(*livePrice)
	}
	return msg
}

// FormatRunSummary is the longer chat reply for the /signal command.
func FormatRunSummary(res *model.RunResult) string {
	var b strings.Builder
	b.WriteString(FormatSignalAlert(res.Symbol, res.Predict.Signal, res.LivePrice))
	b.WriteString(fmt.Sprintf("\nP(up): %s", decimal.NewFromFloat(res.Predict.Probability*100).StringFixed(1)))
	b.WriteString("%")
	b.WriteString(fmt.Sprintf("\nTrained on %d rows, %s to %s",
		res.Predict.TrainRows, res.Start.Format("2006-01-02"), res.End.Format("2006-01-02")))
	if res.Table != nil && res.Table.Len() > 0 {
		last := res.Table.Rows[res.Table.Len()-1]
		b.WriteString(fmt.Sprintf("\nLast close %s (%s), MA20 %s, RSI %s",
			FormatPrice(last.Close), last.Time.Format("2006-01-02"),
			FormatPrice(last.MA20), decimal.NewFromFloat(last.RSI).StringFixed(1)))
	}
	for _, w := range res.Warnings {
		b.WriteString("\n⚠️ " + w)
	}
	return b.String()
}

// FormatHelp lists the chat commands.
func FormatHelp() string {
	return "Commands:\n/signal - run the model and reply with the signal\n/csv - send the processed data file"
}
