// Package keyboard builds inline keyboards without repeating telebot's
// markup plumbing at every call site.
package keyboard

import tele "gopkg.in/telebot.v4"

// InlineBtn is one inline button: its label, callback unique and payload.
type InlineBtn struct {
	Text   string
	Unique string
	Data   string
}

// Row lays the given buttons out side by side on a single row.
func Row(buttons ...InlineBtn) *tele.ReplyMarkup {
	return build([][]InlineBtn{buttons})
}

// Column stacks each button on its own row.
func Column(buttons ...InlineBtn) *tele.ReplyMarkup {
	rows := make([][]InlineBtn, len(buttons))
	for i, b := range buttons {
		rows[i] = []InlineBtn{b}
	}
	return build(rows)
}

// RemoveKeyboard hides any visible reply keyboard.
func RemoveKeyboard() *tele.ReplyMarkup {
	return &tele.ReplyMarkup{RemoveKeyboard: true}
}

func build(rows [][]InlineBtn) *tele.ReplyMarkup {
	markup := &tele.ReplyMarkup{}
	markup.InlineKeyboard = make([][]tele.InlineButton, len(rows))
	for i, row := range rows {
		markup.InlineKeyboard[i] = make([]tele.InlineButton, len(row))
		for j, btn := range row {
			markup.InlineKeyboard[i][j] = *markup.Data(btn.Text, btn.Unique, btn.Data).Inline()
		}
	}
	return markup
}
