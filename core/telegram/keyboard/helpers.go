// Package keyboard builds reply and inline keyboards.
package keyboard

import tele "gopkg.in/telebot.v4"

// InlineBtn describes one inline button. Unique routes the callback, Data is its payload.
type InlineBtn struct {
	Text   string
	Unique string
	Data   string
}

// ReplyButtons builds a resized reply keyboard from rows of labels.
func ReplyButtons(rows ...[]string) *tele.ReplyMarkup {
	markup := &tele.ReplyMarkup{ResizeKeyboard: true}
	keyboard := make([]tele.Row, 0, len(rows))
	for _, row := range rows {
		btns := make([]tele.Btn, 0, len(row))
		for _, label := range row {
			btns = append(btns, markup.Text(label))
		}
		keyboard = append(keyboard, markup.Row(btns...))
	}
	markup.Reply(keyboard...)
	return markup
}

// Inline builds an inline keyboard from rows of buttons.
func Inline(rows ...[]InlineBtn) *tele.ReplyMarkup {
	markup := &tele.ReplyMarkup{}
	keyboard := make([]tele.Row, 0, len(rows))
	for _, row := range rows {
		if len(row) == 0 {
			continue
		}
		btns := make([]tele.Btn, 0, len(row))
		for _, b := range row {
			btns = append(btns, markup.Data(b.Text, b.Unique, b.Data))
		}
		keyboard = append(keyboard, markup.Row(btns...))
	}
	markup.Inline(keyboard...)
	return markup
}

// Grid lays buttons out n per row, followed by the extra rows.
func Grid(buttons []InlineBtn, n int, extra ...[]InlineBtn) *tele.ReplyMarkup {
	if n < 1 {
		n = 1
	}
	rows := make([][]InlineBtn, 0, len(buttons)/n+1+len(extra))
	for i := 0; i < len(buttons); i += n {
		rows = append(rows, buttons[i:min(i+n, len(buttons))])
	}
	return Inline(append(rows, extra...)...)
}
