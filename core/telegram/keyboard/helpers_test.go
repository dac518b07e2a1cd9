package keyboard

import "testing"

func TestGridSplitsRows(t *testing.T) {
	btns := []InlineBtn{
		{Text: "09:00", Unique: "bk_time", Data: "t|09:00"},
		{Text: "10:00", Unique: "bk_time", Data: "t|10:00"},
		{Text: "11:00", Unique: "bk_time", Data: "t|11:00"},
	}
	markup := Grid(btns, 2, []InlineBtn{{Text: "Cancel", Unique: "bk_confirm", Data: "t|no"}})
	if got := len(markup.InlineKeyboard); got != 3 {
		t.Fatalf("rows = %d, want 3", got)
	}
	if got := len(markup.InlineKeyboard[0]); got != 2 {
		t.Fatalf("first row = %d buttons, want 2", got)
	}
	last := markup.InlineKeyboard[2][0]
	if last.Unique != "bk_confirm" || last.Data != "t|no" {
		t.Fatalf("unexpected extra button %+v", last)
	}
}

func TestReplyButtons(t *testing.T) {
	markup := ReplyButtons([]string{"📅 Book", "📋 My appointments"}, []string{"❌ Cancel appointment"})
	if len(markup.ReplyKeyboard) != 2 || len(markup.ReplyKeyboard[0]) != 2 {
		t.Fatalf("unexpected layout %+v", markup.ReplyKeyboard)
	}
	if !markup.ResizeKeyboard {
		t.Fatalf("keyboard should be resized")
	}
}
