package keyboard

import "testing"

func TestParseCallback(t *testing.T) {
	tests := []struct {
		data    string
		want    CallbackData
		wantErr bool
	}{
		{data: "act:sources", want: CallbackData{Action: "act", Value: "sources"}},
		{data: "act:a:b", want: CallbackData{Action: "act", Value: "a:b"}},
		{data: "nothing", wantErr: true},
		{data: "act:", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.data, func(t *testing.T) {
			got, err := ParseCallback(tt.data)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error, got %+v", got)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if *got != tt.want {
				t.Errorf("got %+v, want %+v", *got, tt.want)
			}
		})
	}
}

func TestAnswerKeyboard(t *testing.T) {
	b := NewBuilder()

	with := b.AnswerKeyboard(true).InlineKeyboard[0]
	if len(with) != 3 || *with[0].CallbackData != "act:sources" {
		t.Errorf("with sources: %+v", with)
	}

	without := b.AnswerKeyboard(false).InlineKeyboard[0]
	if len(without) != 2 {
		t.Fatalf("without sources: %+v", without)
	}
	for _, btn := range without {
		data, err := ParseCallback(*btn.CallbackData)
		if err != nil || !IsAction(data) || data.Value == ActionSources {
			t.Errorf("unexpected button %q", *btn.CallbackData)
		}
	}
}
