// Package keyboard describes reply and inline keyboards independently of the
// transport and converts them to telebot markup at the edge.
package keyboard

import tele "gopkg.in/telebot.v4"

// ButtonKind tells how a button behaves when pressed.
type ButtonKind int

const (
	// KindText sends its label back as a plain message (reply keyboards).
	KindText ButtonKind = iota
	// KindLocation asks the client to share the user's location (reply keyboards).
	KindLocation
	// KindURL opens a link (inline keyboards).
	KindURL
	// KindData delivers Data as callback data (inline keyboards).
	KindData
)

// Button is one keyboard key.
type Button struct {
	Kind ButtonKind
	Text string
	URL  string
	Data string
}

// Keyboard is a grid of buttons attached to a message.
type Keyboard struct {
	Inline bool
	Rows   [][]Button
}

// Text returns a reply button echoing its label.
func Text(label string) Button { return Button{Kind: KindText, Text: label} }

// Location returns a reply button requesting the user's location.
func Location(label string) Button { return Button{Kind: KindLocation, Text: label} }

// URL returns an inline link button.
func URL(label, url string) Button { return Button{Kind: KindURL, Text: label, URL: url} }

// Data returns an inline button carrying raw callback data.
func Data(label, data string) Button { return Button{Kind: KindData, Text: label, Data: data} }

// Reply builds a reply keyboard.
func Reply(rows ...[]Button) *Keyboard { return &Keyboard{Rows: rows} }

// Inline builds an inline keyboard.
func Inline(rows ...[]Button) *Keyboard { return &Keyboard{Inline: true, Rows: rows} }

// ReplyButtons builds a reply keyboard from rows of text labels.
func ReplyButtons(rows ...[]string) *Keyboard {
	kb := &Keyboard{Rows: make([][]Button, 0, len(rows))}
	for _, row := range rows {
		buttons := make([]Button, 0, len(row))
		for _, label := range row {
			buttons = append(buttons, Text(label))
		}
		kb.Rows = append(kb.Rows, buttons)
	}
	return kb
}

// Chunk splits a flat list of buttons into rows with up to n buttons per row.
func Chunk(buttons []Button, n int) [][]Button {
	if n <= 1 {
		n = 1
	}
	rows := make([][]Button, 0, (len(buttons)+n-1)/n)
	for i := 0; i < len(buttons); i += n {
		end := i + n
		if end > len(buttons) {
			end = len(buttons)
		}
		rows = append(rows, buttons[i:end])
	}
	return rows
}

// Labels flattens the keyboard into its button captions, row by row.
func (k *Keyboard) Labels() []string {
	if k == nil {
		return nil
	}
	var out []string
	for _, row := range k.Rows {
		for _, b := range row {
			out = append(out, b.Text)
		}
	}
	return out
}

// Markup converts the keyboard to telebot reply markup. Nil keyboards yield nil.
func (k *Keyboard) Markup() *tele.ReplyMarkup {
	if k == nil {
		return nil
	}
	if k.Inline {
		markup := &tele.ReplyMarkup{}
		inline := make([][]tele.InlineButton, 0, len(k.Rows))
		for _, row := range k.Rows {
			r := make([]tele.InlineButton, 0, len(row))
			for _, b := range row {
				btn := tele.InlineButton{Text: b.Text}
				if b.Kind == KindURL {
					btn.URL = b.URL
				} else {
					btn.Data = b.Data
				}
				r = append(r, btn)
			}
			inline = append(inline, r)
		}
		markup.InlineKeyboard = inline
		return markup
	}

	markup := &tele.ReplyMarkup{ResizeKeyboard: true}
	rows := make([]tele.Row, 0, len(k.Rows))
	for _, row := range k.Rows {
		buttons := make([]tele.Btn, 0, len(row))
		for _, b := range row {
			if b.Kind == KindLocation {
				buttons = append(buttons, markup.Location(b.Text))
				continue
			}
			buttons = append(buttons, markup.Text(b.Text))
		}
		rows = append(rows, markup.Row(buttons...))
	}
	markup.Reply(rows...)
	return markup
}

// RemoveKeyboard returns a markup that hides the keyboard.
func RemoveKeyboard() *tele.ReplyMarkup {
	return &tele.ReplyMarkup{RemoveKeyboard: true}
}
