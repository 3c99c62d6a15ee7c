package channels

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatTelegramHTML(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{"double asterisk bold", "hola **mundo**", "hola <b>mundo</b>"},
		{"single asterisk bold", "ganador: *05*", "ganador: <b>05</b>"},
		{"italic", "_suerte_", "<i>suerte</i>"},
		{"code", "id `abc`", "id <code>abc</code>"},
		{"mixed", "**Lotto** _Activo_ `15:00`", "<b>Lotto</b> <i>Activo</i> <code>15:00</code>"},
		{"unpaired marker untouched", "5 * 3", "5 * 3"},
		{"plain text", "sin formato", "sin formato"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, FormatTelegramHTML(tc.in))
		})
	}
}
