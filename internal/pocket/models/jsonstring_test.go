package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAppendJSONString(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "plain", in: "Rohan Singh", want: `"Rohan Singh"`},
		{name: "quote and backslash", in: `a"b\c`, want: `"a\"b\\c"`},
		{name: "short escapes", in: "\b\f\n\r\t", want: `"\b\f\n\r\t"`},
		{name: "other control chars", in: "\x00\x1f", want: `"\u0000\u001f"`},
		{name: "html characters stay verbatim", in: "<a&b>", want: `"<a&b>"`},
		{name: "line separators stay verbatim", in: "\u2028\u2029", want: "\"\u2028\u2029\""},
		{name: "non-ascii", in: "Bengaluru, 560001 ₹", want: `"Bengaluru, 560001 ₹"`},
		{name: "invalid utf8 replaced", in: "a\xffb", want: "\"a\ufffdb\""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, string(AppendJSONString(nil, tt.in)))
		})
	}
}
