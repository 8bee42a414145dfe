package comment

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLocation(t *testing.T) {
	text := "package x\n\ntype T struct{}\n"

	tests := []struct {
		name   string
		offset int
		want   string
	}{
		{name: "start_of_file", offset: 0, want: "x.go:1:1"},
		{name: "second_line", offset: 10, want: "x.go:2:1"},
		{name: "inside_decl", offset: 16, want: "x.go:3:6"},
		{name: "out_of_range", offset: 999, want: "x.go"},
		{name: "negative", offset: -1, want: "x.go"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Location("x.go", text, tt.offset))
		})
	}
}

func TestAddAndFlush(t *testing.T) {
	p := &ConsolePrinter{}
	p.Add("HDR", "x.go:1:1", "message", "extra line")

	assert.Len(t, p.comments, 1)
	assert.Equal(t, "HDR: x.go:1:1 message\nextra line", p.comments[0])

	p.Flush()
	assert.Empty(t, p.comments)
}

func TestAddDeduplicates(t *testing.T) {
	p := &ConsolePrinter{}
	p.Add("HDR", "x.go:1:1", "repeated")
	p.Add("HDR", "x.go:1:1", "repeated")
	p.Add("HDR", "x.go:2:1", "different")

	assert.Len(t, p.comments, 2)
}

func TestNilPrinterIsSafe(t *testing.T) {
	var p *ConsolePrinter
	assert.NotPanics(t, func() {
		p.Add("HDR", "", "dropped")
		p.Flush()
	})
}
