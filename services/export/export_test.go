package export

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

var doc = Document{
	Title:       "Classes",
	Subtitle:    "Page 1 of 3",
	Headers:     []string{"Name", "Section", "Subjects", "Status"},
	Rows:        [][]string{{"Form 1", "A", "Mathematics, English", "Active"}, {"Form 2", "B", "", "Inactive"}},
	GeneratedAt: time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC),
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    Format
		wantErr bool
	}{
		{in: "pdf", want: PDF},
		{in: " XLSX ", want: XLSX},
		{in: "", want: PDF},
		{in: "csv", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseFormat(tt.in)
			if (err != nil) != tt.wantErr {
				t.Errorf("ParseFormat() error = %v, wantErr %v", err, tt.wantErr)
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFormat_Filename(t *testing.T) {
	assert.Equal(t, "job-postings.pdf", PDF.Filename("Job postings"))
	assert.Equal(t, "terms---conditions.xlsx", XLSX.Filename("Terms & conditions"))
}

func TestService_Export_pdf(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewService().Export(&buf, PDF, doc))
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("%PDF")))
}

func TestService_Export_xlsx(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewService().Export(&buf, XLSX, doc))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, "Classes", f.GetSheetName(0))
	rows, err := f.GetRows("Classes")
	require.NoError(t, err)
	assert.Equal(t, [][]string{
		{"Name", "Section", "Subjects", "Status"},
		{"Form 1", "A", "Mathematics, English", "Active"},
		{"Form 2", "B", "", "Inactive"},
	}, rows)
}

func TestService_Export_unknownFormat(t *testing.T) {
	err := NewService().Export(&bytes.Buffer{}, Format("csv"), doc)
	assert.ErrorIs(t, err, ErrUnknownFormat)
}

func Test_sheetName(t *testing.T) {
	assert.Equal(t, "Terms & conditions", sheetName("Terms & conditions"))
	assert.Equal(t, "a b", sheetName("a/b"))
	assert.Equal(t, "Sheet1", sheetName("  "))
	assert.Len(t, []rune(sheetName("A very long title that exceeds the limit")), 31)
}
