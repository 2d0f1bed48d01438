package csvimport

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadCSV(t *testing.T) {
	input := "Open Time,Side,Size\n2024-01-15 09:30:00,buy,10\n2024-01-16 09:30:00,sell,5\n"
	preview, err := ReadCSV(strings.NewReader(input), 0)

	require.NoError(t, err)
	assert.Equal(t, []string{"Open Time", "Side", "Size"}, preview.Headers)
	require.Len(t, preview.Rows, 2)
	assert.Equal(t, "buy", preview.Rows[0]["Side"])
	assert.Equal(t, "5", preview.Rows[1]["Size"])
}

func TestReadCSVEmptyFile(t *testing.T) {
	_, err := ReadCSV(strings.NewReader(""), 0)
	assert.ErrorIs(t, err, ErrEmptyFile)
}

func TestReadCSVHeaderOnly(t *testing.T) {
	_, err := ReadCSV(strings.NewReader("Open Time,Side,Size\n"), 0)
	assert.ErrorIs(t, err, ErrEmptyFile)
}

func TestReadCSVRowLimit(t *testing.T) {
	var sb strings.Builder
	sb.WriteString("A,B\n")
	for i := 0; i < 10; i++ {
		sb.WriteString("1,2\n")
	}
	preview, err := ReadCSV(strings.NewReader(sb.String()), 3)

	require.NoError(t, err)
	assert.Len(t, preview.Rows, 3)
}

func TestReadCSVRaggedRows(t *testing.T) {
	input := "A,B,C\n1,2\n1,2,3,4\n"
	preview, err := ReadCSV(strings.NewReader(input), 0)

	require.NoError(t, err)
	require.Len(t, preview.Rows, 2)
	assert.Equal(t, "", preview.Rows[0]["C"])
	assert.Equal(t, "3", preview.Rows[1]["C"])
}

func TestReadCSVMalformed(t *testing.T) {
	input := "A,B\n\"unclosed,2\n"
	_, err := ReadCSV(strings.NewReader(input), 0)
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrEmptyFile)
}
