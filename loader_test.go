package megasena

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const semicolonSheet = `Concurso;Data do Sorteio;Bola1;Bola2;Bola3;Bola4;Bola5;Bola6;Ganhadores
1;11/03/1996;41;5;4;52;30;33;0
2;18/03/1996;9;39;37;49;43;41;1
3;25/03/1996;10;11;29;30;36;47;2
`

func TestLoadHistoryCSV(t *testing.T) {
	t.Run("semicolon_sheet_with_header", func(t *testing.T) {
		h, err := LoadHistoryCSV(strings.NewReader(semicolonSheet))
		require.NoError(t, err)
		require.Equal(t, 3, h.Len())

		first := h.Draws()[0]
		assert.Equal(t, 1, first.Number)
		assert.Equal(t, time.Date(1996, time.March, 11, 0, 0, 0, 0, time.UTC), first.Date)
		assert.Equal(t, []int{4, 5, 30, 33, 41, 52}, first.Sorted())
	})

	t.Run("comma_sheet_iso_dates", func(t *testing.T) {
		input := "contest,date,n1,n2,n3,n4,n5,n6\n" +
			"2, 1996-03-18, 9, 39, 37, 49, 43, 41\n" +
			"1,1996-03-11,41,5,4,52,30,33\n"
		h, err := LoadHistoryCSV(strings.NewReader(input))
		require.NoError(t, err)
		require.Equal(t, 2, h.Len())

		latest, ok := h.Latest()
		require.True(t, ok)
		assert.Equal(t, 2, latest.Number)
	})

	t.Run("short_and_blank_rows_skipped", func(t *testing.T) {
		input := "Mega-Sena;resultados\n\n" + semicolonSheet + "total;3\n"
		h, err := LoadHistoryCSV(strings.NewReader(input))
		require.NoError(t, err)
		assert.Equal(t, 3, h.Len())
	})

	tests := []struct {
		name  string
		input string
	}{
		{"empty", ""},
		{"header_only", "Concurso;Data;B1;B2;B3;B4;B5;B6\n"},
		{"bad_number", "1;11/03/1996;4;x;30;33;41;52\n"},
		{"bad_contest", "um;11/03/1996;4;5;30;33;41;52\n"},
		{"number_out_of_range", "1;11/03/1996;4;5;30;33;41;61\n"},
		{"repeated_contest", "1;11/03/1996;4;5;30;33;41;52\n1;18/03/1996;9;37;39;41;43;49\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadHistoryCSV(strings.NewReader(tt.input))
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrDatasetCorrupted)
		})
	}
}

func TestLoadHistoryFile(t *testing.T) {
	dir := t.TempDir()

	path := filepath.Join(dir, "mega.csv")
	require.NoError(t, os.WriteFile(path, []byte(semicolonSheet), 0o600))

	h, err := LoadHistoryFile(path)
	require.NoError(t, err)
	assert.Equal(t, 3, h.Len())

	_, err = LoadHistoryFile(filepath.Join(dir, "missing.csv"))
	assert.ErrorIs(t, err, ErrDatasetNotFound)
}
