package csvimport

import (
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/davidbugayov/statement-importer/internal/domain/categorization"
	"github.com/davidbugayov/statement-importer/internal/domain/import/extractor"
)

func newTestHandler(t *testing.T) *Handler {
	t.Helper()
	detector := categorization.NewDetector(slog.Default())
	return NewHandler(DefaultConfig(), detector, slog.Default())
}

func TestHandler_Validate(t *testing.T) {
	h := newTestHandler(t)

	tests := []struct {
		name  string
		lines []string
		want  bool
	}{
		{
			name:  "russian header row",
			lines: []string{"Дата;Описание;Сумма", "01.02.2024;МАГНИТ;-450,00"},
			want:  true,
		},
		{
			name:  "english header row",
			lines: []string{"Date;Description;Amount"},
			want:  true,
		},
		{
			name:  "headerless but first record parses",
			lines: []string{"01.02.2024;ПЯТЕРОЧКА;-120,50"},
			want:  true,
		},
		{
			name:  "free text",
			lines: []string{"Выписка по счёту за февраль"},
			want:  false,
		},
		{
			name:  "empty",
			lines: nil,
			want:  false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, h.Validate(tt.lines))
		})
	}
}

func TestHandler_SkipHeaders(t *testing.T) {
	h := newTestHandler(t)

	t.Run("header row is skipped", func(t *testing.T) {
		got, err := h.SkipHeaders([]string{"Дата;Описание;Сумма", "01.02.2024;X;-1"})
		require.NoError(t, err)
		assert.Equal(t, 1, got)
	})

	t.Run("headerless starts at zero", func(t *testing.T) {
		got, err := h.SkipHeaders([]string{"01.02.2024;X;-1"})
		require.NoError(t, err)
		assert.Equal(t, 0, got)
	})

	t.Run("empty file", func(t *testing.T) {
		_, err := h.SkipHeaders(nil)
		assert.Error(t, err)
	})
}

func TestHandler_Supports(t *testing.T) {
	h := newTestHandler(t)

	assert.True(t, h.Supports(extractor.FileTypeCSV))
	assert.True(t, h.Supports(extractor.FileTypeText))
	assert.False(t, h.Supports(extractor.FileTypePDF))
	assert.False(t, h.Supports(extractor.FileTypeXLSX))
}

func TestRowParser_ParseLine(t *testing.T) {
	h := newTestHandler(t)

	t.Run("expense row", func(t *testing.T) {
		p := h.NewParser()
		tx := p.ParseLine("15.03.2024;МАГНИТ МОСКВА;-1 250,00")
		require.NotNil(t, tx)
		assert.Equal(t, time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC), tx.Date)
		assert.Equal(t, "Магнит Москва", tx.Title)
		assert.True(t, tx.IsExpense)
		assert.Equal(t, int64(-125000), tx.Amount.Amount())
		assert.Equal(t, categorization.CategorySupermarkets, tx.Category)
		assert.Equal(t, 0, p.Skipped())
	})

	t.Run("income row without sign", func(t *testing.T) {
		p := h.NewParser()
		tx := p.ParseLine("01.03.2024;Зарплата за февраль;50000,00")
		require.NotNil(t, tx)
		assert.False(t, tx.IsExpense)
		assert.Equal(t, int64(5000000), tx.Amount.Amount())
	})

	t.Run("quoted description with delimiter inside", func(t *testing.T) {
		p := h.NewParser()
		tx := p.ParseLine(`10.03.2024;"Перевод; по СБП";-300,00`)
		require.NotNil(t, tx)
		assert.Equal(t, "Перевод; по СБП", tx.Title)
	})

	t.Run("comma delimiter sniffed", func(t *testing.T) {
		p := h.NewParser()
		tx := p.ParseLine("15.03.2024,COFFEE POINT,-150.00")
		require.NotNil(t, tx)
		assert.Equal(t, "Coffee Point", tx.Title)
		assert.Equal(t, int64(-15000), tx.Amount.Amount())
	})

	t.Run("iso date fallback", func(t *testing.T) {
		p := h.NewParser()
		tx := p.ParseLine("2024-03-15;ОЗОН;-99,00")
		require.NotNil(t, tx)
		assert.Equal(t, 2024, tx.Date.Year())
	})

	t.Run("bad rows are counted not fatal", func(t *testing.T) {
		p := h.NewParser()
		assert.Nil(t, p.ParseLine("не дата;X;-1"))
		assert.Nil(t, p.ParseLine("15.03.2024;X;не сумма"))
		assert.Nil(t, p.ParseLine("15.03.2024;только две колонки"))
		tx := p.ParseLine("15.03.2024;ПЯТЕРОЧКА;-10,00")
		require.NotNil(t, tx)
		assert.Equal(t, 3, p.Skipped())
	})

	t.Run("blank line is ignored", func(t *testing.T) {
		p := h.NewParser()
		assert.Nil(t, p.ParseLine("   "))
		assert.Equal(t, 0, p.Skipped())
	})

	t.Run("flush has nothing buffered", func(t *testing.T) {
		p := h.NewParser()
		p.ParseLine("15.03.2024;X;-10,00")
		assert.Nil(t, p.Flush())
	})
}

func TestRowParser_CategoryColumn(t *testing.T) {
	cfg := DefaultConfig()
	cfg.CategoryColumn = 3
	h := NewHandler(cfg, categorization.NewDetector(slog.Default()), slog.Default())

	p := h.NewParser()
	tx := p.ParseLine("15.03.2024;ООО РОМАШКА;-10,00;Подписки")
	require.NotNil(t, tx)
	assert.Equal(t, "Подписки", tx.Category)
}

func TestHandler_ParseAll(t *testing.T) {
	h := newTestHandler(t)

	t.Run("header mapped document", func(t *testing.T) {
		text := "Дата;Описание;Сумма;Категория\n" +
			"15.03.2024;МАГНИТ;-450,00;\n" +
			"16.03.2024;Зарплата;75000,00;Зарплата\n" +
			"плохая строка;;\n" +
			"17.03.2024;ЯНДЕКС ТАКСИ;-320,00;\n"

		txs, skipped, err := h.ParseAll(text)
		require.NoError(t, err)
		assert.Equal(t, 1, skipped)
		require.Len(t, txs, 3)

		assert.Equal(t, "Магнит", txs[0].Title)
		assert.Equal(t, categorization.CategorySupermarkets, txs[0].Category)
		assert.Equal(t, "Зарплата", txs[1].Category)
		assert.False(t, txs[1].IsExpense)
		assert.Equal(t, categorization.CategoryTransport, txs[2].Category)
	})

	t.Run("english headers map onto same struct", func(t *testing.T) {
		text := "Date;Description;Amount\n15.03.2024;COFFEE POINT;-150,00\n"
		txs, skipped, err := h.ParseAll(text)
		require.NoError(t, err)
		assert.Equal(t, 0, skipped)
		require.Len(t, txs, 1)
		assert.Equal(t, "Coffee Point", txs[0].Title)
	})
}
