package ozon

import (
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/davidbugayov/statement-importer/internal/domain/categorization"
)

func newTestParser() *lineParser {
	detector := categorization.NewDetector(slog.Default())
	return newLineParser(detector, slog.Default())
}

func TestParseLine_CombinedFormat(t *testing.T) {
	t.Run("expense with full time", func(t *testing.T) {
		p := newTestParser()
		tx := p.ParseLine("15.01.2024 10:30:45 Оплата товаров OZON - 1 000,00 RUB")
		require.NotNil(t, tx)

		want, _ := time.Parse(dateTimeLayout, "15.01.2024 10:30:45")
		assert.Equal(t, want, tx.Date)
		assert.Equal(t, "Оплата товаров OZON", tx.Title)
		assert.Equal(t, int64(-100000), tx.Amount.Amount())
		assert.True(t, tx.IsExpense)
		assert.Equal(t, "RUB", tx.Currency())
		assert.Equal(t, categorization.CategoryShopping, tx.Category)
		assert.Equal(t, Source, tx.Source)
	})

	t.Run("income with plus sign", func(t *testing.T) {
		p := newTestParser()
		tx := p.ParseLine("20.01.2024 09:15:00 Зарплата за январь + 85 000,00 RUB")
		require.NotNil(t, tx)
		assert.False(t, tx.IsExpense)
		assert.Equal(t, int64(8500000), tx.Amount.Amount())
		assert.Equal(t, categorization.CategorySalary, tx.Category)
	})

	t.Run("no sign means income", func(t *testing.T) {
		p := newTestParser()
		tx := p.ParseLine("20.01.2024 09:15 Пополнение счёта 500,00 RUB")
		require.NotNil(t, tx)
		assert.False(t, tx.IsExpense)
		assert.Equal(t, int64(50000), tx.Amount.Amount())
	})

	t.Run("cyrillic currency spelling", func(t *testing.T) {
		p := newTestParser()
		tx := p.ParseLine("15.01.2024 10:30:45 Покупка МАГНИТ - 345,50 РУБ")
		require.NotNil(t, tx)
		assert.Equal(t, "RUB", tx.Currency())
	})

	t.Run("unknown currency degrades to RUB", func(t *testing.T) {
		p := newTestParser()
		tx := p.ParseLine("15.01.2024 10:30:45 Покупка - 345,50 XYZ")
		require.NotNil(t, tx)
		assert.Equal(t, "RUB", tx.Currency())
	})

	t.Run("trailing balance columns are ignored", func(t *testing.T) {
		p := newTestParser()
		tx := p.ParseLine("15.01.2024 10:30:45 Перевод СБП - 250,00 RUB + 12 500,00 RUB")
		require.NotNil(t, tx)
		assert.Equal(t, int64(-25000), tx.Amount.Amount())
	})
}

func TestParseLine_MultilineFormat(t *testing.T) {
	t.Run("complete transaction", func(t *testing.T) {
		p := newTestParser()

		assert.Nil(t, p.ParseLine("15.01.2024 10:30:45 123456"))
		assert.Nil(t, p.ParseLine("Перевод СБП"))
		assert.Nil(t, p.ParseLine("Иванову И.И."))
		tx := p.ParseLine("+1 000,00")
		require.NotNil(t, tx)

		assert.Equal(t, "Перевод СБП Иванову И.И.", tx.Title)
		assert.Equal(t, int64(100000), tx.Amount.Amount())
		assert.False(t, tx.IsExpense)
		assert.Equal(t, "Документ №123456", tx.Note)
		assert.Equal(t, categorization.CategoryTransfers, tx.Category)
		assert.Equal(t, 0, p.Skipped())
	})

	t.Run("minus amount is expense", func(t *testing.T) {
		p := newTestParser()
		p.ParseLine("15.01.2024 10:30:45 123456")
		p.ParseLine("Покупка ПЯТЁРОЧКА")
		tx := p.ParseLine("- 345,50")
		require.NotNil(t, tx)
		assert.True(t, tx.IsExpense)
		assert.Equal(t, int64(-34550), tx.Amount.Amount())
	})

	t.Run("missing description falls back to document title", func(t *testing.T) {
		p := newTestParser()
		p.ParseLine("15.01.2024 10:30:45 987654")
		tx := p.ParseLine("100,00")
		require.NotNil(t, tx)
		assert.Equal(t, "Операция №987654", tx.Title)
	})

	t.Run("noise between transactions is ignored", func(t *testing.T) {
		p := newTestParser()
		p.ParseLine("15.01.2024 10:30:45 123456")
		p.ParseLine("Перевод СБП")
		assert.Nil(t, p.ParseLine("Страница 2 из 5"))
		assert.Nil(t, p.ParseLine("Перенесено со страницы 1"))
		tx := p.ParseLine("+1 000,00")
		require.NotNil(t, tx)
		assert.Equal(t, "Перевод СБП", tx.Title)
	})

	t.Run("start line returns previous completed transaction", func(t *testing.T) {
		p := newTestParser()
		p.ParseLine("15.01.2024 10:30:45 111111")
		p.ParseLine("Первая операция")
		first := p.ParseLine("-100,00")
		require.NotNil(t, first)

		assert.Nil(t, p.ParseLine("16.01.2024 11:00:00 222222"))
		p.ParseLine("Вторая операция")
		second := p.ParseLine("-200,00")
		require.NotNil(t, second)
		assert.Equal(t, "Вторая операция", second.Title)
	})
}

func TestParseLine_FailureIsolation(t *testing.T) {
	t.Run("start line discards incomplete predecessor", func(t *testing.T) {
		p := newTestParser()
		p.ParseLine("15.01.2024 10:30:45 111111")
		p.ParseLine("Описание без суммы")

		// Next start line: predecessor never saw an amount.
		assert.Nil(t, p.ParseLine("16.01.2024 11:00:00 222222"))
		assert.Equal(t, 1, p.Skipped())

		tx := p.ParseLine("+50,00")
		require.NotNil(t, tx)
		assert.Equal(t, "Операция №222222", tx.Title)
	})

	t.Run("combined line discards open accumulator", func(t *testing.T) {
		p := newTestParser()
		p.ParseLine("15.01.2024 10:30:45 111111")
		p.ParseLine("Недописанная операция")

		tx := p.ParseLine("16.01.2024 12:00:00 Оплата кафе - 500,00 RUB")
		require.NotNil(t, tx)
		assert.Equal(t, "Оплата кафе", tx.Title)
		assert.Equal(t, 1, p.Skipped())
	})

	t.Run("unparseable line outside transaction is ignored", func(t *testing.T) {
		p := newTestParser()
		assert.Nil(t, p.ParseLine("просто мусорная строка"))
		assert.Equal(t, 0, p.Skipped())
	})

	t.Run("unparseable amount keeps accumulator open", func(t *testing.T) {
		p := newTestParser()
		p.ParseLine("15.01.2024 10:30:45 111111")
		p.ParseLine("Описание")
		// Amount regexp rejects this outright, treated as description.
		assert.Nil(t, p.ParseLine("x100"))
		tx := p.ParseLine("+100,00")
		require.NotNil(t, tx)
	})
}

func TestFlush(t *testing.T) {
	t.Run("open incomplete transaction is discarded", func(t *testing.T) {
		p := newTestParser()
		p.ParseLine("15.01.2024 10:30:45 111111")
		p.ParseLine("Хвост без суммы")

		assert.Nil(t, p.Flush())
		assert.Equal(t, 1, p.Skipped())
	})

	t.Run("nothing open", func(t *testing.T) {
		p := newTestParser()
		assert.Nil(t, p.Flush())
		assert.Equal(t, 0, p.Skipped())
	})
}

func TestShouldSkip(t *testing.T) {
	p := newTestParser()

	skipLines := []string{
		"Итого: 10 000,00",
		"Перенесено со страницы 1",
		"Продолжение на странице 3",
		"Страница 2 из 5",
		"Входящий остаток на начало периода",
		"Исходящий остаток на конец периода",
		"Сформировано 20.01.2024 в 10:00:00",
		"Подпись Банка",
		"Выписка по счёту № 40817810000000000001",
		"Период: с 01.01.2024 по 31.01.2024",
		"ДАТА И ВРЕМЯ ОПИСАНИЕ ОПЕРАЦИИ СУММА БАЛАНС",
	}
	for _, line := range skipLines {
		assert.True(t, p.shouldSkip(line), "expected skip: %s", line)
	}

	assert.False(t, p.shouldSkip("15.01.2024 10:30:45 123456"))
	assert.False(t, p.shouldSkip("Перевод СБП"))
}

func TestParser_SplitAndCombinedEquivalence(t *testing.T) {
	// The same operation in both layouts should produce the same
	// date, amount, direction and category.
	combined := newTestParser()
	ctx := combined.ParseLine("15.01.2024 10:30:45 Перевод СБП - 250,00 RUB")
	require.NotNil(t, ctx)

	split := newTestParser()
	split.ParseLine("15.01.2024 10:30:45 123456")
	split.ParseLine("Перевод СБП")
	stx := split.ParseLine("-250,00")
	require.NotNil(t, stx)

	assert.Equal(t, ctx.Date, stx.Date)
	assert.Equal(t, ctx.Amount.Amount(), stx.Amount.Amount())
	assert.Equal(t, ctx.IsExpense, stx.IsExpense)
	assert.Equal(t, ctx.Category, stx.Category)
	assert.Equal(t, ctx.Title, stx.Title)
}

func TestParser_NoSharedState(t *testing.T) {
	h := NewHandler(categorization.NewDetector(slog.Default()), slog.Default())

	first := h.NewParser()
	first.ParseLine("15.01.2024 10:30:45 111111")
	first.ParseLine("Хвост")

	// A fresh parser must not see the first parser's open state.
	second := h.NewParser()
	assert.Nil(t, second.Flush())
	assert.Equal(t, 0, second.Skipped())
}

func BenchmarkParseLine_Combined(b *testing.B) {
	p := newTestParser()
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = p.ParseLine("15.01.2024 10:30:45 Оплата товаров OZON - 1 000,00 RUB")
	}
}

func BenchmarkParseLine_Multiline(b *testing.B) {
	p := newTestParser()
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		p.ParseLine("15.01.2024 10:30:45 123456")
		p.ParseLine("Перевод СБП")
		_ = p.ParseLine("-250,00")
	}
}
