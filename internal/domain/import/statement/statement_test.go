package statement

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testDescriptor() Descriptor {
	return Descriptor{
		BankName:        "Ozon Банк",
		Source:          "Ozon",
		BankTokens:      []string{"ozon", "озон"},
		TitleTokens:     []string{"выписка по счёту", "выписка по счету"},
		TableMarkers:    []string{"дата операции"},
		DefaultCurrency: "RUB",
	}
}

func TestValidateFormat(t *testing.T) {
	desc := testDescriptor()

	t.Run("all three tokens present", func(t *testing.T) {
		lines := []string{
			"Ozon Банк",
			"Выписка по счёту № 40817810000000000001",
			"Дата операции Документ Назначение Сумма",
		}
		assert.True(t, ValidateFormat(lines, desc))
	})

	t.Run("bank token alone is not enough", func(t *testing.T) {
		lines := []string{"Покупка на OZON.RU", "обычный чек", "итого 100"}
		assert.False(t, ValidateFormat(lines, desc))
	})

	t.Run("two of three fails", func(t *testing.T) {
		lines := []string{"Ozon Банк", "Выписка по счёту"}
		assert.False(t, ValidateFormat(lines, desc))
	})

	t.Run("tokens beyond the window are ignored", func(t *testing.T) {
		lines := make([]string, 0, MaxValidationLines+3)
		for i := 0; i < MaxValidationLines; i++ {
			lines = append(lines, fmt.Sprintf("строка %d", i))
		}
		lines = append(lines, "Ozon Банк", "Выписка по счёту", "Дата операции")
		assert.False(t, ValidateFormat(lines, desc))
	})

	t.Run("case insensitive", func(t *testing.T) {
		lines := []string{"OZON БАНК", "ВЫПИСКА ПО СЧЁТУ", "ДАТА ОПЕРАЦИИ"}
		assert.True(t, ValidateFormat(lines, desc))
	})

	t.Run("empty input", func(t *testing.T) {
		assert.False(t, ValidateFormat(nil, desc))
	})
}

func TestSkipHeaders(t *testing.T) {
	desc := testDescriptor()

	t.Run("returns first line after marker", func(t *testing.T) {
		lines := []string{
			"Ozon Банк",
			"Выписка по счёту",
			"Дата операции Документ Сумма",
			"15.01.2024 10:30:45 123456",
		}
		idx, err := SkipHeaders(lines, desc)
		require.NoError(t, err)
		assert.Equal(t, 3, idx)
	})

	t.Run("marker missing", func(t *testing.T) {
		lines := []string{"Ozon Банк", "Выписка по счёту", "прочий текст"}
		_, err := SkipHeaders(lines, desc)
		assert.ErrorIs(t, err, ErrHeaderNotFound)
	})

	t.Run("gives up after the scan bound", func(t *testing.T) {
		lines := make([]string, 0, MaxHeaderSkipLines+2)
		for i := 0; i < MaxHeaderSkipLines; i++ {
			lines = append(lines, "шум")
		}
		lines = append(lines, "Дата операции")
		_, err := SkipHeaders(lines, desc)
		assert.ErrorIs(t, err, ErrHeaderNotFound)
	})
}

func TestSplitLines(t *testing.T) {
	got := SplitLines("первая\n\n  вторая  \n\n")
	assert.Equal(t, []string{"первая", "вторая"}, got)
}

func TestAccumulator(t *testing.T) {
	when, _ := time.Parse("02.01.2006 15:04:05", "15.01.2024 10:30:45")

	t.Run("finalizable only with date, doc and amount", func(t *testing.T) {
		acc := NewAccumulator(when, "123456", "RUB")
		assert.False(t, acc.Finalizable())

		acc.SetAmount("1 000,00", true)
		assert.True(t, acc.Finalizable())
	})

	t.Run("nil is not finalizable", func(t *testing.T) {
		var acc *Accumulator
		assert.False(t, acc.Finalizable())
	})

	t.Run("description budget", func(t *testing.T) {
		acc := NewAccumulator(when, "123456", "RUB")
		for i := 0; i < MaxDescriptionLines; i++ {
			assert.True(t, acc.AppendDescription("строка"))
		}
		assert.False(t, acc.AppendDescription("лишняя"))
		assert.NotContains(t, acc.Description(), "лишняя")
	})

	t.Run("description joins with spaces", func(t *testing.T) {
		acc := NewAccumulator(when, "123456", "RUB")
		acc.AppendDescription("Перевод СБП")
		acc.AppendDescription("Иванову И.И.")
		assert.Equal(t, "Перевод СБП Иванову И.И.", acc.Description())
	})
}
