package schedule

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractPhone(t *testing.T) {
	t.Run("phone plus trailing info", func(t *testing.T) {
		phone, rest := ExtractPhone("Tfno: 921 123456 Horario especial")
		assert.Equal(t, "921 123456", phone)
		assert.Equal(t, "Horario especial", rest)
	})

	t.Run("phone without internal space", func(t *testing.T) {
		phone, rest := ExtractPhone("Tfno: 921123456")
		assert.Equal(t, "921 123456", phone)
		assert.Empty(t, rest)
	})

	t.Run("lowercase label with dot", func(t *testing.T) {
		phone, _ := ExtractPhone("tfno.: 921 594001")
		assert.Equal(t, "921 594001", phone)
	})

	t.Run("no phone leaves blob as remainder", func(t *testing.T) {
		phone, rest := ExtractPhone("  Abierta   24 horas ")
		assert.Empty(t, phone)
		assert.Equal(t, "Abierta 24 horas", rest)
	})
}

func TestHasValidName(t *testing.T) {
	assert.True(t, HasValidName("FARMACIA TEST"))
	assert.True(t, HasValidName("Farmacia Lda. María Gómez"))
	assert.False(t, HasValidName("C. Falsa 123"))
	assert.False(t, HasValidName(""))
}

func TestNewPharmacy(t *testing.T) {
	p := NewPharmacy(" FARMACIA TEST ", " C. Falsa 123 ", "Tfno: 921 123456 Horario especial")
	assert.Equal(t, "FARMACIA TEST", p.Name)
	assert.Equal(t, "C. Falsa 123", p.Address)
	assert.Equal(t, "921 123456", p.Phone)
	assert.Equal(t, "Horario especial", p.AdditionalInfo)
	assert.NotZero(t, p.ID)
}
