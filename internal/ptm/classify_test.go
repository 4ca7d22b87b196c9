package ptm

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		mod  string
		want Category
	}{
		{"HexNAc(4)Hex(5)dHex(1)NeuAc(1)", Fucosialylated},
		{"Biantennary NeuGc", Fucosialylated},
		{"dHex(1)Hex(3)HexNAc(4)", Fucosylated},
		{"Fucosylation", Fucosylated},
		{"HexNAc(4)Hex(5)NeuAc(2)", Sialylated},
		{"Kdn", Sialylated},
		{"HexNAc(2)Hex(9)", Oligomannose},
		{"N-linked glycan core", Oligomannose},
		{"Phospho(STY)", Other},
		{"Oxidation (M)", Other},
		{"", NoPTM},
		{" ", NoPTM},
		{"nan", NoPTM},
	}
	for _, tt := range tests {
		t.Run(tt.mod, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.mod))
		})
	}
}

func TestOrderIsComplete(t *testing.T) {
	assert.Len(t, Order, 6)
	assert.Equal(t, "Fucosylated", OrderStrings()[0])
	assert.Contains(t, OrderStrings(), string(NoPTM))
}

func TestCleanPeptide(t *testing.T) {
	assert.Equal(t, "NASKT", CleanPeptide("N(+203.08)ASK(Phospho)T"))
	assert.Equal(t, "PEPTIDE", CleanPeptide("PEPTIDE"))
}

func TestExtractAccessions(t *testing.T) {
	assert.Equal(t, []string{"P12345"}, ExtractAccessions("sp|P12345|CD9_HUMAN"))
	assert.Equal(t, []string{"P21926-2", "Q9Y5X1"}, ExtractAccessions("sp|P21926-2|CD9_HUMAN; tr|Q9Y5X1|SNX9"))
	assert.Empty(t, ExtractAccessions("no accession here"))
	assert.Empty(t, ExtractAccessions("  "))
}
