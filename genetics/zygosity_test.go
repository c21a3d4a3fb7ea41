package genetics

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestZygosityAutosomal(t *testing.T) {
	z, err := Zygosity(SexXX, 1, ParseChromosome("12"))
	require.NoError(t, err)
	assert.Equal(t, Heterozygous, z)

	z, err = Zygosity(SexXY, 2, ParseChromosome("12"))
	require.NoError(t, err)
	assert.Equal(t, Homozygous, z)

	// Sex does not matter off the sex chromosomes.
	z, err = Zygosity(SexUnknown, 2, ParseChromosome("7"))
	require.NoError(t, err)
	assert.Equal(t, Homozygous, z)

	// Unknown chromosome follows the autosomal rule.
	z, err = Zygosity(SexUnknown, 1, "")
	require.NoError(t, err)
	assert.Equal(t, Heterozygous, z)
}

func TestZygosityXLinked(t *testing.T) {
	z, err := Zygosity(SexXY, 1, ChromosomeX)
	require.NoError(t, err)
	assert.Equal(t, Hemizygous, z)

	z, err = Zygosity(SexXX, 1, ChromosomeX)
	require.NoError(t, err)
	assert.Equal(t, Heterozygous, z)

	z, err = Zygosity(SexXX, 2, ChromosomeX)
	require.NoError(t, err)
	assert.Equal(t, Homozygous, z)

	_, err = Zygosity(SexXY, 2, ChromosomeX)
	var contra *ContradictoryAllelicDataError
	require.ErrorAs(t, err, &contra)
	assert.Contains(t, err.Error(), "contradictory allelic data")

	z, err = Zygosity(SexUnknown, 1, ChromosomeX)
	require.NoError(t, err)
	assert.Equal(t, UnspecifiedZygosity, z)
}

func TestZygosityYLinked(t *testing.T) {
	z, err := Zygosity(SexXY, 1, ChromosomeY)
	require.NoError(t, err)
	assert.Equal(t, Hemizygous, z)

	var contra *ContradictoryAllelicDataError
	_, err = Zygosity(SexXY, 2, ChromosomeY)
	require.ErrorAs(t, err, &contra)

	_, err = Zygosity(SexXX, 1, ChromosomeY)
	require.ErrorAs(t, err, &contra)

	z, err = Zygosity(SexUnknown, 1, ChromosomeY)
	require.NoError(t, err)
	assert.Equal(t, UnspecifiedZygosity, z)
}

func TestZygosityInvalidAlleleCount(t *testing.T) {
	var contra *ContradictoryAllelicDataError
	_, err := Zygosity(SexXX, 0, ParseChromosome("1"))
	require.ErrorAs(t, err, &contra)
	_, err = Zygosity(SexXX, 3, ParseChromosome("1"))
	require.ErrorAs(t, err, &contra)
}

func TestParseChromosome(t *testing.T) {
	assert.Equal(t, ChromosomeX, ParseChromosome("chrX"))
	assert.Equal(t, ChromosomeX, ParseChromosome("x"))
	assert.Equal(t, ChromosomeY, ParseChromosome(" Y "))
	assert.Equal(t, ChromosomeMT, ParseChromosome("chrM"))
	assert.Equal(t, Chromosome("12"), ParseChromosome("12"))
}

func TestParseChromosomalSex(t *testing.T) {
	assert.Equal(t, SexXY, ParseChromosomalSex("MALE"))
	assert.Equal(t, SexXY, ParseChromosomalSex("m"))
	assert.Equal(t, SexXX, ParseChromosomalSex("Female"))
	assert.Equal(t, SexUnknown, ParseChromosomalSex("OTHER_SEX"))
	assert.Equal(t, SexUnknown, ParseChromosomalSex(""))
}
